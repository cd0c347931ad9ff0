// Package rabbitmq содержит подключение к RabbitMQ и работу с очередью писем.
//
// Очередь отвязывает отправку почты от пути запроса: HTTP-сервис публикует
// сообщение и отвечает клиенту, notification-sender доставляет письмо.
package rabbitmq

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к RabbitMQ с повторными попытками.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}
