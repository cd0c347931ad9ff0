package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена exchange, очереди и routing key для исходящих писем.
const (
	EmailsExchange   = "emails"
	EmailsQueue      = "emails.outgoing"
	EmailsRoutingKey = "send"
)

// SetupChannel открывает канал и объявляет exchange и очередь писем.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		EmailsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	_, err = ch.QueueDeclare(
		EmailsQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.QueueBind(EmailsQueue, EmailsRoutingKey, EmailsExchange, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
