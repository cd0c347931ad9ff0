package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/marketpulse/account-service/internal/models"
)

// EmailPublisher публикует письма в очередь отправки.
type EmailPublisher struct {
	Ch *amqp.Channel
}

// Publish кладет письмо в очередь emails.outgoing.
func (p *EmailPublisher) Publish(msg models.EmailMessage) error {
	return PublishMessage(p.Ch, EmailsExchange, EmailsRoutingKey, msg)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
