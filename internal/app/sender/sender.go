// Package sender собирает приложение доставки писем из очереди.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/marketpulse/account-service/internal/config"
	"github.com/marketpulse/account-service/internal/lib/smtp"
	"github.com/marketpulse/account-service/internal/rabbitmq"
	senderservice "github.com/marketpulse/account-service/internal/services/sender"
)

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *senderservice.SenderService
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: senderService,
		logger: logger,
	}, nil
}

// Run запускает потребителя очереди и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.EmailsQueue, a.sender.Send); err != nil {
		return err
	}
	a.logger.Info("notification sender consuming", slog.String("queue", rabbitmq.EmailsQueue))

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")
	_ = a.ch.Close()
	_ = a.conn.Close()
	return nil
}
