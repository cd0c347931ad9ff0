// Package config предоставляет структуры и функцию для загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitConnection        `yaml:"rabbit_connection"`
	SMTPConnection          `yaml:"smtp_connection"`
	ResetTokens             `yaml:"reset_tokens"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для выпуска сессионных токенов.
// TTL по умолчанию 30 суток.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"720h"`
}

// RabbitConnection структура для подключения к очереди писем.
type RabbitConnection struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// SMTPConnection структура для отправки писем через SMTP.
type SMTPConnection struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// ResetTokens структура с настройками сброса пароля.
// TTL токена фиксирован в один час, ссылка в письме строится от ResetBaseURL.
type ResetTokens struct {
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl" env-default:"1h"`
	ResetBaseURL  string        `yaml:"reset_base_url" env-default:"http://localhost:3000/reset"`
	CleanupPeriod time.Duration `yaml:"cleanup_period" env-default:"12h"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RabbitConnection:\n"+
			"  URL: %s\n"+
			"  MaxRetries: %d\n"+
			"  RetryDelay: %s\n"+
			"SMTPConnection:\n"+
			"  Host: %s\n"+
			"  Port: %s\n"+
			"  User: %s\n"+
			"ResetTokens:\n"+
			"  TokenTTL: %s\n"+
			"  BaseURL: %s\n"+
			"  CleanupPeriod: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.RabbitMQURL,
		c.RabbitMQMaxRetries,
		c.RabbitMQRetryDelay,
		c.SMTPHost,
		c.SMTPPort,
		c.SMTPUser,
		c.ResetTokenTTL,
		c.ResetBaseURL,
		c.CleanupPeriod,
	)
}
