package models

// EmailMessage — сообщение для очереди отправки писем.
// Публикуется HTTP-сервисом и потребляется notification-sender.
type EmailMessage struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}
