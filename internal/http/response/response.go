// Package response содержит вспомогательные типы и функции для формирования
// JSON-ответов HTTP-обработчиков в формате, который ожидает веб-клиент:
// {"success":true} при успехе и {"error":"..."} при неудаче.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Response описывает стандартную структуру JSON-ответа сервера.
type Response struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// OK возвращает успешный Response.
func OK() Response {
	return Response{Success: true}
}

// Error возвращает Response с переданным сообщением об ошибке.
func Error(msg string) Response {
	return Response{Error: msg}
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение превращается в человеко-читаемый текст, тексты
// объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{Error: strings.Join(errsMsgs, ", ")}
}
