package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
)

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// Success создает успешный JSON ответ: {"success": true, ...payload}
func Success(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// OK отправляет ответ 200 с полезной нагрузкой
func OK(c *fiber.Ctx, payload fiber.Map) error {
	return Success(c, fiber.StatusOK, payload)
}

// Message отправляет ответ 200 только с сообщением
func Message(c *fiber.Ctx, message string) error {
	return Success(c, fiber.StatusOK, fiber.Map{"message": message})
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, payload fiber.Map) error {
	return Success(c, fiber.StatusCreated, payload)
}

// ErrorHandler превращает ошибки обработчиков в JSON ответ с кодом статуса
func ErrorHandler(log *Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, resp := errorResponse(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}
		return c.Status(status).JSON(resp)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Kind == apperr.KindInternal || msg == "" {
			msg = http.StatusText(appErr.Status())
		}
		return appErr.Status(), ErrorResponse{
			Message: msg,
			Code:    string(appErr.Kind),
			Details: appErr.Fields,
		}
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, ErrorResponse{Message: fe.Message, Code: codeForStatus(fe.Code)}
	}

	return fiber.StatusInternalServerError, ErrorResponse{
		Message: http.StatusText(fiber.StatusInternalServerError),
		Code:    string(apperr.KindInternal),
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		return string(apperr.KindValidation)
	case fiber.StatusUnauthorized:
		return string(apperr.KindUnauthenticated)
	case fiber.StatusForbidden:
		return string(apperr.KindAuthorization)
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return string(apperr.KindNotFound)
	case fiber.StatusTooManyRequests:
		return string(apperr.KindRateLimited)
	default:
		return string(apperr.KindInternal)
	}
}
