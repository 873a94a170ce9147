package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
)

// StatusFor maps an error to the HTTP status it should produce.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeNotFound:
		return fiber.StatusNotFound
	case apperrors.ErrorTypeValidation:
		return fiber.StatusBadRequest
	case apperrors.ErrorTypeConflict:
		return fiber.StatusConflict
	case apperrors.ErrorTypeUnauthorized:
		return fiber.StatusUnauthorized
	case apperrors.ErrorTypeExternal:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the fiber error handler for the whole app.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)

	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("❌ Request failed")
		if code == fiber.StatusInternalServerError {
			msg = "Internal server error"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}
