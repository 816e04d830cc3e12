package serverutils

import (
	"errors"

	"notetrack-be/internal/pkg/apperror"
	"notetrack-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusForKind maps application error kinds onto HTTP status codes.
func StatusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUnauthorized:
		return fiber.StatusForbidden
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into BaseResponse payloads.
// Storage faults are logged in full and answered with a generic message.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind != apperror.KindStorage {
			status := StatusForKind(appErr.Kind)
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		log.Error("HTTP", "Request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
