package serverutils

import (
	"notetrack-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ParseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("%s must be a valid uuid", name)
	}
	return id, nil
}

// ParseBody decodes the JSON body into req and runs its validate tags.
func ParseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body")
	}
	return ValidateRequest(req)
}

func ParseQuery(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.QueryParser(req); err != nil {
		return apperror.Validation("invalid query parameters")
	}
	return ValidateRequest(req)
}
