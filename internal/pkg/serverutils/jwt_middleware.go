package serverutils

import (
	"errors"

	"notetrack-be/internal/entity"
	"notetrack-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorLocalKey = "actor"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// ParseToken verifies an HS256 token and returns the caller it names.
// Tokens carry "user_id" and "role" claims; adminRole names the privileged role.
func ParseToken(tokenStr, secret, adminRole string) (entity.Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return entity.Actor{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Actor{}, ErrInvalidClaims
	}

	rawId, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(rawId)
	if err != nil {
		return entity.Actor{}, ErrInvalidClaims
	}
	role, _ := claims["role"].(string)

	return entity.Actor{
		UserId:  userId,
		IsAdmin: role != "" && role == adminRole,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// NewJwtMiddleware validates the platform's bearer token and stores the caller as an entity.Actor.
func NewJwtMiddleware(secret, adminRole string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		actor, err := ParseToken(tokenStr, secret, adminRole)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		actor.IpAddress = ResolveClientIP(ctx.Get(fiber.HeaderXForwardedFor), ctx.IP())
		actor.UserAgent = ctx.Get(fiber.HeaderUserAgent)

		ctx.Locals("user_id", actor.UserId.String())
		ctx.Locals(actorLocalKey, actor)
		return ctx.Next()
	}
}

func ActorFromContext(ctx *fiber.Ctx) (entity.Actor, error) {
	actor, ok := ctx.Locals(actorLocalKey).(entity.Actor)
	if !ok {
		return entity.Actor{}, errors.New("no authenticated actor on request")
	}
	return actor, nil
}

// RequireAdmin must run after the JWT middleware.
func RequireAdmin(ctx *fiber.Ctx) error {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}
	if !actor.IsAdmin {
		return apperror.Unauthorized("administrator role required")
	}
	return ctx.Next()
}
