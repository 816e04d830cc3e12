package handler

import (
	"notetrack-be/internal/pkg/logger"
	"notetrack-be/internal/pkg/serverutils"
	internalWS "notetrack-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedHandler upgrades authenticated clients onto the live note-event feed.
type FeedHandler struct {
	hub       *internalWS.Hub
	secret    string
	adminRole string
	logger    logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, secret, adminRole string, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		hub:       hub,
		secret:    secret,
		adminRole: adminRole,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer.
// Browsers cannot set headers on the handshake, so ?token= is accepted before the Authorization header.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	actor, err := serverutils.ParseToken(tokenStr, h.secret, h.adminRole)
	if err != nil {
		h.logger.Warn("FeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("FeedHandler", "Starting WebSocket session", map[string]interface{}{"user_id": actor.UserId})
		internalWS.ServeWs(h.hub, conn, actor.UserId)
		h.logger.Info("FeedHandler", "WebSocket session ended", map[string]interface{}{"user_id": actor.UserId})
	})(c)
}

func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
