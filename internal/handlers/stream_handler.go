package handlers

import (
	"errors"
	"strconv"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/SantaKoska/Artistry-Hub-sub001/internal/livews"
	"github.com/SantaKoska/Artistry-Hub-sub001/pkg/utils"
)

// StreamHandler exposes the per-class session-event websocket. The stream
// carries join URLs, so subscribing requires the same token as the REST
// surface; browsers cannot set headers on websocket dials, hence the query
// parameter fallback.
type StreamHandler struct {
	hub       *livews.Hub
	jwtSecret string
}

func NewStreamHandler(hub *livews.Hub, jwtSecret string) *StreamHandler {
	return &StreamHandler{hub: hub, jwtSecret: jwtSecret}
}

func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{"error": "WebSocket upgrade required"})
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *StreamHandler) HandleClassEvents(conn *websocket.Conn) {
	classID, err := strconv.ParseInt(conn.Params("id"), 10, 64)
	if err != nil || classID <= 0 {
		_ = conn.Close()
		return
	}

	client := livews.NewClient(h.hub, conn, classID)
	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *StreamHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
