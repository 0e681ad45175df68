package handler

import (
	"net/http"
	"strings"

	"github.com/fitformula/fitformula-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated users to a live notification feed
type WebSocketHandler struct {
	hub       *websocket.Hub
	validator websocket.TokenValidator
	origins   map[string]struct{}
	opts      websocket.ClientOptions
	upgrader  ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator websocket.TokenValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:       hub,
		validator: validator,
		origins:   make(map[string]struct{}, len(allowedOrigins)),
		opts:      websocket.DefaultClientOptions(),
	}
	for _, origin := range allowedOrigins {
		h.origins[origin] = struct{}{}
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin admits non-browser clients (no Origin) and configured origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get(echo.HeaderOrigin)
	if origin == "" {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
	return false
}

// handshakeToken reads the token from ?token= (browsers) or a Bearer header
func handshakeToken(c echo.Context) string {
	if token := c.QueryParam("token"); token != "" {
		return token
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// HandleWS godoc
// @Summary Live notification feed
// @Description Upgrades to a WebSocket that pushes notification.created, notification.read and notification.deleted events for the caller.
// @Tags notifications
// @Param token query string false "Session token or JWT"
// @Success 101
// @Failure 401 {object} ProblemDetails
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := handshakeToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	userID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket handshake rejected")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, userID, h.hub, h.opts)
	h.hub.Register(client)
	log.Info().Int32("user_id", userID).Str("client_id", client.ID()).Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()
	return nil
}
