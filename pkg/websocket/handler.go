package websocket

import (
	"net/http"
	"strings"
	"time"

	"unipool/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// TokenVerifier resolves a realtime token to the user it was issued for.
type TokenVerifier interface {
	VerifyRealtimeToken(token string) (string, error)
}

type HandlerConfig struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	MaxMessageSize   int64
	AllowedOrigins   []string
}

type Handler struct {
	hub            *Hub
	verifier       TokenVerifier
	upgrader       websocket.Upgrader
	maxMessageSize int64
	logger         *logger.Logger
}

func NewHandler(hub *Hub, verifier TokenVerifier, config HandlerConfig, log *logger.Logger) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.HandshakeTimeout,
			CheckOrigin:      originChecker(config.AllowedOrigins),
		},
		maxMessageSize: config.MaxMessageSize,
		logger:         log,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		unauthorized(c, "Realtime token required")
		return
	}

	userID, err := h.verifier.VerifyRealtimeToken(token)
	if err != nil {
		unauthorized(c, "Invalid realtime token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithUserID(userID).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userID, h.maxMessageSize)
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// unauthorized writes the API error envelope; the upgrade has not happened yet.
func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":    "error",
		"error":     gin.H{"code": "UNAUTHORIZED", "message": message},
		"timestamp": time.Now().UTC(),
	})
}
