package ws

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-platform/internal/auth"
	"chat-platform/internal/observability"
	"chat-platform/internal/repositories"
)

// NotificationWebSocketHandler joins a user's personal notification
// group and relays whatever is published there. No persistence.
type NotificationWebSocketHandler struct {
	hub    *Hub
	tokens *auth.TokenService
	users  repositories.UserRepository
}

// NewNotificationWebSocketHandler constructs a NotificationWebSocketHandler.
func NewNotificationWebSocketHandler(hub *Hub, tokens *auth.TokenService, users repositories.UserRepository) *NotificationWebSocketHandler {
	return &NotificationWebSocketHandler{hub: hub, tokens: tokens, users: users}
}

// Handle upgrades the connection and subscribes it to the user's
// notification topic. Inbound frames are ignored; the read loop exists
// only to detect the close.
func (h *NotificationWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("chat-platform/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity := ResolveIdentity(c.Request, h.tokens, h.users)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	if identity.Anonymous() {
		closeConn(conn, websocket.ClosePolicyViolation, "authentication required")
		return
	}

	topic := NotificationTopic(identity.UserID)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		Username:    identity.Username,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Subscribe(topic, conn, info)

	observability.IncWSActive("notification")
	observability.IncWSEvent("notification", "ws_connect")
	publishLifecycleEvent(ctx, "notification", topic, "ws_connect", info, "")

	go func() {
		var closeReason string
		defer func() {
			h.hub.Unsubscribe(topic, conn)
			observability.DecWSActive("notification")
			observability.IncWSEvent("notification", "ws_disconnect")
			publishLifecycleEvent(context.Background(), "notification", topic, "ws_disconnect", info, closeReason)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("notification", "ws_error")
				}
				return
			}
		}
	}()
}
