package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-platform/internal/auth"
	"chat-platform/internal/models"
	"chat-platform/internal/observability"
	"chat-platform/internal/repositories"
)

// ChatWebSocketHandler handles chat room websocket connections.
type ChatWebSocketHandler struct {
	hub      *Hub
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	tokens   *auth.TokenService
	users    repositories.UserRepository
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(hub *Hub, rooms repositories.RoomRepository, messages repositories.MessageRepository, tokens *auth.TokenService, users repositories.UserRepository) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{hub: hub, rooms: rooms, messages: messages, tokens: tokens, users: users}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// inboundFrame is the client payload, multiplexed on the action
// discriminator. No action means a plain chat message.
type inboundFrame struct {
	Action    string `json:"action"`
	Message   string `json:"message"`
	MessageID int    `json:"message_id"`
}

// Handle upgrades the connection, joins the room's broadcast group and
// runs the per-connection read loop.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	roomName := c.Param("room_name")
	if roomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room name required"})
		return
	}

	ctx, span := otel.Tracer("chat-platform/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity := ResolveIdentity(c.Request, h.tokens, h.users)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	// Anonymous connections are closed before any group registration.
	if identity.Anonymous() {
		closeConn(conn, websocket.ClosePolicyViolation, "authentication required")
		return
	}

	room, err := h.rooms.GetOrCreate(ctx, roomName, identity.UserID)
	if err != nil {
		log.Printf("room get-or-create failed: %v", err)
		closeConn(conn, websocket.CloseInternalServerErr, "room unavailable")
		return
	}
	if err := h.rooms.AddMember(ctx, room.ID, identity.UserID); err != nil {
		log.Printf("room membership insert failed: %v", err)
		closeConn(conn, websocket.CloseInternalServerErr, "room unavailable")
		return
	}

	topic := RoomTopic(roomName)
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UserID,
		Username:    identity.Username,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.Subscribe(topic, conn, info)

	if err := h.rooms.AdjustUsersAmount(ctx, room.ID, 1); err != nil {
		log.Printf("users_amount increment failed: %v", err)
	}

	observability.IncWSActive("chat")
	observability.IncWSEvent("chat", "ws_connect")
	publishLifecycleEvent(ctx, "chat", topic, "ws_connect", info, "")

	go h.readLoop(conn, identity, room, roomName, topic, info)
}

func (h *ChatWebSocketHandler) readLoop(conn *websocket.Conn, identity Identity, room models.Room, roomName, topic string, info ConnInfo) {
	ctx := context.Background()
	var closeReason string
	defer func() {
		// Teardown must be safe regardless of how far connect got.
		h.hub.Unsubscribe(topic, conn)
		if err := h.rooms.AdjustUsersAmount(ctx, room.ID, -1); err != nil {
			log.Printf("users_amount decrement failed: %v", err)
		}
		observability.DecWSActive("chat")
		observability.IncWSEvent("chat", "ws_disconnect")
		publishLifecycleEvent(ctx, "chat", topic, "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("chat", "ws_error")
				publishLifecycleEvent(ctx, "chat", topic, "ws_error", info, closeReason)
			}
			return
		}
		if err := h.handleFrame(ctx, identity, room, roomName, topic, data); err != nil {
			closeReason = err.Error()
			closeConn(conn, websocket.CloseInternalServerErr, "internal error")
			return
		}
	}
}

// handleFrame dispatches one inbound payload. Malformed frames are
// dropped; only persistence or fan-out failures terminate the connection.
func (h *ChatWebSocketHandler) handleFrame(ctx context.Context, identity Identity, room models.Room, roomName, topic string, data []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("dropping malformed frame from user %d: %v", identity.UserID, err)
		return nil
	}

	switch frame.Action {
	case "read":
		return h.handleReadReceipt(ctx, identity, topic, frame.MessageID)
	case "":
		if frame.Message == "" {
			log.Printf("dropping frame without message from user %d", identity.UserID)
			return nil
		}
		return h.handleMessage(ctx, identity, room, roomName, topic, frame.Message)
	default:
		log.Printf("dropping frame with unknown action %q from user %d", frame.Action, identity.UserID)
		return nil
	}
}

func (h *ChatWebSocketHandler) handleMessage(ctx context.Context, identity Identity, room models.Room, roomName, topic, content string) error {
	if _, err := h.messages.Create(ctx, room.ID, identity.UserID, content); err != nil {
		return err
	}
	observability.IncMessagePosted()

	h.hub.Publish(topic, models.ChatEvent{
		Type:    "chat_message",
		Message: content,
		User:    identity.Username,
	})

	members, err := h.rooms.MemberIDs(ctx, room.ID)
	if err != nil {
		return err
	}
	for _, memberID := range members {
		if memberID == identity.UserID {
			continue
		}
		h.hub.Publish(NotificationTopic(memberID), models.Notification{
			Notification: content,
			Room:         roomName,
			Sender:       identity.Username,
		})
		observability.IncNotification()
	}
	return nil
}

func (h *ChatWebSocketHandler) handleReadReceipt(ctx context.Context, identity Identity, topic string, messageID int) error {
	msg, err := h.messages.GetMessage(ctx, messageID)
	if err != nil {
		if err == repositories.ErrMessageNotFound {
			return nil
		}
		return err
	}
	if msg.UserID == identity.UserID {
		// Authors never appear in their own read-by set.
		return nil
	}
	if err := h.messages.MarkRead(ctx, messageID, identity.UserID); err != nil {
		return err
	}

	h.hub.Publish(topic, models.ChatEvent{
		Type:      "message_read",
		MessageID: messageID,
		User:      identity.Username,
	})
	return nil
}

func closeConn(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

func publishLifecycleEvent(ctx context.Context, kind, topic, event string, info ConnInfo, reason string) {
	durationMS := int64(0)
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"topic":       topic,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
