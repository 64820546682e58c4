package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-platform/internal/observability"
)

// RoomTopic keys the broadcast group of a chat room.
func RoomTopic(roomName string) string {
	return "chat_" + roomName
}

// NotificationTopic keys the personal notification group of a user. All
// of a user's concurrent connections share it.
func NotificationTopic(userID int) string {
	return fmt.Sprintf("notifications_%d", userID)
}

// subscriber pairs a connection's metadata with the write lock that
// serializes outbound frames. gorilla/websocket supports only one
// concurrent writer per connection, and publishes run on the caller's
// goroutine.
type subscriber struct {
	writeMu sync.Mutex
	info    ConnInfo
}

// Hub is a topic registry: a mapping from topic key to the set of
// currently subscribed connections. Publish fans out to a snapshot of
// subscribers taken at call time; late joiners get nothing.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*websocket.Conn]*subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*websocket.Conn]*subscriber)}
}

// Subscribe registers a connection under topic.
func (h *Hub) Subscribe(topic string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*websocket.Conn]*subscriber)
	}
	h.topics[topic][conn] = &subscriber{info: info}
}

// Unsubscribe removes a connection from topic. Safe to call for
// connections that never subscribed.
func (h *Hub) Unsubscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.topics[topic]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribers reports how many connections are subscribed to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish serializes event once and writes it to every subscriber in the
// call-time snapshot. Connections that fail the write are closed and
// dropped from the topic.
func (h *Hub) Publish(topic string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub publish marshal error: %v", err)
		return
	}

	h.mu.RLock()
	snapshot := make(map[*websocket.Conn]*subscriber, len(h.topics[topic]))
	for conn, sub := range h.topics[topic] {
		snapshot[conn] = sub
	}
	h.mu.RUnlock()

	for conn, sub := range snapshot {
		sub.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		sub.writeMu.Unlock()
		if err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.Unsubscribe(topic, conn)
			h.publishWSError(topic, sub.info, err)
		}
	}
}

func (h *Hub) publishWSError(topic string, info ConnInfo, err error) {
	kind := topicKind(topic)
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"topic":       topic,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(kind, "ws_error")
}

func topicKind(topic string) string {
	if strings.HasPrefix(topic, "notifications_") {
		return "notification"
	}
	return "chat"
}

func wsRoutingKey(kind string) string {
	if kind == "notification" {
		return "ws_events.notifications"
	}
	return "ws_events.chats"
}
