package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ReactionTally maps an emoji to its occurrence counter. Counters are
// monotonically incremented; there is no per-user dedup.
type ReactionTally map[string]int

// Value serializes the tally as JSONB.
func (t ReactionTally) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t)
}

// Scan reads the tally back from JSONB.
func (t *ReactionTally) Scan(src interface{}) error {
	if src == nil {
		*t = ReactionTally{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("reactions: unsupported scan source")
	}
	return json.Unmarshal(b, t)
}

// Message is a chat message posted to a room.
type Message struct {
	ID        int           `db:"id" json:"id"`
	RoomID    int           `db:"room_id" json:"room"`
	UserID    int           `db:"user_id" json:"user"`
	Username  string        `db:"username" json:"username,omitempty"`
	Content   string        `db:"content" json:"content"`
	Reactions ReactionTally `db:"reactions" json:"reactions"`
	CreatedAt time.Time     `db:"created_at" json:"timestamp"`
	ReadBy    []int         `json:"read_by,omitempty"`
}

// ChatEvent is broadcast through room websocket topics.
type ChatEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	User      string `json:"user,omitempty"`
	MessageID int    `json:"message_id,omitempty"`
}

// Notification is delivered through per-user notification topics.
type Notification struct {
	Notification string `json:"notification"`
	Room         string `json:"room"`
	Sender       string `json:"sender"`
}
