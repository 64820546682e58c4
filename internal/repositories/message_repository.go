package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chat-platform/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	Create(ctx context.Context, roomID, userID int, content string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	ListByRoomName(ctx context.Context, roomName string) ([]models.Message, error)
	AddReaction(ctx context.Context, messageID int, reaction string) (models.ReactionTally, error)
	MarkRead(ctx context.Context, messageID, userID int) error
	ReaderIDs(ctx context.Context, messageID int) ([]int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a message in a room.
func (r *MessageRepo) Create(ctx context.Context, roomID, userID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (room_id, user_id, content) VALUES ($1, $2, $3)
        RETURNING id, room_id, user_id, content, reactions, created_at`, roomID, userID, content).
		Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Content, &msg.Reactions, &msg.CreatedAt)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `SELECT m.id, m.room_id, m.user_id, u.username, m.content, m.reactions, m.created_at
        FROM messages m JOIN users u ON u.id = m.user_id WHERE m.id=$1`, messageID).
		Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Username, &msg.Content, &msg.Reactions, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListByRoomName returns a room's messages ordered by timestamp ascending,
// each with its sender username and read-by set.
func (r *MessageRepo) ListByRoomName(ctx context.Context, roomName string) ([]models.Message, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT m.id, m.room_id, m.user_id, u.username, m.content, m.reactions, m.created_at
        FROM messages m
        JOIN users u ON u.id = m.user_id
        JOIN rooms r ON r.id = m.room_id
        WHERE r.name=$1
        ORDER BY m.created_at ASC`, roomName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.UserID, &msg.Username, &msg.Content, &msg.Reactions, &msg.CreatedAt); err != nil {
			return nil, err
		}
		readers, err := r.ReaderIDs(ctx, msg.ID)
		if err != nil {
			return nil, err
		}
		msg.ReadBy = readers
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// AddReaction increments the counter for reaction in the message's tally
// and returns the updated tally. The increment happens in SQL so
// concurrent reactions to the same message are not lost.
func (r *MessageRepo) AddReaction(ctx context.Context, messageID int, reaction string) (models.ReactionTally, error) {
	var tally models.ReactionTally
	err := r.db.QueryRowxContext(ctx, `UPDATE messages
        SET reactions = jsonb_set(reactions, ARRAY[$2], (COALESCE(reactions->>$2, '0')::int + 1)::text::jsonb)
        WHERE id=$1
        RETURNING reactions`, messageID, reaction).Scan(&tally)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	return tally, err
}

// MarkRead adds userID to the message's read-by set. Idempotent.
func (r *MessageRepo) MarkRead(ctx context.Context, messageID, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, messageID, userID)
	return err
}

// ReaderIDs returns the ids of users who have read the message.
func (r *MessageRepo) ReaderIDs(ctx context.Context, messageID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM message_reads WHERE message_id=$1`, messageID)
	return ids, err
}
