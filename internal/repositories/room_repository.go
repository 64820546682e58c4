package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"chat-platform/internal/models"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// RoomRepository abstracts room persistence.
type RoomRepository interface {
	Create(ctx context.Context, name string, creatorID int) (models.Room, error)
	GetOrCreate(ctx context.Context, name string, creatorID int) (models.Room, error)
	GetByID(ctx context.Context, roomID int) (models.Room, error)
	GetByName(ctx context.Context, name string) (models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Delete(ctx context.Context, roomID int) error
	AddMember(ctx context.Context, roomID, userID int) error
	MemberIDs(ctx context.Context, roomID int) ([]int, error)
	AdjustUsersAmount(ctx context.Context, roomID, delta int) error
	SetMatrixRoomID(ctx context.Context, roomID int, matrixRoomID string) error
}

// RoomRepo is a sqlx-backed repository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, created_by, users_amount, matrix_room_id, created_at`

// Create inserts a new room attributed to creatorID.
func (r *RoomRepo) Create(ctx context.Context, name string, creatorID int) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowxContext(ctx, `INSERT INTO rooms (name, created_by) VALUES ($1, $2) RETURNING `+roomColumns, name, creatorID).
		StructScan(&room)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.Room{}, ErrRoomExists
		}
		return models.Room{}, err
	}
	return room, nil
}

// GetOrCreate returns the room by name, creating it attributed to
// creatorID only when absent. An existing room's creator is never
// overwritten.
func (r *RoomRepo) GetOrCreate(ctx context.Context, name string, creatorID int) (models.Room, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO rooms (name, created_by) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`, name, creatorID); err != nil {
		return models.Room{}, err
	}
	return r.GetByName(ctx, name)
}

// GetByID fetches a room by id.
func (r *RoomRepo) GetByID(ctx context.Context, roomID int) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// GetByName fetches a room by its unique name.
func (r *RoomRepo) GetByName(ctx context.Context, name string) (models.Room, error) {
	var room models.Room
	err := r.db.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Room{}, ErrRoomNotFound
	}
	return room, err
}

// List returns all rooms, newest first.
func (r *RoomRepo) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+` FROM rooms ORDER BY id DESC`)
	return rooms, err
}

// Delete removes a room and, through cascades, its messages and members.
func (r *RoomRepo) Delete(ctx context.Context, roomID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddMember records userID in the room's joined-users set.
func (r *RoomRepo) AddMember(ctx context.Context, roomID, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO room_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, roomID, userID)
	return err
}

// MemberIDs returns the ids of all users joined to the room.
func (r *RoomRepo) MemberIDs(ctx context.Context, roomID int) ([]int, error) {
	var ids []int
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM room_members WHERE room_id=$1`, roomID)
	return ids, err
}

// AdjustUsersAmount moves the live-member counter by delta. The counter
// is maintained separately from the membership set and can drift when
// connects and disconnects race on the same room.
func (r *RoomRepo) AdjustUsersAmount(ctx context.Context, roomID, delta int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET users_amount = users_amount + $2 WHERE id=$1`, roomID, delta)
	return err
}

// SetMatrixRoomID records the upstream homeserver room backing this room.
func (r *RoomRepo) SetMatrixRoomID(ctx context.Context, roomID int, matrixRoomID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rooms SET matrix_room_id=$2 WHERE id=$1`, roomID, matrixRoomID)
	return err
}
