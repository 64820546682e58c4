package models

import (
	"database/sql"
	"time"
)

// Room is a named chat room. UsersAmount is a denormalized live-member
// counter maintained by increment/decrement on connect/disconnect; it can
// drift from the membership set under crash or reconnect races.
type Room struct {
	ID           int            `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	CreatedBy    sql.NullInt64  `db:"created_by" json:"-"`
	UsersAmount  int            `db:"users_amount" json:"users_amount"`
	MatrixRoomID sql.NullString `db:"matrix_room_id" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// CreatorID returns the creator id or 0 when the creator was deleted.
func (r Room) CreatorID() int {
	if r.CreatedBy.Valid {
		return int(r.CreatedBy.Int64)
	}
	return 0
}
