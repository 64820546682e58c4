package models

import "time"

// Article is a user-authored article managed by the articles service.
type Article struct {
	ID        int       `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	UserID    int       `db:"user_id" json:"-"`
	Author    string    `db:"author" json:"author,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}
