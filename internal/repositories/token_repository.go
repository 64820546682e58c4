package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TokenRepository records revoked refresh tokens. The blacklist is
// append-only; a blacklisted token stays rejected forever.
type TokenRepository interface {
	Blacklist(ctx context.Context, token string) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// TokenRepo is a sqlx-backed repository.
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo constructs a TokenRepo.
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Blacklist stores the raw token string. Idempotent.
func (r *TokenRepo) Blacklist(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO blacklisted_tokens (token) VALUES ($1) ON CONFLICT DO NOTHING`, token)
	return err
}

// IsBlacklisted reports whether the token was revoked.
func (r *TokenRepo) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE token=$1)`, token)
	return exists, err
}
