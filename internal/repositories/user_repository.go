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
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrAlreadyFriends = errors.New("friendship already exists")
)

// UserRepository abstracts account, profile and friendship persistence.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	Update(ctx context.Context, user models.User) error
	Delete(ctx context.Context, userID int) error
	GetOrCreateProfile(ctx context.Context, userID int) (models.Profile, error)
	UpdateProfile(ctx context.Context, profile models.Profile) error
	AddFriend(ctx context.Context, userID, friendID int) error
	ListFriends(ctx context.Context, userID int) ([]models.User, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password_hash, role, created_at`

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (username, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		username, email, passwordHash, role).StructScan(&user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// List returns users, optionally filtered by a username substring or an
// exact role name.
func (r *UserRepo) List(ctx context.Context, search string) ([]models.User, error) {
	var users []models.User
	if search == "" {
		err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
		return users, err
	}
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE username ILIKE '%' || $1 || '%' OR role = $1 ORDER BY id`, search)
	return users, err
}

// Update persists username, password hash and role changes.
func (r *UserRepo) Update(ctx context.Context, user models.User) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET username=$2, password_hash=$3, role=$4 WHERE id=$1`,
		user.ID, user.Username, user.PasswordHash, user.Role)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetOrCreateProfile returns the user's profile, creating an empty one
// when absent.
func (r *UserRepo) GetOrCreateProfile(ctx context.Context, userID int) (models.Profile, error) {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID); err != nil {
		return models.Profile{}, err
	}
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT user_id, age, bio, location, interests, birth_date FROM profiles WHERE user_id=$1`, userID)
	return profile, err
}

// UpdateProfile persists profile attribute changes.
func (r *UserRepo) UpdateProfile(ctx context.Context, profile models.Profile) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles (user_id, age, bio, location, interests, birth_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id) DO UPDATE SET age=EXCLUDED.age, bio=EXCLUDED.bio, location=EXCLUDED.location,
            interests=EXCLUDED.interests, birth_date=EXCLUDED.birth_date`,
		profile.UserID, profile.Age, profile.Bio, profile.Location, profile.Interests, profile.BirthDate)
	return err
}

// AddFriend records a directed (user, friend) pair.
func (r *UserRepo) AddFriend(ctx context.Context, userID, friendID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_friends (user_id, friend_id) VALUES ($1, $2)`, userID, friendID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrAlreadyFriends
			case "23503":
				return ErrUserNotFound
			}
		}
	}
	return err
}

// ListFriends returns the users that userID has added as friends.
func (r *UserRepo) ListFriends(ctx context.Context, userID int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT u.id, u.username, u.email, u.password_hash, u.role, u.created_at
        FROM user_friends f JOIN users u ON u.id = f.friend_id
        WHERE f.user_id=$1 ORDER BY f.created_at`, userID)
	return users, err
}
