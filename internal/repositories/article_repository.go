package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"chat-platform/internal/models"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleRepository abstracts article persistence.
type ArticleRepository interface {
	Create(ctx context.Context, title, content string, userID int) (models.Article, error)
	GetByID(ctx context.Context, articleID int) (models.Article, error)
	List(ctx context.Context, search string) ([]models.Article, error)
	Update(ctx context.Context, articleID int, title, content string) error
	Delete(ctx context.Context, articleID int) error
}

// ArticleRepo is a sqlx-backed repository.
type ArticleRepo struct {
	db *sqlx.DB
}

// NewArticleRepo constructs an ArticleRepo.
func NewArticleRepo(db *sqlx.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// Create inserts a new article owned by userID.
func (r *ArticleRepo) Create(ctx context.Context, title, content string, userID int) (models.Article, error) {
	var article models.Article
	err := r.db.QueryRowxContext(ctx, `INSERT INTO articles (title, content, user_id) VALUES ($1, $2, $3)
        RETURNING id, title, content, user_id, created_at`, title, content, userID).
		Scan(&article.ID, &article.Title, &article.Content, &article.UserID, &article.CreatedAt)
	return article, err
}

// GetByID fetches an article with its author username.
func (r *ArticleRepo) GetByID(ctx context.Context, articleID int) (models.Article, error) {
	var article models.Article
	err := r.db.QueryRowxContext(ctx, `SELECT a.id, a.title, a.content, a.user_id, u.username, a.created_at
        FROM articles a JOIN users u ON u.id = a.user_id WHERE a.id=$1`, articleID).
		Scan(&article.ID, &article.Title, &article.Content, &article.UserID, &article.Author, &article.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, ErrArticleNotFound
	}
	return article, err
}

// List returns articles, optionally filtered by a case-insensitive
// substring match over title or content.
func (r *ArticleRepo) List(ctx context.Context, search string) ([]models.Article, error) {
	query := `SELECT a.id, a.title, a.content, a.user_id, u.username, a.created_at
        FROM articles a JOIN users u ON u.id = a.user_id`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE a.title ILIKE '%' || $1 || '%' OR a.content ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY a.id`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var article models.Article
		if err := rows.Scan(&article.ID, &article.Title, &article.Content, &article.UserID, &article.Author, &article.CreatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Update persists title and content changes.
func (r *ArticleRepo) Update(ctx context.Context, articleID int, title, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE articles SET title=$2, content=$3 WHERE id=$1`, articleID, title, content)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// Delete removes an article.
func (r *ArticleRepo) Delete(ctx context.Context, articleID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id=$1`, articleID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrArticleNotFound
	}
	return nil
}
