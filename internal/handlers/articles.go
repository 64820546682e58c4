package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-platform/internal/auth"
	"chat-platform/internal/models"
	"chat-platform/internal/repositories"
)

// ArticleHandler serves the articles service endpoints.
type ArticleHandler struct {
	articles repositories.ArticleRepository
	users    repositories.UserRepository
	tokens   *auth.TokenService
}

// NewArticleHandler builds an ArticleHandler.
func NewArticleHandler(articles repositories.ArticleRepository, users repositories.UserRepository, tokens *auth.TokenService) *ArticleHandler {
	return &ArticleHandler{articles: articles, users: users, tokens: tokens}
}

// Login verifies credentials and returns an access token carrying the
// user's role.
func (h *ArticleHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := h.tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// canEdit implements the article ownership rule: admins and editors may
// edit anything, everyone else only their own articles.
func canEdit(role string, article models.Article, userID int) bool {
	return role == models.RoleAdmin || role == models.RoleEditor || article.UserID == userID
}

// ListArticles returns all articles, optionally filtered by a search term
// over title and content.
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load articles"})
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	c.JSON(http.StatusOK, articles)
}

// GetArticle returns a single article.
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	article, err := h.articles.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// CreateArticle stores a new article owned by the caller.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required."})
		return
	}

	article, err := h.articles.Create(c.Request.Context(), req.Title, req.Content, c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create article"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Article created successfully", "id": article.ID})
}

// UpdateArticle modifies an article, subject to the ownership rule.
func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	article, err := h.articles.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}

	if !canEdit(c.GetString("role"), article, c.GetInt("userID")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title, content := article.Title, article.Content
	if req.Title != nil {
		title = *req.Title
	}
	if req.Content != nil {
		content = *req.Content
	}

	if err := h.articles.Update(c.Request.Context(), id, title, content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article updated successfully"})
}

// DeleteArticle removes an article, subject to the ownership rule.
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return
	}

	article, err := h.articles.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}

	if !canEdit(c.GetString("role"), article, c.GetInt("userID")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied."})
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}
