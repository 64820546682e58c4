package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"chat-platform/internal/auth"
	"chat-platform/internal/models"
	"chat-platform/internal/observability"
	"chat-platform/internal/repositories"
)

// AuthHandler manages registration, the token lifecycle, profiles and
// friendships for the chat service.
type AuthHandler struct {
	users  repositories.UserRepository
	tokens *auth.TokenService
	black  repositories.TokenRepository
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(users repositories.UserRepository, tokens *auth.TokenService, black repositories.TokenRepository) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, black: black}
}

// Register creates a user with an attached profile and publishes a
// user_registered event for downstream consumers (registration email
// and the like).
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Age      *int   `json:"age"`
		Bio      string `json:"bio"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, req.Email, hash, models.RoleUser)
	if err != nil {
		if errors.Is(err, repositories.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register"})
		return
	}

	profile := models.Profile{UserID: user.ID, Age: req.Age, Bio: req.Bio, Location: req.Location}
	if err := h.users.UpdateProfile(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save profile"})
		return
	}

	_ = observability.PublishEvent(c.Request.Context(), "users.registered", observability.EventEnvelope{
		EventType: "user_events",
		EventName: "user_registered",
		Payload: map[string]interface{}{
			"user_id":       user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"registered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, observability.BuildHeaders(observability.RequestIDFromRequest(c.Request), ""))

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

// ObtainTokenPair verifies credentials and issues an access/refresh pair.
func (h *AuthHandler) ObtainTokenPair(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	access, err := h.tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

// RefreshToken exchanges a refresh token for a fresh access token,
// rejecting tokens that were blacklisted at logout.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.tokens.ParseRefreshToken(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	revoked, err := h.black.IsBlacklisted(c.Request.Context(), req.Refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify token"})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is blacklisted"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	access, err := h.tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

// BlacklistToken permanently revokes a refresh token (logout).
func (h *AuthHandler) BlacklistToken(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.tokens.ParseRefreshToken(req.Refresh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refresh token"})
		return
	}

	if err := h.black.Blacklist(c.Request.Context(), req.Refresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not blacklist token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token blacklisted"})
}

// GetProfile returns the caller's profile, creating an empty one on
// first access.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	profile, err := h.users.GetOrCreateProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile replaces the caller's profile attributes.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Age       *int       `json:"age"`
		Bio       string     `json:"bio"`
		Location  string     `json:"location"`
		Interests string     `json:"interests"`
		BirthDate *time.Time `json:"birth_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := models.Profile{
		UserID:    userID,
		Age:       req.Age,
		Bio:       req.Bio,
		Location:  req.Location,
		Interests: req.Interests,
		BirthDate: req.BirthDate,
	}
	if err := h.users.UpdateProfile(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddFriend records a directed friendship from the caller to another user.
func (h *AuthHandler) AddFriend(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FriendID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	err := h.users.AddFriend(c.Request.Context(), userID, req.FriendID)
	switch {
	case errors.Is(err, repositories.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": "friendship already exists"})
	case errors.Is(err, repositories.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add friend"})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "friend added"})
	}
}

// ListFriends returns the users the caller has added as friends.
func (h *AuthHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("userID")

	friends, err := h.users.ListFriends(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load friends"})
		return
	}

	type friendResponse struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	resp := make([]friendResponse, 0, len(friends))
	for _, f := range friends {
		resp = append(resp, friendResponse{ID: f.ID, Username: f.Username})
	}
	c.JSON(http.StatusOK, gin.H{"friends": resp})
}
