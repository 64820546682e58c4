package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-platform/internal/auth"
	"chat-platform/internal/mocks"
	"chat-platform/internal/models"
	"chat-platform/internal/repositories"
)

func testTokenService() *auth.TokenService {
	return auth.NewTokenService("test-secret", 5, 7)
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/register", handler.Register)
	r.POST("/api/token", handler.ObtainTokenPair)
	r.POST("/api/token/refresh", handler.RefreshToken)
	r.POST("/api/token/blacklist", handler.BlacklistToken)
	authed := r.Group("/", func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	authed.GET("/api/profile", handler.GetProfile)
	authed.PUT("/api/profile", handler.UpdateProfile)
	authed.POST("/api/friends", handler.AddFriend)
	authed.GET("/api/friends", handler.ListFriends)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	userRepo.On("Create", mock.Anything, "alice", "alice@example.com", mock.AnythingOfType("string"), models.RoleUser).
		Return(models.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleUser}, nil).Once()
	userRepo.On("UpdateProfile", mock.Anything, mock.AnythingOfType("models.Profile")).Return(nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRegisterShortPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "Create")
}

func TestObtainTokenPairSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	userRepo.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 1, Username: "alice", Role: models.RoleUser, PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","password":"correct-horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/token", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["access"])
	assert.NotEmpty(t, resp["refresh"])
	assert.NotEqual(t, resp["access"], resp["refresh"])
	userRepo.AssertExpectations(t)
}

func TestObtainTokenPairWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	userRepo.On("GetByUsername", mock.Anything, "alice").
		Return(models.User{ID: 1, Username: "alice", PasswordHash: hash}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","password":"battery-staple"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/token", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRefreshTokenSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	tokenRepo := new(mocks.TokenRepositoryMock)
	tokens := testTokenService()
	handler := NewAuthHandler(userRepo, tokens, tokenRepo)
	router := setupAuthRouter(handler)

	refresh, err := tokens.GenerateRefreshToken(1)
	require.NoError(t, err)

	tokenRepo.On("IsBlacklisted", mock.Anything, refresh).Return(false, nil).Once()
	userRepo.On("GetByID", mock.Anything, 1).
		Return(models.User{ID: 1, Username: "alice", Role: models.RoleUser}, nil).Once()

	payload, _ := json.Marshal(gin.H{"refresh": refresh})
	req := httptest.NewRequest(http.MethodPost, "/api/token/refresh", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["access"])
	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokenBlacklisted(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	tokenRepo := new(mocks.TokenRepositoryMock)
	tokens := testTokenService()
	handler := NewAuthHandler(userRepo, tokens, tokenRepo)
	router := setupAuthRouter(handler)

	refresh, err := tokens.GenerateRefreshToken(1)
	require.NoError(t, err)
	tokenRepo.On("IsBlacklisted", mock.Anything, refresh).Return(true, nil).Once()

	payload, _ := json.Marshal(gin.H{"refresh": refresh})
	req := httptest.NewRequest(http.MethodPost, "/api/token/refresh", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertNotCalled(t, "GetByID")
	tokenRepo.AssertExpectations(t)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	tokens := testTokenService()
	handler := NewAuthHandler(userRepo, tokens, new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	access, err := tokens.GenerateAccessToken(1, "alice", models.RoleUser)
	require.NoError(t, err)

	payload, _ := json.Marshal(gin.H{"refresh": access})
	req := httptest.NewRequest(http.MethodPost, "/api/token/refresh", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlacklistTokenSuccess(t *testing.T) {
	tokenRepo := new(mocks.TokenRepositoryMock)
	tokens := testTokenService()
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), tokens, tokenRepo)
	router := setupAuthRouter(handler)

	refresh, err := tokens.GenerateRefreshToken(1)
	require.NoError(t, err)
	tokenRepo.On("Blacklist", mock.Anything, refresh).Return(nil).Once()

	payload, _ := json.Marshal(gin.H{"refresh": refresh})
	req := httptest.NewRequest(http.MethodPost, "/api/token/blacklist", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	tokenRepo.AssertExpectations(t)
}

func TestBlacklistTokenInvalid(t *testing.T) {
	tokenRepo := new(mocks.TokenRepositoryMock)
	handler := NewAuthHandler(new(mocks.UserRepositoryMock), testTokenService(), tokenRepo)
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"refresh":"not-a-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/token/blacklist", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	tokenRepo.AssertNotCalled(t, "Blacklist")
}

func TestAddFriendSelf(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	body := bytes.NewBufferString(`{"friend_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/friends", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "AddFriend")
}

func TestAddFriendDuplicate(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	userRepo.On("AddFriend", mock.Anything, 1, 2).Return(repositories.ErrAlreadyFriends).Once()

	body := bytes.NewBufferString(`{"friend_id":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/friends", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestListFriends(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, testTokenService(), new(mocks.TokenRepositoryMock))
	router := setupAuthRouter(handler)

	userRepo.On("ListFriends", mock.Anything, 1).
		Return([]models.User{{ID: 2, Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Friends []struct {
			ID       int    `json:"id"`
			Username string `json:"username"`
		} `json:"friends"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Friends, 1)
	assert.Equal(t, "bob", resp.Friends[0].Username)
	userRepo.AssertExpectations(t)
}
