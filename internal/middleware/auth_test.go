package middleware

import (
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

func testTokens() *auth.TokenService {
	return auth.NewTokenService("test-secret", 5, 7)
}

func serveWith(mw gin.HandlerFunc, header string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetInt("userID"), "role": c.GetString("role")})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthMissingHeader(t *testing.T) {
	rec := serveWith(RequireAuth(testTokens()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	rec := serveWith(RequireAuth(testTokens()), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthValidToken(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateAccessToken(1, "alice", models.RoleEditor)
	require.NoError(t, err)

	rec := serveWith(RequireAuth(tokens), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"editor"`)
}

func TestArticleAuthMissingHeaderIsForbidden(t *testing.T) {
	rec := serveWith(ArticleAuth(testTokens(), new(mocks.UserRepositoryMock)), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestArticleAuthInvalidTokenIsForbidden(t *testing.T) {
	rec := serveWith(ArticleAuth(testTokens(), new(mocks.UserRepositoryMock)), "Bearer garbage")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// A syntactically valid token whose user has since been deleted maps to
// 404, not 401 or 403.
func TestArticleAuthDeletedUserIsNotFound(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateAccessToken(9, "ghost", models.RoleUser)
	require.NoError(t, err)

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("GetByID", mock.Anything, 9).
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	rec := serveWith(ArticleAuth(tokens, userRepo), "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestArticleAuthLoadsUserFromStore(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.GenerateAccessToken(1, "alice", models.RoleAdmin)
	require.NoError(t, err)

	userRepo := new(mocks.UserRepositoryMock)
	userRepo.On("GetByID", mock.Anything, 1).
		Return(models.User{ID: 1, Username: "alice", Role: models.RoleAdmin}, nil).Once()

	rec := serveWith(ArticleAuth(tokens, userRepo), "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}
