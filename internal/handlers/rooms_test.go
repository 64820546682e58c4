package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-platform/internal/matrix"
	"chat-platform/internal/mocks"
	"chat-platform/internal/models"
	"chat-platform/internal/repositories"
)

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func setupRoomRouter(handler *RoomHandler, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("username", "alice")
		c.Set("role", role)
		c.Next()
	})
	r.GET("/api/rooms", handler.ListRooms)
	r.POST("/api/rooms", handler.CreateRoom)
	r.DELETE("/api/rooms/:id", handler.DeleteRoom)
	r.GET("/api/rooms/public", handler.ListPublicRooms)
	r.POST("/api/rooms/:id/invite", handler.InviteToRoom)
	return r
}

func TestListRooms(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("List", mock.Anything).
		Return([]models.Room{{ID: 3, Name: "general", UsersAmount: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Rooms []roomResponse `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "general", resp.Rooms[0].Name)
	assert.Equal(t, 2, resp.Rooms[0].UsersAmount)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomSuccess(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("Create", mock.Anything, "general", 1).
		Return(models.Room{ID: 3, Name: "general", CreatedBy: nullInt(1)}, nil).Once()

	body := bytes.NewBufferString(`{"name":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomDuplicate(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("Create", mock.Anything, "general", 1).
		Return(models.Room{}, repositories.ErrRoomExists).Once()

	body := bytes.NewBufferString(`{"name":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestCreateRoomHomeserverFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errcode":"M_UNKNOWN"}`, http.StatusInternalServerError)
	}))
	defer upstream.Close()

	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, matrix.NewClient(upstream.URL, "admin-token"))
	router := setupRoomRouter(handler, models.RoleUser)

	body := bytes.NewBufferString(`{"name":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	roomRepo.AssertNotCalled(t, "Create")
}

func TestCreateRoomStoresHomeserverID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"room_id": "!abc:example.org"})
	}))
	defer upstream.Close()

	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, matrix.NewClient(upstream.URL, "admin-token"))
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("Create", mock.Anything, "general", 1).
		Return(models.Room{ID: 3, Name: "general"}, nil).Once()
	roomRepo.On("SetMatrixRoomID", mock.Anything, 3, "!abc:example.org").Return(nil).Once()

	body := bytes.NewBufferString(`{"name":"general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestDeleteRoomForbiddenForNonCreator(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("GetByID", mock.Anything, 3).
		Return(models.Room{ID: 3, Name: "general", CreatedBy: nullInt(99)}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	roomRepo.AssertNotCalled(t, "Delete")
}

func TestDeleteRoomAdminOverride(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleAdmin)

	roomRepo.On("GetByID", mock.Anything, 3).
		Return(models.Room{ID: 3, Name: "general", CreatedBy: nullInt(99)}, nil).Once()
	roomRepo.On("Delete", mock.Anything, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	roomRepo.AssertExpectations(t)
}

func TestDeleteRoomNotFound(t *testing.T) {
	roomRepo := new(mocks.RoomRepositoryMock)
	handler := NewRoomHandler(roomRepo, nil)
	router := setupRoomRouter(handler, models.RoleUser)

	roomRepo.On("GetByID", mock.Anything, 3).
		Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/rooms/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPublicRoomsDisabled(t *testing.T) {
	handler := NewRoomHandler(new(mocks.RoomRepositoryMock), nil)
	router := setupRoomRouter(handler, models.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/public", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
