package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chat-platform/internal/matrix"
	"chat-platform/internal/models"
	"chat-platform/internal/repositories"
)

// RoomHandler manages room endpoints. The Matrix client is nil when the
// homeserver integration is disabled.
type RoomHandler struct {
	rooms  repositories.RoomRepository
	matrix *matrix.Client
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, matrixClient *matrix.Client) *RoomHandler {
	return &RoomHandler{rooms: rooms, matrix: matrixClient}
}

type roomResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	CreatedBy   int       `json:"created_by"`
	UsersAmount int       `json:"users_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRoomResponse(room models.Room) roomResponse {
	return roomResponse{
		ID:          room.ID,
		Name:        room.Name,
		CreatedBy:   room.CreatorID(),
		UsersAmount: room.UsersAmount,
		CreatedAt:   room.CreatedAt,
	}
}

// ListRooms returns all rooms with their live member counts.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toRoomResponse(room))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": resp})
}

// CreateRoom creates a room attributed to the caller. When the Matrix
// integration is enabled the upstream room is created first and its
// errors propagate to the caller.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	username := c.GetString("username")

	var matrixRoomID string
	if h.matrix != nil {
		upstream, err := h.matrix.CreateRoom(c.Request.Context(), req.Name, username)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "homeserver room creation failed"})
			return
		}
		matrixRoomID = upstream.RoomID
	}

	room, err := h.rooms.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "room already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	if matrixRoomID != "" {
		if err := h.rooms.SetMatrixRoomID(c.Request.Context(), room.ID, matrixRoomID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
			return
		}
	}

	c.JSON(http.StatusCreated, toRoomResponse(room))
}

// DeleteRoom removes a room. Only its creator or an admin may delete it.
// The upstream Matrix room, when present, is torn down first.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	room, err := h.rooms.GetByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load room"})
		return
	}

	userID := c.GetInt("userID")
	role := c.GetString("role")
	if room.CreatorID() != userID && role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if h.matrix != nil && room.MatrixRoomID.Valid {
		if err := h.matrix.DeleteRoom(c.Request.Context(), room.MatrixRoomID.String); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "homeserver room teardown failed"})
			return
		}
	}

	if err := h.rooms.Delete(c.Request.Context(), roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// ListPublicRooms proxies the homeserver's public room directory.
func (h *RoomHandler) ListPublicRooms(c *gin.Context) {
	if h.matrix == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "homeserver integration disabled"})
		return
	}

	rooms, err := h.matrix.ListPublicRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "homeserver listing failed"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// InviteToRoom invites a user into the room's upstream Matrix room.
func (h *RoomHandler) InviteToRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.GetByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load room"})
		return
	}

	if h.matrix == nil || !room.MatrixRoomID.Valid {
		c.JSON(http.StatusNotFound, gin.H{"error": "room has no homeserver counterpart"})
		return
	}

	if err := h.matrix.InviteUser(c.Request.Context(), room.MatrixRoomID.String, req.UserID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "homeserver invite failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user invited"})
}
