package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a Matrix homeserver's client API. The homeserver is an
// opaque remote collaborator; its HTTP errors propagate to the caller
// unchanged, with no retries.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// NewClient builds a Client. Returns nil when baseURL is empty so callers
// can treat the integration as disabled.
func NewClient(baseURL, adminToken string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL:    baseURL,
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError carries a non-2xx homeserver response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("matrix: status %d: %s", e.StatusCode, e.Body)
}

// CreateRoomResponse is the subset of the createRoom reply we use.
type CreateRoomResponse struct {
	RoomID    string `json:"room_id"`
	RoomAlias string `json:"room_alias"`
}

// CreateRoom creates a private room aliased to name and invites userID.
func (c *Client) CreateRoom(ctx context.Context, name, userID string) (CreateRoomResponse, error) {
	payload := map[string]interface{}{
		"room_alias_name": name,
		"visibility":      "private",
		"invite":          []string{userID},
	}
	var resp CreateRoomResponse
	err := c.do(ctx, http.MethodPost, "/_matrix/client/r0/createRoom", payload, &resp)
	return resp, err
}

// InviteUser invites userID into roomID.
func (c *Client) InviteUser(ctx context.Context, roomID, userID string) error {
	payload := map[string]string{"user_id": userID}
	path := fmt.Sprintf("/_matrix/client/r0/rooms/%s/invite", roomID)
	return c.do(ctx, http.MethodPost, path, payload, nil)
}

// DeleteRoom tears down the room's name state.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	path := fmt.Sprintf("/_matrix/client/r0/rooms/%s/state/m.room.name", roomID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// PublicRooms is the publicRooms reply.
type PublicRooms struct {
	Chunk []struct {
		RoomID string `json:"room_id"`
		Name   string `json:"name"`
	} `json:"chunk"`
}

// ListPublicRooms lists the homeserver's public rooms.
func (c *Client) ListPublicRooms(ctx context.Context) (PublicRooms, error) {
	var resp PublicRooms
	err := c.do(ctx, http.MethodGet, "/_matrix/client/r0/publicRooms", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.adminToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
