package matrix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/_matrix/client/r0/createRoom", r.URL.Path)
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "general", payload["room_alias_name"])
		assert.Equal(t, "private", payload["visibility"])

		json.NewEncoder(w).Encode(map[string]string{"room_id": "!abc:localhost"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin-token")
	resp, err := client.CreateRoom(context.Background(), "general", "@alice:localhost")
	require.NoError(t, err)
	assert.Equal(t, "!abc:localhost", resp.RoomID)
}

func TestInviteUserErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errcode":"M_FORBIDDEN"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin-token")
	err := client.InviteUser(context.Background(), "!abc:localhost", "@bob:localhost")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "M_FORBIDDEN")
}

func TestListPublicRooms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/_matrix/client/r0/publicRooms", r.URL.Path)
		w.Write([]byte(`{"chunk":[{"room_id":"!a:hs","name":"general"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "admin-token")
	rooms, err := client.ListPublicRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms.Chunk, 1)
	assert.Equal(t, "general", rooms.Chunk[0].Name)
}

func TestDisabledClientIsNil(t *testing.T) {
	assert.Nil(t, NewClient("", "token"))
}
