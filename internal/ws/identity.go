package ws

import (
	"log"
	"net/http"

	"chat-platform/internal/auth"
	"chat-platform/internal/repositories"
)

// Identity is the authenticated principal of a websocket connection.
// The zero value is anonymous.
type Identity struct {
	UserID   int
	Username string
}

// Anonymous reports whether no authenticated user backs the connection.
func (i Identity) Anonymous() bool {
	return i.UserID == 0
}

// ResolveIdentity extracts a bearer token from the connection's query
// parameters and resolves it against the user store before the handler
// runs. A missing token yields an anonymous identity, and so does any
// decode or lookup failure: a bad token is treated identically to no
// token. Rejecting anonymous connections is the consumer's job.
func ResolveIdentity(r *http.Request, tokens *auth.TokenService, users repositories.UserRepository) Identity {
	token := r.URL.Query().Get("token")
	if token == "" {
		return Identity{}
	}

	claims, err := tokens.ParseToken(token)
	if err != nil {
		log.Printf("websocket token rejected: %v", err)
		return Identity{}
	}

	user, err := users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("websocket token user lookup failed: %v", err)
		return Identity{}
	}

	return Identity{UserID: user.ID, Username: user.Username}
}
