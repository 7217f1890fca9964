package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// EventForceLogout is pushed when an administrator revokes a user's access.
// Clients treat it as a 401: clear local session state and redirect to login.
const EventForceLogout = "force-logout"

// SessionCookieName is the cookie carrying the signed session token, shared
// with the HTTP layer.
const SessionCookieName = "token"

// Event is the wire format for server-pushed notifications.
type Event struct {
	Event  string `json:"event"`  // Event name.
	Reason string `json:"reason"` // Human-readable reason.
}

// TokenVerifier resolves a session token to a user ID.
type TokenVerifier func(token string) (uint64, error)

// Hub owns the connection registry and broadcasts revocation events. It is
// created at process start and injected into both the websocket endpoint and
// the admin handlers; there is no package-level instance.
type Hub struct {
	registry *Registry
	verify   TokenVerifier
	upgrader websocket.Upgrader
}

// NewHub constructs a Hub using the given token verifier.
func NewHub(verify TokenVerifier, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		registry: NewRegistry(),
		verify:   verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Registry exposes the connection registry, mainly for tests.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// HandleWS upgrades the request and registers the connection when the
// session cookie verifies. A failed handshake authentication leaves the
// connection open but unregistered: the realtime channel is a secondary
// notification path, not the access gate, so no error is surfaced.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, errUpgrade := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if errUpgrade != nil {
		log.WithError(errUpgrade).Debug("realtime: upgrade failed")
		return
	}

	var userID uint64
	if cookie, errCookie := c.Request.Cookie(SessionCookieName); errCookie == nil {
		if id, errVerify := h.verify(cookie.Value); errVerify == nil {
			userID = id
		} else {
			log.WithError(errVerify).Debug("realtime: handshake token rejected")
		}
	}

	client := &Client{hub: h, userID: userID, conn: conn, send: make(chan []byte, 8)}
	if userID != 0 {
		h.registry.Add(userID, client)
		log.WithField("user_id", userID).Debug("realtime: connection registered")
	}

	go client.writePump()
	go client.readPump()
}

// unregister removes a client after its read pump exits.
func (h *Hub) unregister(client *Client) {
	if client.userID != 0 {
		h.registry.Remove(client.userID, client)
	}
}

// Revoke pushes one force-logout event to every live connection of the user.
// It is best-effort and idempotent: no live connections is a no-op, delivery
// is not awaited, and removal happens through each connection's own
// disconnect handling.
func (h *Hub) Revoke(userID uint64, reason string) {
	payload, errMarshal := json.Marshal(Event{Event: EventForceLogout, Reason: reason})
	if errMarshal != nil {
		return
	}
	clients := h.registry.Connections(userID)
	for _, client := range clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; the ping timeout will reap it.
		}
	}
	log.WithField("user_id", userID).WithField("connections", len(clients)).
		WithField("reason", reason).Info("realtime: revoke broadcast")
}
