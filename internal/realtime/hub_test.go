package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	a := &Client{userID: 1}
	b := &Client{userID: 1}

	registry.Add(1, a)
	registry.Add(1, b)
	if got := registry.Count(1); got != 2 {
		t.Fatalf("expected 2 connections, got %d", got)
	}

	registry.Remove(1, a)
	if got := registry.Count(1); got != 1 {
		t.Fatalf("expected 1 connection after remove, got %d", got)
	}

	registry.Remove(1, b)
	if got := registry.Count(1); got != 0 {
		t.Fatalf("expected 0 connections, got %d", got)
	}
	if conns := registry.Connections(1); conns != nil {
		t.Fatalf("expected nil snapshot for empty user, got %v", conns)
	}

	// Anonymous connections never register.
	registry.Add(0, a)
	if got := registry.Count(0); got != 0 {
		t.Fatalf("expected user 0 to stay unregistered, got %d", got)
	}
}

// newHubServer serves GET /ws through a hub whose verifier accepts tokens of
// the form "user-<id>" for the given ids.
func newHubServer(t *testing.T, users map[string]uint64) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(func(token string) (uint64, error) {
		if id, ok := users[token]; ok {
			return id, nil
		}
		return 0, errors.New("bad token")
	}, func(*http.Request) bool { return true })

	router := gin.New()
	router.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	if token != "" {
		header.Set("Cookie", SessionCookieName+"="+token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, hub *Hub, userID uint64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Registry().Count(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d: expected %d registered connections, got %d", userID, want, hub.Registry().Count(userID))
}

func TestHub_RevokeReachesEveryConnection(t *testing.T) {
	hub, srv := newHubServer(t, map[string]uint64{"user-7": 7})

	first := dialWS(t, srv, "user-7")
	second := dialWS(t, srv, "user-7")
	waitForCount(t, hub, 7, 2)

	hub.Revoke(7, "Account suspended")

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, errRead := conn.ReadMessage()
		if errRead != nil {
			t.Fatalf("read event: %v", errRead)
		}
		var event Event
		if errParse := json.Unmarshal(payload, &event); errParse != nil {
			t.Fatalf("parse event: %v", errParse)
		}
		if event.Event != EventForceLogout {
			t.Fatalf("expected event %q, got %q", EventForceLogout, event.Event)
		}
		if event.Reason != "Account suspended" {
			t.Fatalf("expected reason %q, got %q", "Account suspended", event.Reason)
		}
	}
}

func TestHub_RevokeOnlyTargetsOneUser(t *testing.T) {
	hub, srv := newHubServer(t, map[string]uint64{"user-1": 1, "user-2": 2})

	target := dialWS(t, srv, "user-1")
	bystander := dialWS(t, srv, "user-2")
	waitForCount(t, hub, 1, 1)
	waitForCount(t, hub, 2, 1)

	hub.Revoke(1, "Account deleted")

	target.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := target.ReadMessage(); err != nil {
		t.Fatalf("target should receive the event: %v", err)
	}

	bystander.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Fatalf("bystander must not receive the event")
	}
}

func TestHub_RevokeWithNoConnectionsIsNoOp(t *testing.T) {
	hub, _ := newHubServer(t, nil)
	// Must not panic or block.
	hub.Revoke(42, "Account suspended")
}

func TestHub_BadTokenStaysUnregistered(t *testing.T) {
	hub, srv := newHubServer(t, map[string]uint64{"user-1": 1})

	conn := dialWS(t, srv, "forged")
	// The socket stays open but carries no identity, so nothing registers.
	time.Sleep(50 * time.Millisecond)
	if got := hub.Registry().Count(1); got != 0 {
		t.Fatalf("expected no registered connections, got %d", got)
	}

	// It also receives nothing on revoke.
	hub.Revoke(1, "Account suspended")
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("unregistered socket must not receive events")
	}
}

func TestHub_DisconnectRemovesFromRegistry(t *testing.T) {
	hub, srv := newHubServer(t, map[string]uint64{"user-3": 3})

	conn := dialWS(t, srv, "user-3")
	waitForCount(t, hub, 3, 1)

	conn.Close()
	waitForCount(t, hub, 3, 0)
}
