package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"tryon/internal/config"
	"tryon/internal/dto"
	"tryon/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*HubService, context.CancelFunc) {
	t.Helper()
	log, err := logger.NewLogger(&config.Config{LogDirectory: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(log.Close)

	hub := NewHubService(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func viewerServer(hub *HubService) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		defer hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return conn
}

func TestHub_BroadcastReachesViewers(t *testing.T) {
	hub, _ := newTestHub(t)
	srv := viewerServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()

	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	available := false
	require.NoError(t, hub.Broadcast(dto.Event{Type: dto.EventStreamStatus, Available: &available, Reason: "down"}))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev dto.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		require.Equal(t, dto.EventStreamStatus, ev.Type)
		require.NotNil(t, ev.Available)
		require.False(t, *ev.Available)
		require.Equal(t, "down", ev.Reason)
		require.False(t, ev.Timestamp.IsZero())
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, _ := newTestHub(t)
	srv := viewerServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesViewers(t *testing.T) {
	hub, cancel := newTestHub(t)
	srv := viewerServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Broadcast(dto.Event{Type: dto.EventDetection}))
}
