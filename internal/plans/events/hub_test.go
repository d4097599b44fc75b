package events

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prevplan/internal/plans/models"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, hub.Publish(context.Background(), Event{Kind: models.KindRescue, Action: models.ActionCreate, ID: "r-1", At: at}))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var got Event
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, models.KindRescue, got.Kind)
		assert.Equal(t, models.ActionCreate, got.Action)
		assert.Equal(t, "r-1", got.ID)
		assert.True(t, at.Equal(got.At))
	}
}

func TestHubForgetsDisconnectedSubscribers(t *testing.T) {
	hub := NewHub(quietLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, hub.Publish(context.Background(), Event{Kind: models.KindPlan, Action: models.ActionDelete, ID: "p"}))
}

func TestHubRejectsPlainHTTP(t *testing.T) {
	hub := NewHub(quietLogger())
	rr := httptest.NewRecorder()
	hub.ServeHTTP(rr, httptest.NewRequest("GET", "/ws/events", nil))
	assert.Equal(t, 400, rr.Code)
	assert.Zero(t, hub.Subscribers())
}
