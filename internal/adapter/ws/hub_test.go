package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asset-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	sent := domain.NewEvent(domain.EventItemListed, "punks", 3, uuid.New(), 100)
	hub.Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, domain.EventItemListed, got.Type)
	assert.Equal(t, uint64(3), got.TokenID)
}

func TestHub_MultipleClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	conn1 := dialTestHub(t, hub)
	conn2 := dialTestHub(t, hub)
	waitForClients(t, hub, 2)

	sent := domain.NewEvent(domain.EventItemBought, "punks", 0, uuid.New(), 150)
	hub.Broadcast(sent)

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got domain.Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, sent.ID, got.ID)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	defer hub.Close()

	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)

	// Broadcasting with no clients must not panic.
	hub.Broadcast(domain.NewEvent(domain.EventItemCanceled, "punks", 1, uuid.New(), 0))
}

func TestHub_CloseRejectsNewClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	conn := dialTestHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	// The closed hub terminates the existing connection.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
