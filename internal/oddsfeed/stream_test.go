package oddsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/oddsmith/internal/logger"
)

func startStreamServer(t *testing.T, serve func(conn *websocket.Conn)) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(server.Close)

	return strings.Replace(server.URL, "http", "ws", 1)
}

func TestStreamDeliversPriceUpdates(t *testing.T) {
	url := startStreamServer(t, func(conn *websocket.Conn) {
		// consume the subscribe message, then push updates
		var sub map[string]interface{}
		require.NoError(t, conn.ReadJSON(&sub))
		assert.Equal(t, "subscribe", sub["op"])

		// heartbeat without an event id must be skipped
		require.NoError(t, conn.WriteJSON(map[string]string{"op": "ping"}))
		require.NoError(t, conn.WriteJSON(PriceUpdate{
			EventID:  "evt1",
			SportKey: "basketball_nba",
			Team:     "Lakers",
			Price:    decimal.NewFromFloat(2.05),
		}))

		// hold the connection open until the client hangs up
		conn.ReadMessage()
	})

	stream := NewStreamClient(url, "test-key", logger.NewNop())

	var mu sync.Mutex
	var received []PriceUpdate
	stream.AddHandler(func(update PriceUpdate) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, update)
		return nil
	})

	require.NoError(t, stream.Connect(context.Background()))
	defer stream.Close()
	assert.True(t, stream.IsConnected())
	require.NoError(t, stream.Subscribe([]string{"basketball_nba"}))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "evt1", received[0].EventID)
	assert.Equal(t, "Lakers", received[0].Team)
	assert.True(t, received[0].Price.Equal(decimal.NewFromFloat(2.05)))
}

func TestStreamConnectTwiceFails(t *testing.T) {
	url := startStreamServer(t, func(conn *websocket.Conn) {
		conn.ReadMessage()
	})

	stream := NewStreamClient(url, "test-key", logger.NewNop())
	require.NoError(t, stream.Connect(context.Background()))
	defer stream.Close()

	assert.Error(t, stream.Connect(context.Background()))
}

func TestStreamSubscribeRequiresConnection(t *testing.T) {
	stream := NewStreamClient("ws://127.0.0.1:1", "test-key", logger.NewNop())
	assert.Error(t, stream.Subscribe([]string{"basketball_nba"}))
}
