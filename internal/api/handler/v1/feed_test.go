package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
)

func startFeed(t *testing.T, origins []string) (*InventoryFeed, string, context.CancelFunc) {
	t.Helper()

	feed := NewInventoryFeed(origins)
	ctx, cancel := context.WithCancel(context.Background())
	go feed.Run(ctx)

	r := gin.New()
	r.GET("/ws/inventory", feed.HandleWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return feed, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/inventory", cancel
}

func TestInventoryFeed_Broadcast(t *testing.T) {
	feed, url, cancel := startFeed(t, []string{"http://localhost:3000"})

	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)

	feed.Publish(domain.InventoryRecord{ID: 12, ProductID: 3, Type: domain.MovementOut, Quantity: 2})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg feedMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "inventory_record", msg.Type)
	assert.Equal(t, uint(12), msg.Record.ID)
	assert.Equal(t, domain.MovementOut, msg.Record.Type)

	// Stopping the hub closes every connection.
	cancel()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestInventoryFeed_RejectsUnknownOrigin(t *testing.T) {
	_, url, _ := startFeed(t, []string{"http://localhost:3000"})

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInventoryFeed_PublishWithoutClients(t *testing.T) {
	feed := NewInventoryFeed(nil)

	// Nothing drains the hub, so the buffer fills and later records are
	// dropped without blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < feedSendBuffer+10; i++ {
			feed.Publish(domain.InventoryRecord{ID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}
