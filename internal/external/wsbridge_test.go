package external

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

func TestBridgeOnlineTracksConnections(t *testing.T) {
	bridge := NewBridge(nil)
	require.False(t, bridge.Online())

	srv := httptest.NewServer(bridge.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):]
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, bridge.Online, time.Second, 10*time.Millisecond)
}

func TestBeginSyncSucceedsWithNoClients(t *testing.T) {
	bridge := NewBridge(nil)

	done, cancel := bridge.BeginSync(context.Background())
	defer cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("BeginSync did not complete with no clients connected")
	}
}
