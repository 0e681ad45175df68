package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestClient starts a server that registers every upgraded connection
// for userID and returns the peer side of the socket.
func dialTestClient(t *testing.T, hub *Hub, userID int32, opts ClientOptions) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(conn, userID, hub, opts)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)
	t.Cleanup(hub.CloseAll)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount(userID) == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func TestClient_DeliversHubEvents(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, 7, DefaultClientOptions())

	queued := hub.SendToUser(7, NotificationCreated(map[string]any{"id": 1}))
	require.Equal(t, 1, queued)

	evt := readEvent(t, conn)
	assert.Equal(t, "notification.created", evt["type"])
}

func TestClient_AnswersPing(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, 7, DefaultClientOptions())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	evt := readEvent(t, conn)
	assert.Equal(t, "connection.pong", evt["type"])
}

func TestClient_PeerCloseUnregisters(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, 7, DefaultClientOptions())

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount(7) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_SendAfterClose(t *testing.T) {
	hub := NewHub()
	dialTestClient(t, hub, 7, DefaultClientOptions())

	hub.CloseAll()

	assert.Equal(t, 0, hub.SendToUser(7, NotificationRead(nil)))
}
