package ws

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

func hubServer(t *testing.T, hub *Hub, room string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		id := r.URL.Query().Get("id")
		hub.Register(id, conn)
		hub.JoinRoom(room, id)
	}))
}

func dialClient(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?id=" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg WSMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastReachesWholeRoom(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, "ROOM")
	defer srv.Close()

	c1 := dialClient(t, srv, "c1")
	defer c1.Close()
	c2 := dialClient(t, srv, "c2")
	defer c2.Close()

	require.Eventually(t, func() bool {
		return hub.Allow("c1") && hub.Allow("c2")
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("ROOM", "hello", map[string]string{"k": "v"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		msg := readMessage(t, conn)
		assert.Equal(t, "hello", msg.Type)
	}
}

func TestHub_UnicastReachesOneClient(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, "ROOM")
	defer srv.Close()

	c1 := dialClient(t, srv, "c1")
	defer c1.Close()

	require.Eventually(t, func() bool { return hub.Allow("c1") }, time.Second, 10*time.Millisecond)

	hub.Unicast("c1", "direct", nil)
	msg := readMessage(t, c1)
	assert.Equal(t, "direct", msg.Type)

	// Unknown targets are silently dropped.
	hub.Unicast("ghost", "direct", nil)
}

func TestHub_BroadcastToUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("NOPE", "event", nil)
}

func TestHub_UnregisterRemovesFromRooms(t *testing.T) {
	hub := NewHub()
	srv := hubServer(t, hub, "ROOM")
	defer srv.Close()

	c1 := dialClient(t, srv, "c1")
	defer c1.Close()
	require.Eventually(t, func() bool { return hub.Allow("c1") }, time.Second, 10*time.Millisecond)

	hub.Unregister("c1")
	assert.False(t, hub.Allow("c1"))
	hub.Broadcast("ROOM", "after", nil)
}
