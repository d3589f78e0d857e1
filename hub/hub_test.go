package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub(nil, nil)
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "room1",
	}
	other := &Client{
		Send: make(chan []byte, 10),
		Room: "room2",
	}
	hub.Register(client)
	hub.Register(other)

	data := []byte(`{"action":"cart","items":[]}`)
	hub.Broadcast("room1", data)

	select {
	case got := <-client.Send:
		assert.Equal(t, string(data), string(got))
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	assert.Empty(t, other.Send)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Connected("room1") == 0 }, time.Second, 10*time.Millisecond)

	// a second unregister must not close Send twice
	hub.Unregister(client)
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub(nil, nil)
	go hub.Run()

	client := &Client{Send: make(chan []byte, 1), Room: "r"}
	hub.Register(client)
	hub.Stop()

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// calls after Stop return instead of blocking
	hub.Broadcast("r", []byte("x"))
	hub.Stop()
}

func TestServeDeliversInitialAndInbound(t *testing.T) {
	hub := NewHub(nil, nil)
	go hub.Run()
	defer hub.Stop()

	inbound := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := hub.Serve(w, r, "sid-1", []byte(`hello`), func(data []byte) {
			inbound <- string(data)
		})
		assert.NoError(t, err)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(msg))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"replace"}`)))
	select {
	case got := <-inbound:
		assert.Equal(t, `{"action":"replace"}`, got)
	case <-time.After(time.Second):
		t.Fatal("inbound frame not delivered")
	}

	require.Eventually(t, func() bool { return hub.Connected("sid-1") == 1 }, time.Second, 10*time.Millisecond)
	hub.Broadcast("sid-1", []byte("sync"))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "sync", string(msg))
}
