package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint) *Client {
	return &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, 16),
		Rooms:  make(map[uint]bool),
	}
}

func receivePayload(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-client.Send:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		return payload
	case <-time.After(time.Second):
		t.Fatal("no payload delivered")
		return nil
	}
}

func assertNoPayload(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.Send:
		t.Fatalf("unexpected payload: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SendToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	seller := newTestClient(hub, 1)
	buyer := newTestClient(hub, 2)
	hub.Register(seller)
	hub.Register(buyer)

	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1) && hub.IsUserOnline(2)
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(1, 7)
	hub.JoinRoom(2, 7)

	require.NoError(t, hub.SendToRoom(7, map[string]interface{}{
		"type": "new_message",
	}, 2))

	payload := receivePayload(t, seller)
	assert.Equal(t, "new_message", payload["type"])

	// the sender's own sockets are skipped
	assertNoPayload(t, buyer)
}

func TestHub_LeaveRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, 1)
	b := newTestClient(hub, 2)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1) && hub.IsUserOnline(2)
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(1, 7)
	hub.JoinRoom(2, 7)
	hub.LeaveRoom(1, 7)

	require.NoError(t, hub.SendToRoom(7, map[string]interface{}{"type": "new_message"}, 2))
	assertNoPayload(t, a)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, 1)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.IsUserOnline(1) }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return !hub.IsUserOnline(1) }, time.Second, 10*time.Millisecond)

	// the send channel is closed on unregister
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_TypingRelay(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	typer := newTestClient(hub, 1)
	watcher := newTestClient(hub, 2)
	hub.Register(typer)
	hub.Register(watcher)
	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1) && hub.IsUserOnline(2)
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(1, 7)
	hub.JoinRoom(2, 7)

	hub.HandleClientMessage(typer, []byte(`{"type":"typing_start","chat_room_id":7}`))

	payload := receivePayload(t, watcher)
	assert.Equal(t, "typing_start", payload["type"])
	assert.Equal(t, float64(1), payload["user_id"])

	// frames for rooms the client never joined are ignored
	hub.HandleClientMessage(typer, []byte(`{"type":"typing_start","chat_room_id":99}`))
	assertNoPayload(t, watcher)

	// garbage frames are dropped without relaying
	hub.HandleClientMessage(typer, []byte(`{not json`))
	assertNoPayload(t, watcher)
}

func TestHub_RateLimit(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	typer := newTestClient(hub, 1)
	watcher := newTestClient(hub, 2)
	hub.Register(typer)
	hub.Register(watcher)
	require.Eventually(t, func() bool {
		return hub.IsUserOnline(1) && hub.IsUserOnline(2)
	}, time.Second, 10*time.Millisecond)

	hub.JoinRoom(1, 7)
	hub.JoinRoom(2, 7)

	frame := []byte(`{"type":"typing_start","chat_room_id":7}`)
	for i := 0; i < maxMessagesPerSecond+5; i++ {
		hub.HandleClientMessage(typer, frame)
	}

	delivered := 0
	for {
		select {
		case <-watcher.Send:
			delivered++
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	assert.Equal(t, maxMessagesPerSecond, delivered)
}
