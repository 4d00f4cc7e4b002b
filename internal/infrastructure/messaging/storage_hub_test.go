package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStorageHubDeliversPerVisitor(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewStorageHub(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	alice1 := &Client{ID: "a1", VisitorID: "alice", Send: make(chan []byte, 4), hub: hub}
	alice2 := &Client{ID: "a2", VisitorID: "alice", Send: make(chan []byte, 4), hub: hub}
	bob := &Client{ID: "b1", VisitorID: "bob", Send: make(chan []byte, 4), hub: hub}
	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)

	require.Eventually(t, func() bool { return hub.ConnectionCount("alice") == 2 }, time.Second, 5*time.Millisecond)

	hub.Publish("alice", StorageEvent{Key: "engagement:tide", WorkID: "tide", Origin: "a1"})

	select {
	case msg := <-alice2.Send:
		var ev StorageEvent
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, StorageEvent{Key: "engagement:tide", WorkID: "tide", Origin: "a1"}, ev)
	case <-time.After(time.Second):
		t.Fatal("alice2 did not receive the event")
	}
	assert.Empty(t, alice1.Send, "origin connection is skipped")
	assert.Empty(t, bob.Send, "other visitors are not told")

	hub.Unregister(bob)
	_, open := <-bob.Send
	assert.False(t, open)
	assert.Zero(t, hub.ConnectionCount("bob"))

	cancel()
	<-hub.Done()
	_, open = <-alice1.Send
	assert.False(t, open)
}

func TestStorageHubPublishNeverBlocks(t *testing.T) {
	hub := NewStorageHub(1, nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish("v", StorageEvent{Key: "k"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestStorageHubServe(t *testing.T) {
	hub := NewStorageHub(8, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := Upgrader(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(&upgrader, w, r, r.URL.Query().Get("v"))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?v=visitor-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(hello), `"connection":`)

	require.Eventually(t, func() bool { return hub.ConnectionCount("visitor-1") == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish("visitor-1", StorageEvent{Key: "engagement:x", WorkID: "x"})

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"engagement:x","workId":"x"}`, string(msg))
}
