package telemetry

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

func TestStatusRoundTrip(t *testing.T) {
	in := Status{
		SessionID: "c0ffee",
		Tick:      120,
		MaxTick:   2400,
		Playing:   true,
		Speed:     0.5,
		Blocks:    9000,
		Solid:     8500,
		Chunks:    42,
	}
	data, err := EncodeStatus(in)
	require.NoError(t, err)

	out, err := DecodeStatus(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeStatusInvalid(t *testing.T) {
	_, err := DecodeStatus([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) Status {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, kind)
	s, err := DecodeStatus(data)
	require.NoError(t, err)
	return s
}

func TestHubSendsLastStatusOnConnect(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	require.NoError(t, hub.Publish(Status{Tick: 7, MaxTick: 10}))

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv)
	got := readStatus(t, conn)
	assert.Equal(t, 7, got.Tick)
	assert.Equal(t, 10, got.MaxTick)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 5*time.Second, 10*time.Millisecond)

	// mensagens dos observadores são ignoradas
	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte("oi")))

	require.NoError(t, hub.Publish(Status{Tick: 3, Playing: true}))
	assert.Equal(t, 3, readStatus(t, a).Tick)
	assert.True(t, readStatus(t, b).Playing)

	b.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestHubClosed(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Close()
	hub.Close()

	done := make(chan struct{})
	go func() {
		hub.Publish(Status{Tick: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish bloqueou depois do Close")
	}
}
