package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"

	"ludo-server/internal/ludo"
)

// A peer that stops reading must not stall the room goroutine: every write
// is bounded by the per-write timeout and the stuck socket gets dropped.
func TestSendMessageToStalledSocket(t *testing.T) {
	oldTimeout := writeTimeout
	writeTimeout = 200 * time.Millisecond
	defer func() { writeTimeout = oldTimeout }()

	accepted := make(chan *websocket.Conn, 1)
	done := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
		<-done
	}))
	defer server.Close()
	defer close(done)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.Dial(context.Background(), url, nil)
	assert.NoError(t, err)
	defer client.CloseNow()
	// The client never reads, so the server-side writes back up once the
	// transport buffers fill.

	conn := <-accepted
	room := NewRoom(ludo.NewGame(), NewConnectionManager(), NewSessionManager(), nil, time.Minute)

	payload := strings.Repeat("x", 64<<10)
	start := time.Now()
	for i := 0; i < 256; i++ {
		room.sendMessage(conn, ServerMessage{Type: "game_state", Payload: payload})
	}
	// One write may block for the timeout; after that the connection is
	// closed and the rest fail fast instead of queueing behind it.
	assert.Less(t, time.Since(start), 3*time.Second)
}
