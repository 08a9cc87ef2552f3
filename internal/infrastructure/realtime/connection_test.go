package realtime

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

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func TestCloseFlushesQueuedFrames(t *testing.T) {
	connCh := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		c := NewConnection("alice", ws)
		c.Start()
		connCh <- c
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	conn := <-connCh
	require.NoError(t, conn.Send([]byte("first")))
	require.NoError(t, conn.Send([]byte("last")))
	conn.Close(websocket.CloseNormalClosure, "done")

	// Frames enqueued before Close reach the client, in order, ahead of
	// the close frame.
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	_, data, err = client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "last", string(data))

	_, _, err = client.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
