package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokehub/pkg/logging"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestPublishFansOutAndDropsBrokenSubscribers(t *testing.T) {
	hub := NewHub(logging.Discard())
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Add(good)
	hub.Add(bad)
	require.Equal(t, 2, hub.Stats().WSClients)

	hub.Publish(PokemonEvent{Type: TypeCreated, ID: "abc", Name: "pikachu"})

	require.Len(t, good.messages, 1)
	var ev PokemonEvent
	require.NoError(t, json.Unmarshal(good.messages[0], &ev))
	assert.Equal(t, TypeCreated, ev.Type)
	assert.Equal(t, "pikachu", ev.Name)
	assert.False(t, ev.At.IsZero())

	assert.True(t, bad.closed)
	assert.Equal(t, 1, hub.Stats().WSClients)
}

func TestWSHandlerDeliversEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(logging.Discard())

	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", http.Header{})
	require.NoError(t, err)
	defer ws.Close()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, welcome, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(welcome), "welcome")

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(PokemonEvent{Type: TypeDeleted, ID: "id-1", Name: "mew"})

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"pokemon.deleted"`)
}

func TestCloseDisconnectsEverySubscriber(t *testing.T) {
	hub := NewHub(logging.Discard())
	a, b := &fakeConn{}, &fakeConn{}
	hub.Add(a)
	hub.Add(b)

	hub.Close()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Zero(t, hub.Stats().WSClients)
}
