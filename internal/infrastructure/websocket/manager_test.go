package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued message")
		return WSMessage{}
	}
}

func TestPublishToUserReachesEveryConnection(t *testing.T) {
	m := NewManager()
	phone := NewClient("u1", nil)
	tablet := NewClient("u1", nil)
	other := NewClient("u2", nil)
	m.Register(phone)
	m.Register(tablet)
	m.Register(other)

	assert.Equal(t, 2, m.ConnectionCount("u1"))

	m.PublishToUser("u1", "watchlist_update", map[string]int{"count": 1})

	assert.Equal(t, "watchlist_update", receive(t, phone).Type)
	assert.Equal(t, "watchlist_update", receive(t, tablet).Type)
	assert.Len(t, other.Send, 0)

	m.PublishToAll("catalog_update", nil)
	assert.Equal(t, "catalog_update", receive(t, other).Type)
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	m := NewManager()
	c := NewClient("u1", nil)
	m.Register(c)

	m.Unregister(c)
	m.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, m.IsOnline("u1"))

	// publishing to a departed user is a no-op
	m.PublishToUser("u1", "chat_update", nil)
}

func TestHandleClientMessage(t *testing.T) {
	m := NewManager()
	c := NewClient("u1", nil)
	m.Register(c)

	m.HandleClientMessage(c, []byte(`{"type":"ping"}`))
	assert.Equal(t, MessageTypePong, receive(t, c).Type)

	m.HandleClientMessage(c, []byte(`{"type":"dance"}`))
	assert.Equal(t, MessageTypeError, receive(t, c).Type)

	m.HandleClientMessage(c, []byte(`not json`))
	assert.Equal(t, MessageTypeError, receive(t, c).Type)
}

func TestFullBufferDropsEvents(t *testing.T) {
	m := NewManager()
	c := NewClient("u1", nil)
	m.Register(c)

	for i := 0; i < sendBuffer+10; i++ {
		m.PublishToUser("u1", "chat_update", i)
	}
	assert.Len(t, c.Send, sendBuffer)
}
