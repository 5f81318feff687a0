package websocket

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/pkg/logger"
)

type fakeConnection struct {
	mutex    sync.Mutex
	clientID string
	messages []interface{}
	closed   bool
}

func (c *fakeConnection) Send(message interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.messages = append(c.messages, message)
	return nil
}

func (c *fakeConnection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConnection) ClientID() string {
	return c.clientID
}

func (c *fakeConnection) messageCount() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.messages)
}

func (c *fakeConnection) isClosed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.closed
}

func TestBroadcastReachesAllClients(t *testing.T) {
	cm := NewConnectionManager(logger.Nop())

	a := &fakeConnection{clientID: "a"}
	b := &fakeConnection{clientID: "b"}
	require.NoError(t, cm.RegisterConnection("a", a))
	require.NoError(t, cm.RegisterConnection("b", b))
	assert.Equal(t, 2, cm.ConnectionCount())

	require.NoError(t, cm.Broadcast(map[string]string{"state": "sold"}))
	assert.Equal(t, 1, a.messageCount())
	assert.Equal(t, 1, b.messageCount())

	require.NoError(t, cm.UnregisterConnection("a"))
	require.NoError(t, cm.Broadcast(map[string]string{"state": "canceled"}))
	assert.Equal(t, 1, a.messageCount())
	assert.Equal(t, 2, b.messageCount())
}

func TestRegisterReplacesExistingConnection(t *testing.T) {
	cm := NewConnectionManager(logger.Nop())

	old := &fakeConnection{clientID: "a"}
	require.NoError(t, cm.RegisterConnection("a", old))

	replacement := &fakeConnection{clientID: "a"}
	require.NoError(t, cm.RegisterConnection("a", replacement))

	assert.True(t, old.isClosed())
	assert.Equal(t, 1, cm.ConnectionCount())
}

func TestCloseAll(t *testing.T) {
	cm := NewConnectionManager(logger.Nop())

	a := &fakeConnection{clientID: "a"}
	b := &fakeConnection{clientID: "b"}
	require.NoError(t, cm.RegisterConnection("a", a))
	require.NoError(t, cm.RegisterConnection("b", b))

	require.NoError(t, cm.CloseAll())
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Equal(t, 0, cm.ConnectionCount())
}
