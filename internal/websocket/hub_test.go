package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient captures what the hub sends to it
type mockClient struct {
	id       string
	userID   int32
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID int32) *mockClient {
	return &mockClient{id: id, userID: userID}
}

func (m *mockClient) ID() string    { return m.id }
func (m *mockClient) UserID() int32 { return m.userID }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", 1)
	client2 := newMockClient("client-2", 1)
	client3 := newMockClient("client-3", 2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(999))
	assert.Equal(t, 3, hub.TotalClientCount())

	// registering the same connection twice does not double count
	hub.Register(client1)
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_SendToUser_Isolation(t *testing.T) {
	hub := NewHub()

	mine1 := newMockClient("phone", 1)
	mine2 := newMockClient("laptop", 1)
	other := newMockClient("other", 2)
	hub.Register(mine1)
	hub.Register(mine2)
	hub.Register(other)

	n := hub.SendToUser(1, NotificationCreated(map[string]any{"id": float64(42)}))

	assert.Equal(t, 2, n)
	assert.Len(t, mine1.GetMessages(), 1)
	assert.Len(t, mine2.GetMessages(), 1)
	assert.Empty(t, other.GetMessages(), "another user's connection must not see the event")
}

func TestHub_SendToUser_SkipsClosedClient(t *testing.T) {
	hub := NewHub()

	open := newMockClient("open", 1)
	closed := newMockClient("closed", 1)
	_ = closed.Close()
	hub.Register(open)
	hub.Register(closed)

	n := hub.SendToUser(1, NotificationCreated(nil))

	assert.Equal(t, 1, n)
	assert.Len(t, open.GetMessages(), 1)
}

func TestHub_SendToUser_NoConnections(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		assert.Equal(t, 0, hub.SendToUser(999, NotificationCreated(nil)))
	})
}

func TestHub_SendToUser_UnserializablePayload(t *testing.T) {
	hub := NewHub()
	client := newMockClient("c", 1)
	hub.Register(client)

	n := hub.SendToUser(1, NotificationCreated(make(chan int)))

	assert.Equal(t, 0, n)
	assert.Empty(t, client.GetMessages())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), int32(i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.SendToUser(int32(idx%5), NotificationCreated(map[string]any{"id": idx}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	for u := int32(0); u < 5; u++ {
		assert.Equal(t, 0, hub.ClientCount(u))
	}
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", 1))
	})
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()
	a := newMockClient("a", 1)
	b := newMockClient("b", 2)
	hub.Register(a)
	hub.Register(b)

	hub.CloseAll()

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Equal(t, 0, hub.TotalClientCount())
}
