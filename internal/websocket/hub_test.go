package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryBus - in-memory PubSubProvider, общий для нескольких хабов
type memoryBus struct {
	mu   sync.Mutex
	subs map[string][]chan []byte
}

func newMemoryBus() *memoryBus {
	return &memoryBus{subs: make(map[string][]chan []byte)}
}

func (b *memoryBus) Publish(channel string, message []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		ch <- message
	}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()
	return ch, nil
}

func (b *memoryBus) Close() error { return nil }

func startHub(t *testing.T, cfg HubConfig, provider PubSubProvider) *Hub {
	t.Helper()
	hub := NewHub(cfg, provider)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Event{}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)

	c1 := NewClient(hub, nil)
	c2 := NewClient(hub, nil)
	hub.Register(c1)
	hub.Register(c2)

	require.NoError(t, hub.BroadcastJSON(Event{Type: POINTS_CLAIMED, Data: map[string]int{"pointsClaimed": 7}}))

	assert.Equal(t, POINTS_CLAIMED, receive(t, c1).Type)
	assert.Equal(t, POINTS_CLAIMED, receive(t, c2).Type)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)

	c := NewClient(hub, nil)
	hub.Register(c)
	hub.Unregister(c)

	assert.Eventually(t, func() bool { return c.sendClosed.Load() }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	// Повторное отключение не паникует
	hub.Unregister(c)
	c.CloseSend()
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)

	slow := &Client{ConnectionID: "slow", hub: hub, send: make(chan []byte, 1)}
	fast := NewClient(hub, nil)
	hub.Register(slow)
	hub.Register(fast)

	require.NoError(t, hub.BroadcastJSON(Event{Type: USER_ADDED}))
	require.NoError(t, hub.BroadcastJSON(Event{Type: HISTORY_CLEARED}))

	assert.Equal(t, USER_ADDED, receive(t, fast).Type)
	assert.Equal(t, HISTORY_CLEARED, receive(t, fast).Type)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.GetMetrics()["slow_clients_kicked"])
}

func TestHub_StopRejectsNewClients(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)
	hub.Stop()
	hub.Stop()

	c := NewClient(hub, nil)
	hub.Register(c)
	assert.True(t, c.sendClosed.Load())
	assert.Error(t, hub.BroadcastJSON(Event{Type: USER_ADDED}))
}

func TestHub_ClusterRelay(t *testing.T) {
	bus := newMemoryBus()
	hubA := startHub(t, HubConfig{InstanceID: "a", Channel: "leaderboard:events"}, bus)
	hubB := startHub(t, HubConfig{InstanceID: "b", Channel: "leaderboard:events"}, bus)

	// Ждем, пока оба хаба подпишутся
	require.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.subs["leaderboard:events"]) == 2
	}, time.Second, 10*time.Millisecond)

	clientA := NewClient(hubA, nil)
	clientB := NewClient(hubB, nil)
	hubA.Register(clientA)
	hubB.Register(clientB)

	require.NoError(t, hubA.BroadcastJSON(Event{Type: POINTS_CLAIMED}))

	assert.Equal(t, POINTS_CLAIMED, receive(t, clientA).Type)
	assert.Equal(t, POINTS_CLAIMED, receive(t, clientB).Type)

	// Свое сообщение из кластера не дублируется
	select {
	case msg := <-clientA.send:
		t.Fatalf("unexpected duplicate message: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, int64(1), hubB.GetMetrics()["cluster_relayed"])
}

func TestManager_HandleMessage(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)
	manager := NewManager(hub)
	c := NewClient(hub, nil)

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, manager.HandleMessage([]byte(`{"type":"ping"}`), c))
		assert.Equal(t, PONG, receive(t, c).Type)
	})

	t.Run("unknown type", func(t *testing.T) {
		require.NoError(t, manager.HandleMessage([]byte(`{"type":"claim"}`), c))
		ev := receive(t, c)
		assert.Equal(t, SERVER_ERROR, ev.Type)
		data, ok := ev.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "unknown_message_type", data["code"])
	})

	t.Run("invalid json", func(t *testing.T) {
		assert.Error(t, manager.HandleMessage([]byte(`{not json`), c))
		assert.Equal(t, SERVER_ERROR, receive(t, c).Type)
	})
}

func TestManager_PublishCountsEvents(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)
	manager := NewManager(hub)

	manager.Publish(USER_ADDED, map[string]string{"name": "Ann"})
	manager.Publish(USER_ADDED, map[string]string{"name": "Bob"})

	stats, ok := manager.GetMetrics()["event_type_stats"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(2), stats[USER_ADDED])
}

func TestClient_EndToEnd(t *testing.T) {
	hub := startHub(t, HubConfig{}, nil)
	manager := NewManager(hub)
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		hub.Register(client)
		client.StartPumps(manager.HandleMessage)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	manager.Publish(HISTORY_CLEARED, map[string]int64{"deleted": 3})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, HISTORY_CLEARED, ev.Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": PING}))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, PONG, ev.Type)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SingleInstanceWithoutProvider(t *testing.T) {
	local := startHub(t, HubConfig{InstanceID: "solo"}, nil)
	assert.Equal(t, false, local.GetMetrics()["cluster_enabled"])

	// Провайдер без канала тоже означает одиночный режим
	bus := newMemoryBus()
	noChannel := startHub(t, HubConfig{}, bus)
	assert.Equal(t, false, noChannel.GetMetrics()["cluster_enabled"])

	c := NewClient(noChannel, nil)
	noChannel.Register(c)
	require.NoError(t, noChannel.BroadcastJSON(Event{Type: USER_ADDED}))
	assert.Equal(t, USER_ADDED, receive(t, c).Type)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	assert.Empty(t, bus.subs, "hub without channel must not subscribe")
}
