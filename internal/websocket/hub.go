package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HubConfig содержит настройки хаба
type HubConfig struct {
	// InstanceID - ID этого инстанса в кластере. Пустой - сгенерировать.
	InstanceID string
	// Channel - канал pub/sub для обмена событиями между инстансами.
	// Пустой канал или nil-провайдер означают одиночный режим.
	Channel string
	// BroadcastBuffer - размер очереди рассылки
	BroadcastBuffer int
}

// Hub хранит подключенных клиентов и рассылает им события
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	done     chan struct{}
	stopOnce sync.Once

	instanceID string
	channel    string
	provider   PubSubProvider

	metrics *HubMetrics

	// clientCount обновляется в Run и читается из других горутин
	countMu     sync.RWMutex
	clientCount int
}

// ClusterMessage - конверт события при пересылке между инстансами
type ClusterMessage struct {
	InstanceID string          `json:"instance_id"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewHub создает хаб. provider может быть nil (одиночный режим).
func NewHub(cfg HubConfig, provider PubSubProvider) *Hub {
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	if cfg.BroadcastBuffer <= 0 {
		cfg.BroadcastBuffer = 256
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, cfg.BroadcastBuffer),
		done:       make(chan struct{}),
		instanceID: cfg.InstanceID,
		channel:    cfg.Channel,
		provider:   provider,
		metrics:    NewHubMetrics(),
	}
}

// InstanceID возвращает ID этого инстанса
func (h *Hub) InstanceID() string {
	return h.instanceID
}

func (h *Hub) clusterEnabled() bool {
	return h.provider != nil && h.channel != ""
}

// Run обрабатывает регистрацию, отключение и рассылку до отмены ctx или вызова Stop
func (h *Hub) Run(ctx context.Context) {
	if h.clusterEnabled() {
		if err := h.subscribeCluster(ctx); err != nil {
			log.Printf("[Hub] Не удалось подписаться на канал кластера '%s': %v. Работаем локально.", h.channel, err)
		}
	}

	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.metrics.ConnectionOpened()
			h.setClientCount(len(h.clients))
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.deliver(message)
		case <-ctx.Done():
			h.Stop()
			h.closeAll()
			return
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop останавливает хаб; повторный вызов безопасен
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Register добавляет клиента в хаб
func (h *Hub) Register(client *Client) {
	if h.stopped() {
		client.CloseSend()
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
		client.CloseSend()
	}
}

// Unregister удаляет клиента из хаба
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastJSON сериализует v, рассылает локальным клиентам и публикует в кластер
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast message: %w", err)
	}

	if err := h.broadcastLocal(data); err != nil {
		return err
	}

	if h.clusterEnabled() {
		envelope, err := json.Marshal(ClusterMessage{
			InstanceID: h.instanceID,
			Payload:    data,
			Timestamp:  time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal cluster message: %w", err)
		}
		if err := h.provider.Publish(h.channel, envelope); err != nil {
			return fmt.Errorf("failed to publish to cluster: %w", err)
		}
	}
	return nil
}

func (h *Hub) broadcastLocal(data []byte) error {
	if h.stopped() {
		return fmt.Errorf("hub is stopped")
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return fmt.Errorf("hub is stopped")
	}
}

// deliver рассылает сообщение всем клиентам; медленные клиенты отключаются
func (h *Hub) deliver(message []byte) {
	var sent int64
	for client := range h.clients {
		if client.enqueue(message) {
			sent++
			continue
		}
		log.Printf("[Hub] Буфер клиента %s переполнен, отключаем", client.ConnectionID)
		h.metrics.AddSlowClientKicked()
		h.removeClient(client)
	}
	h.metrics.AddMessageSent(sent)
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.CloseSend()
	h.metrics.ConnectionClosed()
	h.setClientCount(len(h.clients))
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		h.removeClient(client)
	}
	log.Printf("[Hub] Хаб остановлен (instance %s)", h.instanceID)
}

// subscribeCluster пересылает локальным клиентам события других инстансов
func (h *Hub) subscribeCluster(ctx context.Context) error {
	msgCh, err := h.provider.Subscribe(ctx, h.channel)
	if err != nil {
		return err
	}

	go func() {
		for raw := range msgCh {
			var msg ClusterMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Printf("[Hub] Некорректное сообщение кластера: %v", err)
				continue
			}
			if msg.InstanceID == h.instanceID {
				continue // Свое же сообщение, локально уже разослано
			}
			h.metrics.AddClusterRelayed()
			if err := h.broadcastLocal(msg.Payload); err != nil {
				return
			}
		}
	}()

	log.Printf("[Hub] Подписка на канал кластера '%s' (instance %s)", h.channel, h.instanceID)
	return nil
}

func (h *Hub) setClientCount(n int) {
	h.countMu.Lock()
	h.clientCount = n
	h.countMu.Unlock()
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.clientCount
}

// GetMetrics возвращает метрики хаба
func (h *Hub) GetMetrics() map[string]interface{} {
	m := h.metrics.GetAllMetrics()
	m["instance_id"] = h.instanceID
	m["cluster_enabled"] = h.clusterEnabled()
	m["clients"] = h.ClientCount()
	return m
}
