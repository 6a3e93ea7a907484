package websocket

import (
	"sync"
	"time"
)

// HubMetrics представляет агрегированные метрики WebSocket-хаба
type HubMetrics struct {
	totalConnections  int64     // Общее количество подключений за все время
	activeConnections int64     // Текущее количество активных подключений
	messagesSent      int64     // Количество сообщений, поставленных клиентам в очередь
	messagesReceived  int64     // Количество полученных от клиентов сообщений
	slowClientsKicked int64     // Клиенты, отключенные из-за переполненного буфера
	clusterRelayed    int64     // Сообщения, полученные от других инстансов
	startTime         time.Time // Время запуска хаба

	// Счетчики рассылок по типам событий
	eventTypeCounts map[string]int64

	mu sync.RWMutex
}

// NewHubMetrics создает новый экземпляр метрик Hub
func NewHubMetrics() *HubMetrics {
	return &HubMetrics{
		startTime:       time.Now(),
		eventTypeCounts: make(map[string]int64),
	}
}

// ConnectionOpened учитывает новое подключение
func (m *HubMetrics) ConnectionOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalConnections++
	m.activeConnections++
}

// ConnectionClosed уменьшает счетчик активных подключений
func (m *HubMetrics) ConnectionClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeConnections > 0 {
		m.activeConnections--
	}
}

// AddMessageSent увеличивает счетчик отправленных сообщений
func (m *HubMetrics) AddMessageSent(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesSent += count
}

// AddMessageReceived увеличивает счетчик полученных сообщений
func (m *HubMetrics) AddMessageReceived() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messagesReceived++
}

// AddSlowClientKicked учитывает отключение медленного клиента
func (m *HubMetrics) AddSlowClientKicked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slowClientsKicked++
}

// AddClusterRelayed учитывает сообщение, пришедшее из кластера
func (m *HubMetrics) AddClusterRelayed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusterRelayed++
}

// IncrementEventTypeCount увеличивает счетчик событий определенного типа
func (m *HubMetrics) IncrementEventTypeCount(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventTypeCounts[eventType]++
}

// GetAllMetrics возвращает все метрики в формате карты для JSON-ответа
func (m *HubMetrics) GetAllMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	eventStats := make(map[string]int64, len(m.eventTypeCounts))
	for eventType, count := range m.eventTypeCounts {
		eventStats[eventType] = count
	}

	return map[string]interface{}{
		"total_connections":   m.totalConnections,
		"active_connections":  m.activeConnections,
		"messages_sent":       m.messagesSent,
		"messages_received":   m.messagesReceived,
		"slow_clients_kicked": m.slowClientsKicked,
		"cluster_relayed":     m.clusterRelayed,
		"uptime_seconds":      time.Since(m.startTime).Seconds(),
		"start_time":          m.startTime.Format(time.RFC3339),
		"event_type_stats":    eventStats,
	}
}
