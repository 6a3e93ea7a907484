package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Manager обрабатывает входящие сообщения и рассылает события лидерборда
type Manager struct {
	hub            HubInterface
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub HubInterface) *Manager {
	m := &Manager{
		hub:            hub,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
	m.RegisterHandler(PING, m.handlePing)
	return m
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var raw struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(message, &raw); err != nil {
		log.Printf("[WebSocketManager] Некорректный JSON от %s: %v", client.ConnectionID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.messageHandler[raw.Type]
	if !ok {
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", raw.Type))
		return nil // Неизвестный тип - не закрываем соединение
	}

	return handler(raw.Data, client)
}

func (m *Manager) handlePing(_ json.RawMessage, client *Client) error {
	return client.SendJSON(Event{
		Type: PONG,
		Data: map[string]interface{}{"serverTime": time.Now().UTC()},
	})
}

// SendErrorToClient отправляет клиенту сообщение об ошибке, не закрывая соединение
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	errorEvent := Event{
		Type: SERVER_ERROR,
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := client.SendJSON(errorEvent); err != nil {
		log.Printf("[WebSocketManager] Не удалось отправить ошибку клиенту %s: %v", client.ConnectionID, err)
	}
}

// BroadcastEvent отправляет событие всем клиентам
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	if err := m.hub.BroadcastJSON(Event{Type: eventType, Data: data}); err != nil {
		return err
	}
	if hub, ok := m.hub.(*Hub); ok {
		hub.metrics.IncrementEventTypeCount(eventType)
	}
	return nil
}

// Publish реализует service.EventPublisher: ошибки рассылки только логируются
func (m *Manager) Publish(eventType string, data interface{}) {
	if err := m.BroadcastEvent(eventType, data); err != nil {
		log.Printf("[WebSocketManager] Ошибка рассылки события %s: %v", eventType, err)
	}
}

// GetMetrics возвращает текущие метрики WebSocket-системы
func (m *Manager) GetMetrics() map[string]interface{} {
	metrics := m.hub.GetMetrics()
	metrics["client_count"] = m.hub.ClientCount()
	return metrics
}
