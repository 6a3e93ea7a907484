package service

// EventPublisher рассылает события подключенным клиентам.
// Реализация не должна блокировать и не возвращает ошибок: рассылка best-effort.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

// NoopPublisher используется, когда live-обновления отключены
type NoopPublisher struct{}

// Publish ничего не делает
func (NoopPublisher) Publish(eventType string, data interface{}) {}
