package websocket

// MetricsProvider определяет метод для получения метрик хаба.
type MetricsProvider interface {
	GetMetrics() map[string]interface{}
	ClientCount() int
}

// HubInterface - то, что нужно Manager от хаба
type HubInterface interface {
	MetricsProvider

	// BroadcastJSON отправляет структуру JSON всем клиентам (и другим инстансам в кластере)
	BroadcastJSON(v interface{}) error
}
