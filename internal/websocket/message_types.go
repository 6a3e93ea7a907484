package websocket

// Типы событий лидерборда, рассылаемые всем клиентам
const (
	// POINTS_CLAIMED сообщает о начислении очков пользователю
	POINTS_CLAIMED = "POINTS_CLAIMED"

	// USER_ADDED сообщает о регистрации нового пользователя
	USER_ADDED = "USER_ADDED"

	// HISTORY_CLEARED сообщает об очистке журнала начислений
	HISTORY_CLEARED = "HISTORY_CLEARED"

	// LEADERBOARD_UPDATE содержит актуальный лидерборд (после заполнения или прогрева кеша)
	LEADERBOARD_UPDATE = "LEADERBOARD_UPDATE"
)

// Служебные типы сообщений
const (
	// PING отправляет клиент для проверки соединения
	PING = "ping"

	// PONG - ответ сервера на PING
	PONG = "pong"

	// SERVER_ERROR - ошибка обработки входящего сообщения
	SERVER_ERROR = "server:error"
)
