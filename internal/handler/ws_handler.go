package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/leaderboard-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket соединения live-обновлений
type WSHandler struct {
	wsHub     *websocket.Hub
	wsManager *websocket.Manager
	upgrader  gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins - тот же список, что и для CORS.
func NewWSHandler(wsHub *websocket.Hub, wsManager *websocket.Manager, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return &WSHandler{
		wsHub:     wsHub,
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Не браузерный клиент (curl, мобильное приложение)
				if origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
				return false
			},
		},
	}
}

// HandleConnection обрабатывает подключение к WebSocket
// GET /ws
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту статусом 4xx
		log.Printf("[WSHandler] Ошибка при обновлении соединения: %v", err)
		return
	}

	client := websocket.NewClient(h.wsHub, conn)
	h.wsHub.Register(client)
	client.StartPumps(h.wsManager.HandleMessage)

	log.Printf("[WSHandler] Клиент подключен (ConnID: %s, IP: %s)", client.ConnectionID, c.ClientIP())
}
