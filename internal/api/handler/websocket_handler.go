package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parking_management/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SpotStatusEvent is the message pushed to websocket subscribers whenever a
// spot changes status.
type SpotStatusEvent struct {
	SpotID       int64             `json:"spot_id"`
	ParkingLotID int64             `json:"parking_lot_id"`
	Number       int               `json:"number"`
	Status       domain.SpotStatus `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
}

// WebSocketManager fans spot status transitions out to connected clients.
// It implements service.SpotNotifier.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewWebSocketManager(logger *zap.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

func (wsm *WebSocketManager) Start() {
	for {
		select {
		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Debug("websocket client connected", zap.Int("total", total))

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Debug("websocket client disconnected", zap.Int("total", total))

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					wsm.logger.Warn("websocket write failed", zap.Error(err))
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

// NotifySpotStatus publishes the spot's new status. A full broadcast buffer
// drops the message rather than blocking the lifecycle operation.
func (wsm *WebSocketManager) NotifySpotStatus(spot *domain.Spot) {
	message, err := json.Marshal(SpotStatusEvent{
		SpotID:       spot.ID,
		ParkingLotID: spot.ParkingLotID,
		Number:       spot.Number,
		Status:       spot.Status,
		Timestamp:    spot.Changed,
	})
	if err != nil {
		wsm.logger.Error("marshaling spot status event", zap.Error(err))
		return
	}

	select {
	case wsm.broadcast <- message:
	default:
		wsm.logger.Warn("broadcast channel full, dropping spot status event",
			zap.Int64("spot_id", spot.ID))
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
	logger    *zap.Logger
}

func NewWebSocketHandler(wsManager *WebSocketManager, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager, logger: logger}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.wsManager.register <- conn

	go func() {
		defer func() {
			h.wsManager.unregister <- conn
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Warn("websocket read failed", zap.Error(err))
				}
				break
			}
		}
	}()
}
