// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/clinicflow/roteiros/internal/errors"
	"github.com/clinicflow/roteiros/internal/models"
	"github.com/clinicflow/roteiros/internal/services"
	"github.com/clinicflow/roteiros/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	previewWriteWait  = 10 * time.Second
	previewPongWait   = 60 * time.Second
	previewPingPeriod = (previewPongWait * 9) / 10
	previewGauge      = "ws_preview_connections"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PreviewMessage is the server answer on /ws/preview.
type PreviewMessage struct {
	Type      string               `json:"type"`
	Data      *models.ParsedScript `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
	Code      string               `json:"code,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// previewClient is one live-preview connection.
type previewClient struct {
	id        string
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closed    int32
	createdAt time.Time
}

func (client *previewClient) Close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		client.conn.Close()
	}
}

func (client *previewClient) IsClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

func (client *previewClient) write(messageType int, data []byte) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()

	if err := client.conn.SetWriteDeadline(time.Now().Add(previewWriteWait)); err != nil {
		return err
	}
	return client.conn.WriteMessage(messageType, data)
}

func (client *previewClient) send(msg PreviewMessage) error {
	msg.Timestamp = time.Now().UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return client.write(websocket.TextMessage, data)
}

// PreviewHub re-parses the script on every edit sent over /ws/preview.
type PreviewHub struct {
	scripts      *services.ScriptService
	metrics      *utils.MetricsCollector
	logger       *utils.Logger
	maxMessage   int64
	clients      map[string]*previewClient
	mutex        sync.RWMutex
	shuttingDown int32
}

func NewPreviewHub(scripts *services.ScriptService, metrics *utils.MetricsCollector, maxMessage int64) *PreviewHub {
	return &PreviewHub{
		scripts:    scripts,
		metrics:    metrics,
		logger:     utils.GetLogger(),
		maxMessage: maxMessage,
		clients:    make(map[string]*previewClient),
	}
}

// ServeWS upgrades the request and runs the preview loop until the client leaves.
func (hub *PreviewHub) ServeWS(c *gin.Context) {
	if atomic.LoadInt32(&hub.shuttingDown) == 1 {
		NewResponseHelper().Error(c, http.StatusServiceUnavailable, ErrorInternalError, "server is shutting down")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err})
		return
	}

	client := &previewClient{id: uuid.NewString(), conn: conn, createdAt: time.Now()}
	hub.register(client)
	defer hub.unregister(client)

	done := make(chan struct{})
	defer close(done)
	go hub.pingLoop(client, done)

	hub.readLoop(client)
}

func (hub *PreviewHub) readLoop(client *previewClient) {
	conn := client.conn
	// JSON escaping can double the script size.
	conn.SetReadLimit(hub.maxMessage*2 + 1024)
	_ = conn.SetReadDeadline(time.Now().Add(previewPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(previewPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.logger.Debug("preview connection closed", map[string]interface{}{"client": client.id, "error": err})
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(previewPongWait))

		if err := client.send(hub.preview(data)); err != nil {
			return
		}
	}
}

func (hub *PreviewHub) preview(data []byte) PreviewMessage {
	var req models.ParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PreviewMessage{Type: "error", Error: "invalid message: " + err.Error(), Code: ErrorBadRequest}
	}

	parsed, err := hub.scripts.Parse(req.Format, req.Content)
	if err != nil {
		_, code := statusForError(apperrors.TypeOf(err))
		return PreviewMessage{Type: "error", Error: err.Error(), Code: code}
	}
	return PreviewMessage{Type: "preview", Data: parsed}
}

func (hub *PreviewHub) pingLoop(client *previewClient, done <-chan struct{}) {
	ticker := time.NewTicker(previewPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if client.IsClosed() {
				return
			}
			if err := client.write(websocket.PingMessage, nil); err != nil {
				client.Close()
				return
			}
		}
	}
}

func (hub *PreviewHub) register(client *previewClient) {
	hub.mutex.Lock()
	hub.clients[client.id] = client
	hub.mutex.Unlock()
	hub.metrics.IncGauge(previewGauge)
}

func (hub *PreviewHub) unregister(client *previewClient) {
	hub.mutex.Lock()
	_, exists := hub.clients[client.id]
	delete(hub.clients, client.id)
	hub.mutex.Unlock()

	client.Close()
	if exists {
		hub.metrics.DecGauge(previewGauge)
	}
}

// Count returns the number of open preview connections.
func (hub *PreviewHub) Count() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients)
}

// Shutdown sends a close frame to every client and refuses new connections.
func (hub *PreviewHub) Shutdown() {
	atomic.StoreInt32(&hub.shuttingDown, 1)

	hub.mutex.RLock()
	clients := make([]*previewClient, 0, len(hub.clients))
	for _, client := range hub.clients {
		clients = append(clients, client)
	}
	hub.mutex.RUnlock()

	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	for _, client := range clients {
		_ = client.write(websocket.CloseMessage, closeMsg)
		client.Close()
	}
}
