package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// wsConn queues outbound frames and writes them from a single goroutine.
type wsConn struct {
	id           string
	ws           *websocket.Conn
	send         chan outboundFrame
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
	logger       *zap.Logger
}

func newWSConn(ws *websocket.Conn, sendBuffer int, writeTimeout time.Duration, logger *zap.Logger) *wsConn {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	id := uuid.New().String()
	return &wsConn{
		id:           id,
		ws:           ws,
		send:         make(chan outboundFrame, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
		logger:       logger.With(zap.String("connId", id)),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(event string, payload interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- outboundFrame{Event: event, Data: payload}:
		return true
	default:
		c.logger.Warn("send queue full", zap.String("event", event))
		return false
	}
}

func (c *wsConn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

// closeGoingAway tells the client the server is leaving before closing.
// WriteControl may run concurrently with writeLoop.
func (c *wsConn) closeGoingAway() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		c.logger.Debug("close frame not sent", zap.Error(err))
	}
	c.close()
}

func (c *wsConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteJSON(frame); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
