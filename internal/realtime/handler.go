package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/config"
	"foodhub/internal/domain"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/httpx"
)

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Handler upgrades GET /ws and feeds inbound client events into the Router.
type Handler struct {
	router   *Router
	upgrader websocket.Upgrader
	verifier TokenVerifier
	cfg      config.RealtimeConfig
	logger   *zap.Logger

	mu    sync.Mutex
	conns map[string]*wsConn
}

func NewHandler(router *Router, cfg config.RealtimeConfig, verifier TokenVerifier, logger *zap.Logger) *Handler {
	h := &Handler{
		router:   router,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
		conns:    make(map[string]*wsConn),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// identify resolves the optional token from the "token" query parameter or
// the Authorization header.
func (h *Handler) identify(r *http.Request) (*auth.Identity, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.BearerToken(r)
	}
	if token == "" {
		if h.cfg.RequireToken {
			return nil, apperrors.NewUnauthorizedError("missing token")
		}
		return nil, nil
	}
	if h.verifier == nil {
		return nil, nil
	}
	identity, err := h.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identify(r)
	if err != nil {
		httpx.WriteError(w, uuid.New().String(), err, h.logger)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the client
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newWSConn(ws, h.cfg.SendBuffer, h.cfg.WriteTimeout, h.logger)
	conn.logger.Debug("client connected")

	h.mu.Lock()
	h.conns[conn.id] = conn
	h.mu.Unlock()

	go conn.writeLoop()
	h.readLoop(conn, identity)
}

func (h *Handler) readLoop(conn *wsConn, identity *auth.Identity) {
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn.id)
		h.mu.Unlock()

		h.router.UnregisterConn(conn)
		conn.close()
		conn.logger.Debug("client disconnected")
	}()

	conn.ws.SetReadLimit(maxMessageSize)
	conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				conn.logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			conn.Send(EventError, errorPayload{Message: "malformed frame"})
			continue
		}

		switch frame.Event {
		case EventRegisterUser:
			h.handleRegister(conn, identity, frame.Data)
		case EventJoinOrderRoom:
			h.handleJoin(conn, frame.Data)
		default:
			conn.Send(EventError, errorPayload{Message: "unknown event " + frame.Event})
		}
	}
}

func (h *Handler) handleRegister(conn *wsConn, identity *auth.Identity, data json.RawMessage) {
	var p registerUserPayload
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		conn.Send(EventError, errorPayload{Message: "register_user requires userId and userType"})
		return
	}
	class, ok := ParseRecipientClass(p.UserType)
	if !ok {
		conn.Send(EventError, errorPayload{Message: "unknown userType " + p.UserType})
		return
	}
	if identity != nil && identity.Role != domain.RoleAdmin && (identity.SubjectID != p.UserID || !classAllowed(identity.Role, class)) {
		conn.Send(EventError, errorPayload{Message: "registration does not match token"})
		return
	}

	h.router.Register(class, p.UserID, conn)
	conn.logger.Debug("recipient registered", zap.String("class", string(class)), zap.String("recipientId", p.UserID))
}

func (h *Handler) handleJoin(conn *wsConn, data json.RawMessage) {
	var p joinOrderRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.OrderID == "" {
		conn.Send(EventError, errorPayload{Message: "join_order_room requires orderId"})
		return
	}
	h.router.JoinOrderRoom(p.OrderID, conn)
}

// CloseAll sends a going-away close frame to every live connection and
// closes it. Hijacked connections are not covered by http.Server.Shutdown.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.closeGoingAway()
	}
	if len(conns) > 0 {
		h.logger.Info("closed websocket connections", zap.Int("count", len(conns)))
	}
}
