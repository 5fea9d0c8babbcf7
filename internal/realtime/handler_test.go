package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/config"
	"foodhub/internal/domain"
	apperrors "foodhub/internal/errors"
)

type stubVerifier struct {
	identities map[string]auth.Identity
}

func (v stubVerifier) Verify(token string) (auth.Identity, error) {
	identity, ok := v.identities[token]
	if !ok {
		return auth.Identity{}, apperrors.NewUnauthorizedError("invalid token")
	}
	return identity, nil
}

func newTestServer(t *testing.T, cfg config.RealtimeConfig) (*Router, *httptest.Server) {
	t.Helper()
	router := NewRouter(zap.NewNop())
	verifier := stubVerifier{identities: map[string]auth.Identity{
		"cust-token": {SubjectID: "u-1", Role: domain.RoleCustomer},
	}}
	srv := httptest.NewServer(NewHandler(router, cfg, verifier, zap.NewNop()))
	t.Cleanup(srv.Close)
	return router, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func sendFrame(t *testing.T, ws *websocket.Conn, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(Frame{Event: event, Data: raw}))
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, ws.ReadJSON(&frame))
	return frame
}

func TestHandler_RegisterAndReceive(t *testing.T) {
	router, srv := newTestServer(t, config.RealtimeConfig{AllowedOrigins: []string{"*"}})
	ws := dial(t, srv, "")

	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "rider-1", UserType: "driver"})
	require.Eventually(t, func() bool { return router.Connected(ClassDriver, "rider-1") }, 2*time.Second, 10*time.Millisecond)

	router.BroadcastToAllDrivers(domain.EventNewOrderAvailable, map[string]string{"id": "order-1"})

	frame := readFrame(t, ws)
	assert.Equal(t, domain.EventNewOrderAvailable, frame.Event)
	assert.JSONEq(t, `{"id":"order-1"}`, string(frame.Data))
}

func TestHandler_JoinOrderRoom(t *testing.T) {
	router, srv := newTestServer(t, config.RealtimeConfig{})
	ws := dial(t, srv, "")

	sendFrame(t, ws, EventJoinOrderRoom, joinOrderRoomPayload{OrderID: "order-1"})
	require.Eventually(t, func() bool {
		router.mu.RLock()
		defer router.mu.RUnlock()
		return len(router.rooms["order-1"]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	router.EmitToOrderRoom("order-1", domain.EventDriverAssigned, nil)
	assert.Equal(t, domain.EventDriverAssigned, readFrame(t, ws).Event)
}

func TestHandler_MalformedFrames(t *testing.T) {
	_, srv := newTestServer(t, config.RealtimeConfig{})
	ws := dial(t, srv, "")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, EventError, readFrame(t, ws).Event)

	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "x", UserType: "pilot"})
	assert.Equal(t, EventError, readFrame(t, ws).Event)

	sendFrame(t, ws, "dance", nil)
	assert.Equal(t, EventError, readFrame(t, ws).Event)
}

func TestHandler_DisconnectUnregisters(t *testing.T) {
	router, srv := newTestServer(t, config.RealtimeConfig{})
	ws := dial(t, srv, "")

	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "u-1", UserType: "customer"})
	require.Eventually(t, func() bool { return router.Connected(ClassCustomer, "u-1") }, 2*time.Second, 10*time.Millisecond)

	ws.Close()
	assert.Eventually(t, func() bool { return !router.Connected(ClassCustomer, "u-1") }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_TokenRequired(t *testing.T) {
	_, srv := newTestServer(t, config.RealtimeConfig{RequireToken: true})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_TokenMustMatchRegistration(t *testing.T) {
	router, srv := newTestServer(t, config.RealtimeConfig{RequireToken: true})
	ws := dial(t, srv, "?token=cust-token")

	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "rider-1", UserType: "driver"})
	assert.Equal(t, EventError, readFrame(t, ws).Event)
	assert.False(t, router.Connected(ClassDriver, "rider-1"))

	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "u-1", UserType: "customer"})
	assert.Eventually(t, func() bool { return router.Connected(ClassCustomer, "u-1") }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	_, srv := newTestServer(t, config.RealtimeConfig{AllowedOrigins: []string{"https://app.foodhub.test"}})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"https://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_CloseAllSendsGoingAway(t *testing.T) {
	router := NewRouter(zap.NewNop())
	handler := NewHandler(router, config.RealtimeConfig{AllowedOrigins: []string{"*"}}, stubVerifier{}, zap.NewNop())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ws := dial(t, srv, "")
	sendFrame(t, ws, EventRegisterUser, registerUserPayload{UserID: "u-1", UserType: "customer"})
	require.Eventually(t, func() bool { return router.Connected(ClassCustomer, "u-1") }, 2*time.Second, 10*time.Millisecond)

	handler.CloseAll()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Eventually(t, func() bool { return !router.Connected(ClassCustomer, "u-1") }, 2*time.Second, 10*time.Millisecond)
}
