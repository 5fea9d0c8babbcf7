package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServer_ServeAndShutdownRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "pong")
	})
	srv := New(0, handler, zap.NewNop())

	var hookCalls atomic.Int32
	srv.OnShutdown(func() { hookCalls.Add(1) })

	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	assert.Eventually(t, func() bool { return hookCalls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestServer_Timeouts(t *testing.T) {
	srv := New(8080, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, ":8080", srv.httpServer.Addr)
	assert.Equal(t, readHeaderTimeout, srv.httpServer.ReadHeaderTimeout)
	assert.Equal(t, writeTimeout, srv.httpServer.WriteTimeout)
}
