// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/account-service/internal/config"
)

type shutdownFlag struct {
	set atomic.Bool
}

func (f *shutdownFlag) SetShutdown(v bool) {
	f.set.Store(v)
}

func newTestServer(health ShutdownNotifier) *Server {
	return New(Config{
		ServerConfig:  config.ServerConfig{Host: "127.0.0.1", Port: 0},
		HealthHandler: health,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRouterErrors(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	srv.Router().Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/boom", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{http.MethodGet, "/missing", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/ok", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
			assert.NotContains(t, rec.Body.String(), "kaboom")
		})
	}
}

func TestShutdownNotifiesHealth(t *testing.T) {
	flag := &shutdownFlag{}
	srv := newTestServer(flag)

	err := srv.Shutdown(context.Background(), time.Millisecond)
	assert.NoError(t, err)
	assert.True(t, flag.set.Load())
}

func TestShutdownHonorsContext(t *testing.T) {
	srv := newTestServer(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := srv.Shutdown(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
