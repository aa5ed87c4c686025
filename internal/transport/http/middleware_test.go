package httptransport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCORSShortCircuitsPreflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := httptest.NewRecorder()
	CORS("http://localhost:5173")(next).ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/activities", nil))

	require.False(t, called)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	h := Chain(next, RequestLogger(zap.New(core)), CORS(""))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/activities/Nope/signup", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	require.Equal(t, int64(http.StatusNotFound), fields["status"])
	require.Equal(t, "/activities/Nope/signup", fields["path"])
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServerAppliesConfig(t *testing.T) {
	srv := NewServer(DefaultServerConfig(":1234"), http.NotFoundHandler())
	require.Equal(t, ":1234", srv.Addr)
	require.NotZero(t, srv.ReadTimeout)
	require.NotZero(t, srv.IdleTimeout)
}
