package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddarth2230/domain-keys/internal/logging"
	"github.com/Siddarth2230/domain-keys/pkg/idgen"
	"github.com/Siddarth2230/domain-keys/pkg/metrics"
)

type fixedGen struct {
	id  string
	err error
}

func (g fixedGen) Generate(context.Context) (string, error) {
	return g.id, g.err
}

func echoRequestID(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(logging.RequestID(r.Context())))
}

func TestRequestIDFromHeader(t *testing.T) {
	h := RequestID(fixedGen{id: "generated"})(http.HandlerFunc(echoRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "  client-id ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-id", rec.Body.String())
	assert.Equal(t, "client-id", rec.Header().Get(HeaderRequestID))
}

func TestRequestIDGenerated(t *testing.T) {
	h := RequestID(idgen.NewRouteKey())(http.HandlerFunc(echoRequestID))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(HeaderRequestID)
	assert.Len(t, id, idgen.RouteKeySize)
	assert.Equal(t, id, rec.Body.String())
}

func TestRequestIDGeneratorFailure(t *testing.T) {
	h := RequestID(fixedGen{err: errors.New("boom")})(http.HandlerFunc(echoRequestID))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get(HeaderRequestID))
	assert.Empty(t, rec.Body.String())
}

func TestNormalizeRequestID(t *testing.T) {
	assert.Equal(t, "", normalizeRequestID("   "))
	assert.Equal(t, "", normalizeRequestID("a\r\nb"))
	assert.Len(t, normalizeRequestID(strings.Repeat("x", 300)), maxRequestIDLen)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics)
	r.HandleFunc("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.RequestTotal.WithLabelValues(http.MethodGet, "/things/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/"+id, nil))
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "test", slog.LevelInfo))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := mux.NewRouter()
	r.Use(RequestID(fixedGen{id: "req-42"}), AccessLog)
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, "/items/7", line["path"])
	assert.Equal(t, "/items/{id}", line["route"])
	assert.EqualValues(t, 200, line["status"])
	assert.EqualValues(t, 5, line["bytes"])
	assert.Equal(t, "req-42", line["request_id"])
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
