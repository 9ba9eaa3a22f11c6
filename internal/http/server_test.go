package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Clark-Hu/course-conditions/internal/config"
	"github.com/Clark-Hu/course-conditions/internal/logging"
	"github.com/Clark-Hu/course-conditions/internal/metrics"
	"github.com/Clark-Hu/course-conditions/internal/repository"
	"github.com/Clark-Hu/course-conditions/internal/seed"
	"github.com/Clark-Hu/course-conditions/internal/service"
	"github.com/Clark-Hu/course-conditions/internal/store/storetest"
)

type poolHealth struct {
	pool *pgxpool.Pool
}

func (p poolHealth) HealthCheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

type failingHealth struct{}

func (failingHealth) HealthCheck(context.Context) error {
	return errors.New("connection refused")
}

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		ReadTimeoutSecs:  15,
		WriteTimeoutSecs: 15,
		IdleTimeoutSecs:  60,
	}
}

func buildTestServer(tb testing.TB) *Server {
	tb.Helper()

	pool := storetest.NewPool(tb)
	repo := repository.NewWithPool(pool)
	logger := logging.Discard()

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		tb.Fatalf("metrics: %v", err)
	}
	svc, err := service.New(repo, service.Options{Logger: logger, Metrics: m})
	if err != nil {
		tb.Fatalf("service: %v", err)
	}
	dims, err := seed.Dimensions("")
	if err != nil {
		tb.Fatalf("load dimensions: %v", err)
	}
	if err := svc.EnsureDimensions(context.Background(), dims); err != nil {
		tb.Fatalf("seed dimensions: %v", err)
	}

	return New(testConfig(), poolHealth{pool: pool}, repo, svc, m, logger)
}

func doRequest(tb testing.TB, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	tb.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](tb testing.TB, rec *httptest.ResponseRecorder) T {
	tb.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		tb.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := buildTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Fatalf("body = %q, want OK", rec.Body.String())
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	srv := New(testConfig(), failingHealth{}, nil, nil, nil, logging.Discard())

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := buildTestServer(t)

	doRequest(t, srv, http.MethodGet, "/api/courses/1/data", "")
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := `route="/api/courses/{id}/data"`
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("metrics output missing %s", want)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := New(testConfig(), nil, nil, nil, nil, logging.Discard())

	req := httptest.NewRequest(http.MethodOptions, "/api/courses/1/submit", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := New(testConfig(), nil, nil, nil, nil, logging.Discard())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve() = %v, want context.Canceled", err)
	}
}
