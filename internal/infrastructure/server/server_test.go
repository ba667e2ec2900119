package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/adapter/connectrpc"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/usecase"
)

type memSnapshots struct {
	mu     sync.Mutex
	course *entity.Course
}

func (m *memSnapshots) Load(context.Context) (*entity.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.course.Clone(), nil
}

func (m *memSnapshots) Save(_ context.Context, c *entity.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.course = c.Clone()
	return nil
}

func (m *memSnapshots) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.course = nil
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", HTTPPort: 0},
		Log:    config.LogConfig{Level: "error", Format: "text"},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := usecase.NewCourseService(usecase.NewSnapshotCourseRepository(&memSnapshots{}), logger)
	srv := NewServer(cfg, logger, connectrpc.NewCourseServiceServer(svc))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected response %d %q", resp.StatusCode, body)
	}
}

func TestCORSPreflightAllowsUserHeader(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+connectrpc.CourseServiceFetchCourseProcedure, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-user-id")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestServesCourseAPI(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	client := connectrpc.NewCourseClient(ts.Client(), ts.URL, "u1")

	created, err := client.CreateCourse(ctx, &entity.Course{Institution: "OU", Title: "BSc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := client.FetchCourse(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatalf("unexpected course %+v", got)
	}
}
