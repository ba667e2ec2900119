package app

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/usecase"
)

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func localConfig(path string) *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			Mode:  config.StoreLocal,
			Local: config.LocalStoreConfig{Backend: config.BackendSQLite, Path: path},
		},
		User: config.UserConfig{ID: "u1"},
	}
}

func TestOpenCourseTreeLocalSQLitePersists(t *testing.T) {
	requireSQLite(t)
	ctx := context.Background()
	cfg := localConfig(filepath.Join(t.TempDir(), "local.db"))

	tree, cleanup, err := OpenCourseTree(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if tree.State() != usecase.StateEmpty {
		t.Fatalf("expected empty tree, got %s", tree.State())
	}
	if _, err := tree.CreateCourse(ctx, "OU", "BSc", 3); err != nil {
		t.Fatalf("create: %v", err)
	}
	cleanup()

	reopened, cleanup, err := OpenCourseTree(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer cleanup()
	course, ok := reopened.Snapshot()
	if !ok || course.Title != "BSc" || len(course.Years) != 3 {
		t.Fatalf("course did not persist: %+v", course)
	}
}

func TestOpenCourseTreeRejectsUnknownMode(t *testing.T) {
	cfg := localConfig("unused.db")
	cfg.Store.Mode = "carrier-pigeon"
	if _, _, err := OpenCourseTree(context.Background(), cfg, quietLogger()); err == nil {
		t.Fatal("expected an error for an unknown store mode")
	}
}
