package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/gradebook/internal/entity"
)

func TestSQLKeyValueStore(t *testing.T) {
	ctx := context.Background()
	store := NewSQLKeyValueStore(openTestDB(t))

	if _, err := store.Get(ctx, "k"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "k")
	if err != nil || string(got) != "two" {
		t.Fatalf("expected two, got %q, %v", got, err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete missing key: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCourseSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseSnapshotRepository(NewSQLKeyValueStore(openTestDB(t)))

	empty, err := repo.Load(ctx)
	if err != nil || empty != nil {
		t.Fatalf("expected empty load, got %#v, %v", empty, err)
	}

	course := &entity.Course{
		ID:          "c1",
		UserID:      "local",
		Institution: "Open University",
		Title:       "BSc",
		TargetGrade: ptr(70.0),
		Years: []entity.AcademicYear{{
			ID: "y1", Label: "Year 1", YearNumber: 1, Weight: 40,
			Modules: []entity.Module{{
				ID: "m1", Name: "Maths", Credits: 20,
				Assessments: []entity.Assessment{
					{ID: "a1", Name: "Exam", Weight: 60, Grade: ptr(64.0), Completed: true},
					{ID: "a2", Name: "Essay", Weight: 40, Completed: true},
				},
			}},
		}},
	}
	if err := repo.Save(ctx, course); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != "c1" || got.UserID != "local" || *got.TargetGrade != 70 {
		t.Fatalf("course fields lost: %#v", got)
	}
	a := got.Years[0].Modules[0].Assessments
	if len(a) != 2 || *a[0].Grade != 64 || a[1].Grade != nil || !a[1].Completed {
		t.Fatalf("assessments lost: %#v", a)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, err := repo.Load(ctx); err != nil || got != nil {
		t.Fatalf("expected empty after delete, got %#v, %v", got, err)
	}
}

type stubKV struct {
	data []byte
}

func (s *stubKV) Get(context.Context, string) ([]byte, error) {
	if s.data == nil {
		return nil, entity.ErrNotFound
	}
	return s.data, nil
}
func (s *stubKV) Set(_ context.Context, _ string, v []byte) error { s.data = v; return nil }
func (s *stubKV) Delete(context.Context, string) error            { s.data = nil; return nil }

func TestCourseSnapshotRejectsNewerVersion(t *testing.T) {
	repo := NewCourseSnapshotRepository(&stubKV{data: []byte(`{"version":99,"course":{}}`)})
	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatal("expected error for unknown snapshot version")
	}
}

func TestCourseSnapshotRejectsGarbage(t *testing.T) {
	repo := NewCourseSnapshotRepository(&stubKV{data: []byte(`not json`)})
	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
