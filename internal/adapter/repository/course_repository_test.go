package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/infrastructure/database/migrate"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	requireSQLite(t)

	ctx := context.Background()
	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "gradebook.db"))
	db, err := database.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrate.Create(ctx, db.DB, db.Dialect); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

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

func ptr[T any](v T) *T { return &v }

func TestCourseRepositoryCreateAndFetch(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))

	missing, err := repo.FetchCourse(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch empty: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no course, got %#v", missing)
	}

	created, err := repo.CreateCourse(ctx, &entity.Course{
		UserID:      "u1",
		Institution: "Open University",
		Title:       "BSc Computing",
		Years: []entity.AcademicYear{
			{Label: "Year 1", YearNumber: 1, Weight: 0},
			{Label: "Year 2", YearNumber: 2, Weight: 40},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Years[0].ID == "" || created.Years[1].ID == "" {
		t.Fatalf("expected ids to be assigned: %#v", created)
	}

	module, err := repo.AddModule(ctx, created.Years[1].ID, &entity.Module{Name: "Databases", Credits: 30})
	if err != nil {
		t.Fatalf("add module: %v", err)
	}
	first, err := repo.AddAssessment(ctx, module.ID, &entity.Assessment{Name: "Coursework", Weight: 40, Grade: ptr(72.5), Completed: true})
	if err != nil {
		t.Fatalf("add assessment: %v", err)
	}
	if _, err := repo.AddAssessment(ctx, module.ID, &entity.Assessment{Name: "Exam", Weight: 60}); err != nil {
		t.Fatalf("add assessment: %v", err)
	}

	got, err := repo.FetchCourse(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.ID != created.ID || got.Title != "BSc Computing" || len(got.Years) != 2 {
		t.Fatalf("unexpected course: %#v", got)
	}
	year := got.Years[1]
	if year.Label != "Year 2" || year.Weight != 40 || len(year.Modules) != 1 {
		t.Fatalf("unexpected year: %#v", year)
	}
	assessments := year.Modules[0].Assessments
	if len(assessments) != 2 || assessments[0].ID != first.ID || assessments[1].Name != "Exam" {
		t.Fatalf("assessments out of order: %#v", assessments)
	}
	if assessments[0].Grade == nil || *assessments[0].Grade != 72.5 || !assessments[0].Completed {
		t.Fatalf("grade not stored: %#v", assessments[0])
	}
	if assessments[1].Grade != nil || assessments[1].Completed {
		t.Fatalf("expected ungraded exam: %#v", assessments[1])
	}
}

func TestCourseRepositoryOneCoursePerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))

	if _, err := repo.CreateCourse(ctx, &entity.Course{UserID: "u1", Title: "A"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.CreateCourse(ctx, &entity.Course{UserID: "u1", Title: "B"})
	if !errors.Is(err, entity.ErrCourseExists) {
		t.Fatalf("expected ErrCourseExists, got %v", err)
	}
	if _, err := repo.CreateCourse(ctx, &entity.Course{UserID: "u2", Title: "B"}); err != nil {
		t.Fatalf("second user create: %v", err)
	}
}

func TestCourseRepositoryPartialUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))

	course, err := repo.CreateCourse(ctx, &entity.Course{
		UserID:      "u1",
		Title:       "BSc",
		TargetGrade: ptr(70.0),
		Years:       []entity.AcademicYear{{Label: "Year 1", YearNumber: 1, Weight: 100}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	yearID := course.Years[0].ID
	module, err := repo.AddModule(ctx, yearID, &entity.Module{Name: "Maths", Credits: 20})
	if err != nil {
		t.Fatalf("add module: %v", err)
	}
	a, err := repo.AddAssessment(ctx, module.ID, &entity.Assessment{Name: "Quiz", Weight: 10})
	if err != nil {
		t.Fatalf("add assessment: %v", err)
	}

	if err := repo.UpdateCourse(ctx, course.ID, entity.CourseUpdate{Institution: ptr("UCL"), TargetGrade: entity.Clear[float64]()}); err != nil {
		t.Fatalf("update course: %v", err)
	}
	if err := repo.UpdateYear(ctx, yearID, entity.YearUpdate{YearNumber: ptr(3), TargetGrade: entity.SetTo(65.0)}); err != nil {
		t.Fatalf("update year: %v", err)
	}
	if err := repo.UpdateModule(ctx, module.ID, entity.ModuleUpdate{Credits: ptr(15)}); err != nil {
		t.Fatalf("update module: %v", err)
	}
	if err := repo.UpdateAssessment(ctx, a.ID, entity.AssessmentUpdate{Grade: entity.SetTo(55.0)}); err != nil {
		t.Fatalf("update assessment grade: %v", err)
	}
	if err := repo.UpdateAssessment(ctx, a.ID, entity.AssessmentUpdate{}); err != nil {
		t.Fatalf("empty update: %v", err)
	}

	got, err := repo.FetchCourse(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Institution != "UCL" || got.Title != "BSc" || got.TargetGrade != nil {
		t.Fatalf("course update not applied: %#v", got)
	}
	year := got.Years[0]
	if year.YearNumber != 3 || year.Label != "Year 1" || year.TargetGrade == nil || *year.TargetGrade != 65 {
		t.Fatalf("year update not applied: %#v", year)
	}
	m := year.Modules[0]
	if m.Credits != 15 || m.Name != "Maths" {
		t.Fatalf("module update not applied: %#v", m)
	}
	got0 := m.Assessments[0]
	if got0.Grade == nil || *got0.Grade != 55 || got0.Completed {
		t.Fatalf("grade must not touch completion: %#v", got0)
	}
}

func TestCourseRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewCourseRepository(openTestDB(t))

	checks := []struct {
		name string
		err  error
		want error
	}{
		{"update course", repo.UpdateCourse(ctx, "nope", entity.CourseUpdate{Title: ptr("x")}), entity.ErrCourseNotFound},
		{"delete course", repo.DeleteCourse(ctx, "nope"), entity.ErrCourseNotFound},
		{"update year", repo.UpdateYear(ctx, "nope", entity.YearUpdate{Weight: ptr(1.0)}), entity.ErrYearNotFound},
		{"empty year update", repo.UpdateYear(ctx, "nope", entity.YearUpdate{}), entity.ErrYearNotFound},
		{"delete module", repo.DeleteModule(ctx, "nope"), entity.ErrModuleNotFound},
		{"update assessment", repo.UpdateAssessment(ctx, "nope", entity.AssessmentUpdate{Completed: ptr(true)}), entity.ErrAssessmentNotFound},
	}
	for _, c := range checks {
		if !errors.Is(c.err, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.err)
		}
	}

	if _, err := repo.AddYear(ctx, "nope", &entity.AcademicYear{Label: "Y"}); !errors.Is(err, entity.ErrCourseNotFound) {
		t.Errorf("add year: expected ErrCourseNotFound, got %v", err)
	}
	if _, err := repo.AddModule(ctx, "nope", &entity.Module{Name: "M"}); !errors.Is(err, entity.ErrYearNotFound) {
		t.Errorf("add module: expected ErrYearNotFound, got %v", err)
	}
	if _, err := repo.AddAssessment(ctx, "nope", &entity.Assessment{Name: "A"}); !errors.Is(err, entity.ErrModuleNotFound) {
		t.Errorf("add assessment: expected ErrModuleNotFound, got %v", err)
	}
}

func TestCourseRepositoryDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCourseRepository(db)

	course, err := repo.CreateCourse(ctx, &entity.Course{
		UserID: "u1",
		Title:  "BSc",
		Years:  []entity.AcademicYear{{Label: "Year 1", YearNumber: 1}, {Label: "Year 2", YearNumber: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	module, err := repo.AddModule(ctx, course.Years[0].ID, &entity.Module{Name: "M", Credits: 20})
	if err != nil {
		t.Fatalf("add module: %v", err)
	}
	if _, err := repo.AddAssessment(ctx, module.ID, &entity.Assessment{Name: "A", Weight: 100}); err != nil {
		t.Fatalf("add assessment: %v", err)
	}

	if err := repo.DeleteYear(ctx, course.Years[0].ID); err != nil {
		t.Fatalf("delete year: %v", err)
	}
	if n := countRows(t, db, "modules"); n != 0 {
		t.Fatalf("expected modules to cascade, %d left", n)
	}
	if n := countRows(t, db, "assessments"); n != 0 {
		t.Fatalf("expected assessments to cascade, %d left", n)
	}

	if err := repo.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}
	if n := countRows(t, db, "academic_years"); n != 0 {
		t.Fatalf("expected years to cascade, %d left", n)
	}
	got, err := repo.FetchCourse(ctx, "u1")
	if err != nil || got != nil {
		t.Fatalf("expected no course after delete, got %#v, %v", got, err)
	}
}

func countRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
