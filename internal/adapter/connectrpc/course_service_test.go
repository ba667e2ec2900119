package connectrpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

// memSnapshots keeps one course in memory.
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
	svc := usecase.NewCourseService(usecase.NewSnapshotCourseRepository(&memSnapshots{}), quietLogger())
	path, handler := NewCourseServiceHandler(NewCourseServiceServer(svc))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func ptr[T any](v T) *T { return &v }

func TestRemoteTreeOverConnect(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	client := NewCourseClient(srv.Client(), srv.URL, "u1")

	tree := usecase.NewRemoteCourseTree("u1", client, quietLogger())
	if err := tree.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if tree.State() != usecase.StateEmpty {
		t.Fatalf("expected empty state, got %s", tree.State())
	}

	course, err := tree.CreateCourse(ctx, "Open University", "BSc Computing", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	yearID := course.Years[1].ID
	module, err := tree.AddModule(ctx, yearID, "Databases", 30)
	if err != nil {
		t.Fatalf("add module: %v", err)
	}
	assessment, err := tree.AddAssessment(ctx, yearID, module.ID, "Exam", 60)
	if err != nil {
		t.Fatalf("add assessment: %v", err)
	}
	if err := tree.RecordGrade(ctx, yearID, module.ID, assessment.ID, 68); err != nil {
		t.Fatalf("record grade: %v", err)
	}
	if err := tree.SetCourseTarget(ctx, ptr(70.0)); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if err := tree.SetCourseTarget(ctx, nil); err != nil {
		t.Fatalf("clear target: %v", err)
	}
	if err := tree.UpdateAssessment(ctx, yearID, module.ID, assessment.ID, entity.AssessmentUpdate{Completed: ptr(false)}); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}

	fresh := usecase.NewRemoteCourseTree("u1", client, quietLogger())
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := fresh.Snapshot()
	if !ok {
		t.Fatal("expected a loaded course")
	}
	if got.ID != course.ID || got.TargetGrade != nil || len(got.Years) != 3 {
		t.Fatalf("unexpected course after reload: %+v", got)
	}
	a := got.Years[1].Modules[0].Assessments[0]
	if a.Grade == nil || *a.Grade != 68 || a.Completed {
		t.Fatalf("grade and completion must round-trip independently: %+v", a)
	}
}

func TestCourseClientMapsErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	client := NewCourseClient(srv.Client(), srv.URL, "u1")

	if _, err := client.CreateCourse(ctx, &entity.Course{Title: "BSc"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.CreateCourse(ctx, &entity.Course{Title: "BSc"}); !errors.Is(err, entity.ErrCourseExists) {
		t.Fatalf("expected ErrCourseExists, got %v", err)
	}
	if err := client.UpdateYear(ctx, "missing", entity.YearUpdate{Weight: ptr(10.0)}); !errors.Is(err, entity.ErrYearNotFound) {
		t.Fatalf("expected ErrYearNotFound, got %v", err)
	}
	if err := client.DeleteAssessment(ctx, "missing"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
	if _, err := client.CreateCourse(ctx, &entity.Course{Title: " "}); !errors.Is(err, entity.ErrValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestCourseServiceRequiresUserID(t *testing.T) {
	srv := newTestServer(t)
	raw := connect.NewClient[emptypb.Empty, CourseResponse](
		srv.Client(),
		srv.URL+CourseServiceFetchCourseProcedure,
		connect.WithCodec(Codec{}),
	)
	_, err := raw.CallUnary(context.Background(), connect.NewRequest(&emptypb.Empty{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	owner := NewCourseClient(srv.Client(), srv.URL, "u1")
	other := NewCourseClient(srv.Client(), srv.URL, "u2")

	course, err := owner.CreateCourse(ctx, &entity.Course{Title: "BSc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := other.FetchCourse(ctx, "u2")
	if err != nil {
		t.Fatalf("fetch other: %v", err)
	}
	if got != nil {
		t.Fatalf("other user must not see the course: %+v", got)
	}
	if err := other.DeleteCourse(ctx, course.ID); !errors.Is(err, entity.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestGetReport(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	client := NewCourseClient(srv.Client(), srv.URL, "u1")
	if _, err := client.GetReport(ctx); !errors.Is(err, entity.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound before a course exists, got %v", err)
	}

	tree := usecase.NewRemoteCourseTree("u1", client, quietLogger())
	if err := tree.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	course, err := tree.CreateCourse(ctx, "OU", "BSc", 3)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	yearID := course.Years[2].ID
	module, err := tree.AddModule(ctx, yearID, "Project", 40)
	if err != nil {
		t.Fatalf("add module: %v", err)
	}
	exam, err := tree.AddAssessment(ctx, yearID, module.ID, "Report", 100)
	if err != nil {
		t.Fatalf("add assessment: %v", err)
	}
	if err := tree.RecordGrade(ctx, yearID, module.ID, exam.ID, 72); err != nil {
		t.Fatalf("grade: %v", err)
	}

	report, err := client.GetReport(ctx)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.CourseID != course.ID || report.Grade == nil || *report.Grade != 72 || report.Completion != 100 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Years[2].Modules[0].Classification != grading.First {
		t.Fatalf("expected a first, got %q", report.Years[2].Modules[0].Classification)
	}
}
