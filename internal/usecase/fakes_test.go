package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/entity"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// faults hands out one injected error to the next write.
type faults struct {
	mu     sync.Mutex
	next   error
	writes int
}

func (f *faults) failNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = err
}

func (f *faults) take() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	err := f.next
	f.next = nil
	return err
}

func (f *faults) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

// fakeCourseRepo is an in-memory stand-in for the remote store. It assigns sequential
// ids and cascades deletes like the relational store does.
type fakeCourseRepo struct {
	faults

	mu      sync.RWMutex
	seq     int
	courses map[string]*entity.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*entity.Course)}
}

func (r *fakeCourseRepo) id(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s%d", prefix, r.seq)
}

func (r *fakeCourseRepo) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.UserID == userID {
			out := c.Clone()
			out.SortYears()
			return out, nil
		}
	}
	return nil, nil
}

func (r *fakeCourseRepo) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	if err := r.take(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.courses {
		if c.UserID == course.UserID {
			return nil, entity.ErrCourseExists
		}
	}
	stored := course.Clone()
	stored.ID = r.id("c")
	for i := range stored.Years {
		stored.Years[i].ID = r.id("y")
	}
	r.courses[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *fakeCourseRepo) UpdateCourse(_ context.Context, id string, update entity.CourseUpdate) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return entity.ErrCourseNotFound
	}
	update.Apply(c)
	return nil
}

func (r *fakeCourseRepo) DeleteCourse(_ context.Context, id string) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return entity.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

// locate finds the course owning an entity id. Callers hold r.mu.
func (r *fakeCourseRepo) locate(id string, kind entity.EntityKind) (*entity.Course, string, string, bool) {
	for _, c := range r.courses {
		yearID, moduleID, k := c.Locate(id)
		if k == kind {
			return c, yearID, moduleID, true
		}
	}
	return nil, "", "", false
}

func (r *fakeCourseRepo) AddYear(_ context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error) {
	if err := r.take(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[courseID]
	if !ok {
		return nil, entity.ErrCourseNotFound
	}
	created := year.Clone()
	created.ID = r.id("y")
	created.Modules = nil
	c.Years = append(c.Years, created.Clone())
	return &created, nil
}

func (r *fakeCourseRepo) UpdateYear(_ context.Context, id string, update entity.YearUpdate) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, _, _, ok := r.locate(id, entity.KindYear)
	if !ok {
		return entity.ErrYearNotFound
	}
	year, _ := c.Year(id)
	update.Apply(year)
	return nil
}

func (r *fakeCourseRepo) DeleteYear(_ context.Context, id string) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, _, _, ok := r.locate(id, entity.KindYear)
	if !ok {
		return entity.ErrYearNotFound
	}
	c.RemoveYear(id)
	return nil
}

func (r *fakeCourseRepo) AddModule(_ context.Context, yearID string, module *entity.Module) (*entity.Module, error) {
	if err := r.take(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, _, _, ok := r.locate(yearID, entity.KindYear)
	if !ok {
		return nil, entity.ErrYearNotFound
	}
	year, _ := c.Year(yearID)
	created := module.Clone()
	created.ID = r.id("m")
	created.Assessments = nil
	year.Modules = append(year.Modules, created.Clone())
	return &created, nil
}

func (r *fakeCourseRepo) UpdateModule(_ context.Context, id string, update entity.ModuleUpdate) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, yearID, _, ok := r.locate(id, entity.KindModule)
	if !ok {
		return entity.ErrModuleNotFound
	}
	module, _ := c.Module(yearID, id)
	update.Apply(module)
	return nil
}

func (r *fakeCourseRepo) DeleteModule(_ context.Context, id string) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, yearID, _, ok := r.locate(id, entity.KindModule)
	if !ok {
		return entity.ErrModuleNotFound
	}
	year, _ := c.Year(yearID)
	year.RemoveModule(id)
	return nil
}

func (r *fakeCourseRepo) AddAssessment(_ context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error) {
	if err := r.take(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, yearID, _, ok := r.locate(moduleID, entity.KindModule)
	if !ok {
		return nil, entity.ErrModuleNotFound
	}
	module, _ := c.Module(yearID, moduleID)
	created := assessment.Clone()
	created.ID = r.id("a")
	module.Assessments = append(module.Assessments, created.Clone())
	return &created, nil
}

func (r *fakeCourseRepo) UpdateAssessment(_ context.Context, id string, update entity.AssessmentUpdate) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, yearID, moduleID, ok := r.locate(id, entity.KindAssessment)
	if !ok {
		return entity.ErrAssessmentNotFound
	}
	a, _ := c.Assessment(yearID, moduleID, id)
	update.Apply(a)
	return nil
}

func (r *fakeCourseRepo) DeleteAssessment(_ context.Context, id string) error {
	if err := r.take(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, yearID, moduleID, ok := r.locate(id, entity.KindAssessment)
	if !ok {
		return entity.ErrAssessmentNotFound
	}
	module, _ := c.Module(yearID, moduleID)
	module.RemoveAssessment(id)
	return nil
}

// fakeSnapshotStore keeps the serialized course in memory.
type fakeSnapshotStore struct {
	faults

	mu     sync.RWMutex
	course *entity.Course
}

func (s *fakeSnapshotStore) Load(ctx context.Context) (*entity.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.course.Clone(), nil
}

func (s *fakeSnapshotStore) Save(_ context.Context, course *entity.Course) error {
	if err := s.take(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.course = course.Clone()
	return nil
}

func (s *fakeSnapshotStore) Delete(context.Context) error {
	if err := s.take(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.course = nil
	return nil
}

func ptr[T any](v T) *T { return &v }
