package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

// TreeState is the lifecycle of a course tree within a session.
type TreeState int

const (
	StateUninitialized TreeState = iota
	StateLoading
	StateEmpty
	StateLoaded
)

func (s TreeState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return "uninitialized"
	}
}

// CourseTree owns one user's course hierarchy for a session. Mutations are
// pessimistic: the in-memory tree only changes after the backing store acknowledges
// the write, so a failed write leaves it exactly as it was.
type CourseTree interface {
	Load(ctx context.Context) error
	State() TreeState
	// Revision increases by one for every committed change.
	Revision() uint64
	// Snapshot returns a deep copy of the committed tree.
	Snapshot() (*entity.Course, bool)
	Report(scheme grading.Scheme) *grading.CourseReport
	ListAssessments(query *repository.ListAssessmentQuery) ([]AssessmentRow, int, error)

	CreateCourse(ctx context.Context, institution, title string, yearCount int) (*entity.Course, error)
	UpdateCourseInfo(ctx context.Context, update entity.CourseUpdate) error
	DeleteCourse(ctx context.Context) error
	ResetCourse(ctx context.Context) error

	AddYear(ctx context.Context, label string, weight float64) (*entity.AcademicYear, error)
	UpdateYear(ctx context.Context, yearID string, update entity.YearUpdate) error
	RemoveYear(ctx context.Context, yearID string) error

	AddModule(ctx context.Context, yearID, name string, credits int) (*entity.Module, error)
	UpdateModule(ctx context.Context, yearID, moduleID string, update entity.ModuleUpdate) error
	RemoveModule(ctx context.Context, yearID, moduleID string) error

	AddAssessment(ctx context.Context, yearID, moduleID, name string, weight float64) (*entity.Assessment, error)
	UpdateAssessment(ctx context.Context, yearID, moduleID, assessmentID string, update entity.AssessmentUpdate) error
	RemoveAssessment(ctx context.Context, yearID, moduleID, assessmentID string) error
	RecordGrade(ctx context.Context, yearID, moduleID, assessmentID string, grade float64) error

	SetCourseTarget(ctx context.Context, target *float64) error
	SetYearTarget(ctx context.Context, yearID string, target *float64) error
	SetModuleTarget(ctx context.Context, yearID, moduleID string, target *float64) error
}

// NewRemoteCourseTree builds a tree whose every mutation is a request to repo; the
// entities repo returns (ids, year numbers) are applied as authoritative.
func NewRemoteCourseTree(userID string, repo repository.CourseRepository, logger logrus.FieldLogger) CourseTree {
	return newCourseTree(userID, repo, logger.WithField("store", "remote"))
}

// DefaultYearWeights returns the weight schedule for a course created with n years.
// Equal shares are rounded, so their sum may drift from 100.
func DefaultYearWeights(n int) []float64 {
	switch n {
	case 3:
		return []float64{0, 40, 60}
	case 4:
		return []float64{0, 20, 30, 50}
	}
	if n <= 0 {
		return nil
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Round(100 / float64(n))
	}
	return weights
}

func defaultYearLabel(n int) string {
	return fmt.Sprintf("Year %d", n)
}

type courseTree struct {
	userID string
	repo   repository.CourseRepository
	logger logrus.FieldLogger

	// writeMu serializes loads and mutations across the store round trip. Only
	// holders of writeMu replace course, so they may read it without mu.
	writeMu sync.Mutex

	mu       sync.RWMutex
	state    TreeState
	course   *entity.Course
	revision uint64
}

func newCourseTree(userID string, repo repository.CourseRepository, logger logrus.FieldLogger) *courseTree {
	return &courseTree{
		userID: userID,
		repo:   repo,
		logger: logger.WithField("user_id", userID),
	}
}

func (t *courseTree) Load(ctx context.Context) error {
	if t.userID == "" {
		return entity.ErrInvalidUserID
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	t.state = StateLoading
	t.mu.Unlock()

	course, err := t.repo.FetchCourse(ctx, t.userID)
	if err != nil {
		t.mu.Lock()
		t.state = StateUninitialized
		t.course = nil
		t.mu.Unlock()
		t.logger.WithError(err).Warn("load course tree")
		return err
	}
	t.commit(course)
	return nil
}

func (t *courseTree) State() TreeState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *courseTree) Revision() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revision
}

func (t *courseTree) Snapshot() (*entity.Course, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state != StateLoaded {
		return nil, false
	}
	return t.course.Clone(), true
}

func (t *courseTree) Report(scheme grading.Scheme) *grading.CourseReport {
	course, ok := t.Snapshot()
	if !ok {
		return nil
	}
	return grading.BuildReport(course, scheme)
}

func (t *courseTree) CreateCourse(ctx context.Context, institution, title string, yearCount int) (*entity.Course, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	switch t.State() {
	case StateLoaded:
		return nil, entity.ErrCourseExists
	case StateEmpty:
	default:
		return nil, entity.ErrCourseNotLoaded
	}

	update := entity.CourseUpdate{Institution: &institution, Title: &title}
	if err := update.Normalize(); err != nil {
		return nil, err
	}
	if yearCount < 0 || yearCount > entity.MaxYearCount {
		return nil, entity.ErrInvalidYearCount
	}

	draft := &entity.Course{
		UserID:      t.userID,
		Institution: *update.Institution,
		Title:       *update.Title,
		Years:       make([]entity.AcademicYear, 0, yearCount),
	}
	for i, weight := range DefaultYearWeights(yearCount) {
		draft.Years = append(draft.Years, entity.AcademicYear{
			Label:      defaultYearLabel(i + 1),
			YearNumber: i + 1,
			Weight:     weight,
		})
	}

	created, err := t.repo.CreateCourse(ctx, draft)
	if err != nil {
		return nil, t.failed(ctx, "create_course", err)
	}
	created.SortYears()
	t.commit(created)
	t.logger.WithField("course_id", created.ID).Debug("course created")
	return created.Clone(), nil
}

func (t *courseTree) UpdateCourseInfo(ctx context.Context, update entity.CourseUpdate) error {
	if err := update.Normalize(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if update.IsEmpty() {
		return nil
	}
	if err := t.repo.UpdateCourse(ctx, current.ID, update); err != nil {
		return t.failed(ctx, "update_course", err)
	}
	next := current.Clone()
	update.Apply(next)
	t.commit(next)
	return nil
}

func (t *courseTree) DeleteCourse(ctx context.Context) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if err := t.repo.DeleteCourse(ctx, current.ID); err != nil {
		return t.failed(ctx, "delete_course", err)
	}
	t.commit(nil)
	t.logger.WithField("course_id", current.ID).Debug("course deleted")
	return nil
}

// ResetCourse deletes the course and drops the cached tree. A course the store no
// longer knows about counts as already reset.
func (t *courseTree) ResetCourse(ctx context.Context) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	switch t.State() {
	case StateEmpty:
		t.commit(nil)
		return nil
	case StateLoaded:
	default:
		return entity.ErrCourseNotLoaded
	}

	if err := t.repo.DeleteCourse(ctx, t.course.ID); err != nil && !errors.Is(err, entity.ErrNotFound) {
		t.logger.WithError(err).WithField("op", "reset_course").Warn("course tree mutation failed")
		return err
	}
	t.commit(nil)
	return nil
}

func (t *courseTree) AddYear(ctx context.Context, label string, weight float64) (*entity.AcademicYear, error) {
	if err := entity.ValidateWeight(weight); err != nil {
		return nil, err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return nil, err
	}
	number := current.NextYearNumber()
	normalized, nerr := entity.NormalizeName(label)
	if nerr != nil {
		normalized = defaultYearLabel(number)
	}
	year := &entity.AcademicYear{Label: normalized, YearNumber: number, Weight: weight}

	created, err := t.repo.AddYear(ctx, current.ID, year)
	if err != nil {
		return nil, t.failed(ctx, "add_year", err)
	}
	next := current.Clone()
	next.Years = append(next.Years, created.Clone())
	next.SortYears()
	t.commit(next)
	out := created.Clone()
	return &out, nil
}

func (t *courseTree) UpdateYear(ctx context.Context, yearID string, update entity.YearUpdate) error {
	if err := update.Normalize(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Year(yearID); !ok {
		return entity.ErrYearNotFound
	}
	if update.IsEmpty() {
		return nil
	}
	if err := t.repo.UpdateYear(ctx, yearID, update); err != nil {
		return t.failed(ctx, "update_year", err)
	}
	next := current.Clone()
	year, _ := next.Year(yearID)
	update.Apply(year)
	next.SortYears()
	t.commit(next)
	return nil
}

func (t *courseTree) RemoveYear(ctx context.Context, yearID string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Year(yearID); !ok {
		return entity.ErrYearNotFound
	}
	if err := t.repo.DeleteYear(ctx, yearID); err != nil {
		return t.failed(ctx, "remove_year", err)
	}
	next := current.Clone()
	next.RemoveYear(yearID)
	t.commit(next)
	return nil
}

func (t *courseTree) AddModule(ctx context.Context, yearID, name string, credits int) (*entity.Module, error) {
	name, err := entity.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if credits <= 0 {
		credits = entity.DefaultModuleCredits
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return nil, err
	}
	if _, ok := current.Year(yearID); !ok {
		return nil, entity.ErrYearNotFound
	}

	created, err := t.repo.AddModule(ctx, yearID, &entity.Module{Name: name, Credits: credits})
	if err != nil {
		return nil, t.failed(ctx, "add_module", err)
	}
	next := current.Clone()
	year, _ := next.Year(yearID)
	year.Modules = append(year.Modules, created.Clone())
	t.commit(next)
	out := created.Clone()
	return &out, nil
}

func (t *courseTree) UpdateModule(ctx context.Context, yearID, moduleID string, update entity.ModuleUpdate) error {
	if err := update.Normalize(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Module(yearID, moduleID); !ok {
		return entity.ErrModuleNotFound
	}
	if update.IsEmpty() {
		return nil
	}
	if err := t.repo.UpdateModule(ctx, moduleID, update); err != nil {
		return t.failed(ctx, "update_module", err)
	}
	next := current.Clone()
	module, _ := next.Module(yearID, moduleID)
	update.Apply(module)
	t.commit(next)
	return nil
}

func (t *courseTree) RemoveModule(ctx context.Context, yearID, moduleID string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Module(yearID, moduleID); !ok {
		return entity.ErrModuleNotFound
	}
	if err := t.repo.DeleteModule(ctx, moduleID); err != nil {
		return t.failed(ctx, "remove_module", err)
	}
	next := current.Clone()
	year, _ := next.Year(yearID)
	year.RemoveModule(moduleID)
	t.commit(next)
	return nil
}

func (t *courseTree) AddAssessment(ctx context.Context, yearID, moduleID, name string, weight float64) (*entity.Assessment, error) {
	name, err := entity.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if err := entity.ValidateWeight(weight); err != nil {
		return nil, err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return nil, err
	}
	if _, ok := current.Module(yearID, moduleID); !ok {
		return nil, entity.ErrModuleNotFound
	}

	created, err := t.repo.AddAssessment(ctx, moduleID, &entity.Assessment{Name: name, Weight: weight})
	if err != nil {
		return nil, t.failed(ctx, "add_assessment", err)
	}
	next := current.Clone()
	module, _ := next.Module(yearID, moduleID)
	module.Assessments = append(module.Assessments, created.Clone())
	t.commit(next)
	out := created.Clone()
	return &out, nil
}

func (t *courseTree) UpdateAssessment(ctx context.Context, yearID, moduleID, assessmentID string, update entity.AssessmentUpdate) error {
	if err := update.Normalize(); err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.updateAssessment(ctx, "update_assessment", yearID, moduleID, assessmentID, update)
}

// RecordGrade is the grade-entry path: it stores the grade and marks the assessment
// completed in one write.
func (t *courseTree) RecordGrade(ctx context.Context, yearID, moduleID, assessmentID string, grade float64) error {
	if err := entity.ValidateGrade(&grade); err != nil {
		return err
	}
	completed := true
	update := entity.AssessmentUpdate{Grade: entity.SetTo(grade), Completed: &completed}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.updateAssessment(ctx, "record_grade", yearID, moduleID, assessmentID, update)
}

func (t *courseTree) updateAssessment(ctx context.Context, op, yearID, moduleID, assessmentID string, update entity.AssessmentUpdate) error {
	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Assessment(yearID, moduleID, assessmentID); !ok {
		return entity.ErrAssessmentNotFound
	}
	if update.IsEmpty() {
		return nil
	}
	if err := t.repo.UpdateAssessment(ctx, assessmentID, update); err != nil {
		return t.failed(ctx, op, err)
	}
	next := current.Clone()
	assessment, _ := next.Assessment(yearID, moduleID, assessmentID)
	update.Apply(assessment)
	t.commit(next)
	return nil
}

func (t *courseTree) RemoveAssessment(ctx context.Context, yearID, moduleID, assessmentID string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	current, err := t.loaded()
	if err != nil {
		return err
	}
	if _, ok := current.Assessment(yearID, moduleID, assessmentID); !ok {
		return entity.ErrAssessmentNotFound
	}
	if err := t.repo.DeleteAssessment(ctx, assessmentID); err != nil {
		return t.failed(ctx, "remove_assessment", err)
	}
	next := current.Clone()
	module, _ := next.Module(yearID, moduleID)
	module.RemoveAssessment(assessmentID)
	t.commit(next)
	return nil
}

func (t *courseTree) SetCourseTarget(ctx context.Context, target *float64) error {
	return t.UpdateCourseInfo(ctx, entity.CourseUpdate{TargetGrade: entity.FromPtr(target)})
}

func (t *courseTree) SetYearTarget(ctx context.Context, yearID string, target *float64) error {
	return t.UpdateYear(ctx, yearID, entity.YearUpdate{TargetGrade: entity.FromPtr(target)})
}

func (t *courseTree) SetModuleTarget(ctx context.Context, yearID, moduleID string, target *float64) error {
	return t.UpdateModule(ctx, yearID, moduleID, entity.ModuleUpdate{TargetGrade: entity.FromPtr(target)})
}

// loaded returns the committed course. Callers must hold writeMu.
func (t *courseTree) loaded() (*entity.Course, error) {
	if t.State() != StateLoaded {
		return nil, entity.ErrCourseNotLoaded
	}
	return t.course, nil
}

func (t *courseTree) commit(course *entity.Course) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.course = course
	if course == nil {
		t.state = StateEmpty
	} else {
		t.state = StateLoaded
	}
	t.revision++
}

// failed logs a rejected write. A not-found answer means the tree is stale, so it is
// refreshed from the store before the error is returned. Callers must hold writeMu.
func (t *courseTree) failed(ctx context.Context, op string, err error) error {
	t.logger.WithError(err).WithField("op", op).Warn("course tree mutation failed")
	if errors.Is(err, entity.ErrNotFound) {
		course, ferr := t.repo.FetchCourse(ctx, t.userID)
		if ferr != nil {
			t.logger.WithError(ferr).Warn("refresh after not found")
			return err
		}
		t.commit(course)
	}
	return err
}
