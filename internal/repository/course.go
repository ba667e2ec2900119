package repository

import (
	"context"

	"github.com/eslsoft/gradebook/internal/entity"
)

// CourseRepository persists a user's course tree entity by entity. Non-leaf deletes
// cascade to every descendant.
type CourseRepository interface {
	// FetchCourse returns the user's full tree, or nil when the user has no course.
	FetchCourse(ctx context.Context, userID string) (*entity.Course, error)
	CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error)
	UpdateCourse(ctx context.Context, id string, update entity.CourseUpdate) error
	DeleteCourse(ctx context.Context, id string) error

	AddYear(ctx context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error)
	UpdateYear(ctx context.Context, id string, update entity.YearUpdate) error
	DeleteYear(ctx context.Context, id string) error

	AddModule(ctx context.Context, yearID string, module *entity.Module) (*entity.Module, error)
	UpdateModule(ctx context.Context, id string, update entity.ModuleUpdate) error
	DeleteModule(ctx context.Context, id string) error

	AddAssessment(ctx context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error)
	UpdateAssessment(ctx context.Context, id string, update entity.AssessmentUpdate) error
	DeleteAssessment(ctx context.Context, id string) error
}

// CourseSnapshotRepository stores a whole course tree as one blob. Load returns nil
// when nothing has been saved.
type CourseSnapshotRepository interface {
	Load(ctx context.Context) (*entity.Course, error)
	Save(ctx context.Context, course *entity.Course) error
	Delete(ctx context.Context) error
}

// KeyValueStore is the byte store underneath a snapshot repository. Get returns
// entity.ErrNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ListAssessmentQuery selects assessments from a loaded tree.
type ListAssessmentQuery struct {
	Pagination
	FilterOrder
}
