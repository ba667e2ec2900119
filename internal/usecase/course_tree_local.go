package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
)

// NewLocalCourseTree builds a tree kept on the device: every mutation is applied to a
// copy of the whole tree, the copy is written to store, and only then does it replace
// the committed tree.
func NewLocalCourseTree(userID string, store repository.CourseSnapshotRepository, logger logrus.FieldLogger) CourseTree {
	return newCourseTree(userID, NewSnapshotCourseRepository(store), logger.WithField("store", "local"))
}

// NewSnapshotCourseRepository exposes a snapshot store through the entity-level
// CourseRepository contract. Ids are generated locally.
func NewSnapshotCourseRepository(store repository.CourseSnapshotRepository) repository.CourseRepository {
	return &snapshotCourseRepository{store: store, newID: uuid.NewString}
}

type snapshotCourseRepository struct {
	store repository.CourseSnapshotRepository
	newID func() string

	mu     sync.Mutex
	loaded bool
	course *entity.Course
}

func (r *snapshotCourseRepository) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	course, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.course, r.loaded = course, true
	if course == nil || course.UserID != userID {
		return nil, nil
	}
	course.SortYears()
	return course.Clone(), nil
}

func (r *snapshotCourseRepository) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	// One course per device: a stored course blocks every user, not only its owner.
	if current != nil {
		if current.UserID != course.UserID {
			return nil, fmt.Errorf("%w: device already holds the course of another user", entity.ErrCourseExists)
		}
		return nil, entity.ErrCourseExists
	}
	next := course.Clone()
	r.assignIDs(next)
	if err := r.save(ctx, next); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

func (r *snapshotCourseRepository) UpdateCourse(ctx context.Context, id string, update entity.CourseUpdate) error {
	return r.mutate(ctx, id, func(next *entity.Course) error {
		update.Apply(next)
		return nil
	})
}

func (r *snapshotCourseRepository) DeleteCourse(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.current(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.ID != id {
		return entity.ErrCourseNotFound
	}
	if err := r.store.Delete(ctx); err != nil {
		return err
	}
	r.course = nil
	return nil
}

func (r *snapshotCourseRepository) AddYear(ctx context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error) {
	created := year.Clone()
	created.ID = r.newID()
	created.Modules = nil
	err := r.mutate(ctx, courseID, func(next *entity.Course) error {
		if created.YearNumber <= 0 {
			created.YearNumber = next.NextYearNumber()
		}
		next.Years = append(next.Years, created.Clone())
		next.SortYears()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *snapshotCourseRepository) UpdateYear(ctx context.Context, id string, update entity.YearUpdate) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		year, ok := next.Year(id)
		if !ok {
			return entity.ErrYearNotFound
		}
		update.Apply(year)
		next.SortYears()
		return nil
	})
}

func (r *snapshotCourseRepository) DeleteYear(ctx context.Context, id string) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		if !next.RemoveYear(id) {
			return entity.ErrYearNotFound
		}
		return nil
	})
}

func (r *snapshotCourseRepository) AddModule(ctx context.Context, yearID string, module *entity.Module) (*entity.Module, error) {
	created := module.Clone()
	created.ID = r.newID()
	created.Assessments = nil
	if created.Credits <= 0 {
		created.Credits = entity.DefaultModuleCredits
	}
	err := r.mutate(ctx, "", func(next *entity.Course) error {
		year, ok := next.Year(yearID)
		if !ok {
			return entity.ErrYearNotFound
		}
		year.Modules = append(year.Modules, created.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *snapshotCourseRepository) UpdateModule(ctx context.Context, id string, update entity.ModuleUpdate) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		yearID, _, kind := next.Locate(id)
		if kind != entity.KindModule {
			return entity.ErrModuleNotFound
		}
		module, _ := next.Module(yearID, id)
		update.Apply(module)
		return nil
	})
}

func (r *snapshotCourseRepository) DeleteModule(ctx context.Context, id string) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		yearID, _, kind := next.Locate(id)
		if kind != entity.KindModule {
			return entity.ErrModuleNotFound
		}
		year, _ := next.Year(yearID)
		year.RemoveModule(id)
		return nil
	})
}

func (r *snapshotCourseRepository) AddAssessment(ctx context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error) {
	created := assessment.Clone()
	created.ID = r.newID()
	err := r.mutate(ctx, "", func(next *entity.Course) error {
		yearID, _, kind := next.Locate(moduleID)
		if kind != entity.KindModule {
			return entity.ErrModuleNotFound
		}
		module, _ := next.Module(yearID, moduleID)
		module.Assessments = append(module.Assessments, created.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *snapshotCourseRepository) UpdateAssessment(ctx context.Context, id string, update entity.AssessmentUpdate) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		yearID, moduleID, kind := next.Locate(id)
		if kind != entity.KindAssessment {
			return entity.ErrAssessmentNotFound
		}
		assessment, _ := next.Assessment(yearID, moduleID, id)
		update.Apply(assessment)
		return nil
	})
}

func (r *snapshotCourseRepository) DeleteAssessment(ctx context.Context, id string) error {
	return r.mutate(ctx, "", func(next *entity.Course) error {
		yearID, moduleID, kind := next.Locate(id)
		if kind != entity.KindAssessment {
			return entity.ErrAssessmentNotFound
		}
		module, _ := next.Module(yearID, moduleID)
		module.RemoveAssessment(id)
		return nil
	})
}

// mutate applies fn to a copy of the stored course and writes the copy back. A
// non-empty courseID must match the stored course.
func (r *snapshotCourseRepository) mutate(ctx context.Context, courseID string, fn func(next *entity.Course) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.current(ctx)
	if err != nil {
		return err
	}
	if current == nil || (courseID != "" && current.ID != courseID) {
		return entity.ErrCourseNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return r.save(ctx, next)
}

func (r *snapshotCourseRepository) current(ctx context.Context) (*entity.Course, error) {
	if r.loaded {
		return r.course, nil
	}
	course, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.course, r.loaded = course, true
	return course, nil
}

func (r *snapshotCourseRepository) save(ctx context.Context, next *entity.Course) error {
	if err := r.store.Save(ctx, next); err != nil {
		return err
	}
	r.course, r.loaded = next, true
	return nil
}

func (r *snapshotCourseRepository) assignIDs(c *entity.Course) {
	c.ID = r.newID()
	for i := range c.Years {
		year := &c.Years[i]
		year.ID = r.newID()
		if year.YearNumber <= 0 {
			year.YearNumber = i + 1
		}
		for j := range year.Modules {
			module := &year.Modules[j]
			module.ID = r.newID()
			for k := range module.Assessments {
				module.Assessments[k].ID = r.newID()
			}
		}
	}
	c.SortYears()
}
