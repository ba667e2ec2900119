package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
)

// CourseService is the server side of the remote store. Every call is scoped to the
// caller's own course: ids belonging to another user's tree are reported as not
// found.
type CourseService interface {
	FetchCourse(ctx context.Context, userID string) (*entity.Course, error)
	CreateCourse(ctx context.Context, userID string, course *entity.Course) (*entity.Course, error)
	UpdateCourse(ctx context.Context, userID, id string, update entity.CourseUpdate) error
	DeleteCourse(ctx context.Context, userID, id string) error

	AddYear(ctx context.Context, userID, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error)
	UpdateYear(ctx context.Context, userID, id string, update entity.YearUpdate) error
	DeleteYear(ctx context.Context, userID, id string) error

	AddModule(ctx context.Context, userID, yearID string, module *entity.Module) (*entity.Module, error)
	UpdateModule(ctx context.Context, userID, id string, update entity.ModuleUpdate) error
	DeleteModule(ctx context.Context, userID, id string) error

	AddAssessment(ctx context.Context, userID, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error)
	UpdateAssessment(ctx context.Context, userID, id string, update entity.AssessmentUpdate) error
	DeleteAssessment(ctx context.Context, userID, id string) error
}

type courseService struct {
	repo   repository.CourseRepository
	logger logrus.FieldLogger
}

func NewCourseService(repo repository.CourseRepository, logger logrus.FieldLogger) CourseService {
	return &courseService{repo: repo, logger: logger.WithField("component", "course_service")}
}

func (s *courseService) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	if userID == "" {
		return nil, entity.ErrInvalidUserID
	}
	return s.repo.FetchCourse(ctx, userID)
}

func (s *courseService) CreateCourse(ctx context.Context, userID string, course *entity.Course) (_ *entity.Course, err error) {
	defer s.record("create_course", userID, "", &err)
	if userID == "" {
		return nil, entity.ErrInvalidUserID
	}
	if course == nil {
		return nil, entity.ErrInvalidName
	}
	draft := course.Clone()
	draft.UserID = userID
	if err := draft.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.CreateCourse(ctx, draft)
}

func (s *courseService) UpdateCourse(ctx context.Context, userID, id string, update entity.CourseUpdate) (err error) {
	defer s.record("update_course", userID, id, &err)
	if err := update.Normalize(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, id, entity.KindCourse); err != nil {
		return err
	}
	return s.repo.UpdateCourse(ctx, id, update)
}

func (s *courseService) DeleteCourse(ctx context.Context, userID, id string) (err error) {
	defer s.record("delete_course", userID, id, &err)
	if _, err := s.owned(ctx, userID, id, entity.KindCourse); err != nil {
		return err
	}
	return s.repo.DeleteCourse(ctx, id)
}

func (s *courseService) AddYear(ctx context.Context, userID, courseID string, year *entity.AcademicYear) (_ *entity.AcademicYear, err error) {
	defer s.record("add_year", userID, courseID, &err)
	if year == nil {
		return nil, entity.ErrInvalidName
	}
	course, err := s.owned(ctx, userID, courseID, entity.KindCourse)
	if err != nil {
		return nil, err
	}
	draft := year.Clone()
	draft.Modules = nil
	if draft.YearNumber == 0 {
		draft.YearNumber = course.NextYearNumber()
	}
	if err := draft.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.AddYear(ctx, courseID, &draft)
}

func (s *courseService) UpdateYear(ctx context.Context, userID, id string, update entity.YearUpdate) (err error) {
	defer s.record("update_year", userID, id, &err)
	if err := update.Normalize(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, id, entity.KindYear); err != nil {
		return err
	}
	return s.repo.UpdateYear(ctx, id, update)
}

func (s *courseService) DeleteYear(ctx context.Context, userID, id string) (err error) {
	defer s.record("delete_year", userID, id, &err)
	if _, err := s.owned(ctx, userID, id, entity.KindYear); err != nil {
		return err
	}
	return s.repo.DeleteYear(ctx, id)
}

func (s *courseService) AddModule(ctx context.Context, userID, yearID string, module *entity.Module) (_ *entity.Module, err error) {
	defer s.record("add_module", userID, yearID, &err)
	if module == nil {
		return nil, entity.ErrInvalidName
	}
	if _, err := s.owned(ctx, userID, yearID, entity.KindYear); err != nil {
		return nil, err
	}
	draft := module.Clone()
	draft.Assessments = nil
	if draft.Credits <= 0 {
		draft.Credits = entity.DefaultModuleCredits
	}
	if err := draft.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.AddModule(ctx, yearID, &draft)
}

func (s *courseService) UpdateModule(ctx context.Context, userID, id string, update entity.ModuleUpdate) (err error) {
	defer s.record("update_module", userID, id, &err)
	if err := update.Normalize(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, id, entity.KindModule); err != nil {
		return err
	}
	return s.repo.UpdateModule(ctx, id, update)
}

func (s *courseService) DeleteModule(ctx context.Context, userID, id string) (err error) {
	defer s.record("delete_module", userID, id, &err)
	if _, err := s.owned(ctx, userID, id, entity.KindModule); err != nil {
		return err
	}
	return s.repo.DeleteModule(ctx, id)
}

func (s *courseService) AddAssessment(ctx context.Context, userID, moduleID string, assessment *entity.Assessment) (_ *entity.Assessment, err error) {
	defer s.record("add_assessment", userID, moduleID, &err)
	if assessment == nil {
		return nil, entity.ErrInvalidName
	}
	if _, err := s.owned(ctx, userID, moduleID, entity.KindModule); err != nil {
		return nil, err
	}
	draft := assessment.Clone()
	if err := draft.Normalize(); err != nil {
		return nil, err
	}
	return s.repo.AddAssessment(ctx, moduleID, &draft)
}

func (s *courseService) UpdateAssessment(ctx context.Context, userID, id string, update entity.AssessmentUpdate) (err error) {
	defer s.record("update_assessment", userID, id, &err)
	if err := update.Normalize(); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, id, entity.KindAssessment); err != nil {
		return err
	}
	return s.repo.UpdateAssessment(ctx, id, update)
}

func (s *courseService) DeleteAssessment(ctx context.Context, userID, id string) (err error) {
	defer s.record("delete_assessment", userID, id, &err)
	if _, err := s.owned(ctx, userID, id, entity.KindAssessment); err != nil {
		return err
	}
	return s.repo.DeleteAssessment(ctx, id)
}

// record logs the outcome of a mutation. Rejections caused by the caller are logged
// at warn level, any other failure at error level.
func (s *courseService) record(op, userID, id string, errp *error) {
	entry := s.logger.WithFields(logrus.Fields{"op": op, "user_id": userID})
	if id != "" {
		entry = entry.WithField("target_id", id)
	}
	err := *errp
	switch {
	case err == nil:
		entry.Debug("mutation committed")
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrNotFound), errors.Is(err, entity.ErrConflict):
		entry.WithError(err).Warn("mutation rejected")
	default:
		entry.WithError(err).Error("mutation failed")
	}
}

// owned loads the caller's course and checks that id names an entity of the given
// kind inside it.
func (s *courseService) owned(ctx context.Context, userID, id string, kind entity.EntityKind) (*entity.Course, error) {
	if userID == "" {
		return nil, entity.ErrInvalidUserID
	}
	course, err := s.repo.FetchCourse(ctx, userID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, notFoundFor(kind)
	}
	if kind == entity.KindCourse {
		if course.ID != id {
			return nil, entity.ErrCourseNotFound
		}
		return course, nil
	}
	if _, _, found := course.Locate(id); found != kind {
		return nil, notFoundFor(kind)
	}
	return course, nil
}

func notFoundFor(kind entity.EntityKind) error {
	switch kind {
	case entity.KindYear:
		return entity.ErrYearNotFound
	case entity.KindModule:
		return entity.ErrModuleNotFound
	case entity.KindAssessment:
		return entity.ErrAssessmentNotFound
	default:
		return entity.ErrCourseNotFound
	}
}

// userCourseRepository binds a CourseService to one user so it can stand in for a
// CourseRepository.
type userCourseRepository struct {
	svc    CourseService
	userID string
}

// NewUserCourseRepository exposes svc as a CourseRepository acting for userID.
func NewUserCourseRepository(svc CourseService, userID string) repository.CourseRepository {
	return &userCourseRepository{svc: svc, userID: userID}
}

func (r *userCourseRepository) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	if userID != r.userID {
		return nil, entity.ErrInvalidUserID
	}
	return r.svc.FetchCourse(ctx, r.userID)
}

func (r *userCourseRepository) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	return r.svc.CreateCourse(ctx, r.userID, course)
}

func (r *userCourseRepository) UpdateCourse(ctx context.Context, id string, update entity.CourseUpdate) error {
	return r.svc.UpdateCourse(ctx, r.userID, id, update)
}

func (r *userCourseRepository) DeleteCourse(ctx context.Context, id string) error {
	return r.svc.DeleteCourse(ctx, r.userID, id)
}

func (r *userCourseRepository) AddYear(ctx context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error) {
	return r.svc.AddYear(ctx, r.userID, courseID, year)
}

func (r *userCourseRepository) UpdateYear(ctx context.Context, id string, update entity.YearUpdate) error {
	return r.svc.UpdateYear(ctx, r.userID, id, update)
}

func (r *userCourseRepository) DeleteYear(ctx context.Context, id string) error {
	return r.svc.DeleteYear(ctx, r.userID, id)
}

func (r *userCourseRepository) AddModule(ctx context.Context, yearID string, module *entity.Module) (*entity.Module, error) {
	return r.svc.AddModule(ctx, r.userID, yearID, module)
}

func (r *userCourseRepository) UpdateModule(ctx context.Context, id string, update entity.ModuleUpdate) error {
	return r.svc.UpdateModule(ctx, r.userID, id, update)
}

func (r *userCourseRepository) DeleteModule(ctx context.Context, id string) error {
	return r.svc.DeleteModule(ctx, r.userID, id)
}

func (r *userCourseRepository) AddAssessment(ctx context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error) {
	return r.svc.AddAssessment(ctx, r.userID, moduleID, assessment)
}

func (r *userCourseRepository) UpdateAssessment(ctx context.Context, id string, update entity.AssessmentUpdate) error {
	return r.svc.UpdateAssessment(ctx, r.userID, id, update)
}

func (r *userCourseRepository) DeleteAssessment(ctx context.Context, id string) error {
	return r.svc.DeleteAssessment(ctx, r.userID, id)
}
