package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/gradebook/internal/entity"
)

// ToConnectError maps a domain error onto a connect status code.
func ToConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, entity.ErrInvalidUserID):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, entity.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, entity.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, entity.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, entity.ErrCourseNotLoaded):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, entity.ErrTransient):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

var notFoundByKind = map[entity.EntityKind]error{
	entity.KindCourse:     entity.ErrCourseNotFound,
	entity.KindYear:       entity.ErrYearNotFound,
	entity.KindModule:     entity.ErrModuleNotFound,
	entity.KindAssessment: entity.ErrAssessmentNotFound,
}

// FromConnectError turns a server status back into the domain category so callers
// can keep branching with errors.Is. kind selects the specific not-found error.
func FromConnectError(err error, kind entity.EntityKind) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return entity.Transient(err)
	}
	switch connectErr.Code() {
	case connect.CodeInvalidArgument:
		return errors.Join(entity.ErrValidation, err)
	case connect.CodeUnauthenticated:
		return errors.Join(entity.ErrInvalidUserID, err)
	case connect.CodeNotFound:
		if specific, ok := notFoundByKind[kind]; ok {
			return errors.Join(specific, err)
		}
		return errors.Join(entity.ErrNotFound, err)
	case connect.CodeAlreadyExists:
		return errors.Join(entity.ErrCourseExists, err)
	case connect.CodeFailedPrecondition:
		return errors.Join(entity.ErrCourseNotLoaded, err)
	case connect.CodeCanceled:
		return errors.Join(context.Canceled, err)
	case connect.CodeDeadlineExceeded:
		return errors.Join(context.DeadlineExceeded, err)
	default:
		return entity.Transient(err)
	}
}
