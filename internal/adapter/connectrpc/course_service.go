package connectrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/eslsoft/gradebook/internal/adapter/mapping"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

// CourseServiceServer exposes usecase.CourseService over connect.
type CourseServiceServer struct {
	uc usecase.CourseService
}

func NewCourseServiceServer(uc usecase.CourseService) *CourseServiceServer {
	return &CourseServiceServer{uc: uc}
}

// NewCourseServiceHandler builds an HTTP handler serving every course procedure. It
// returns the path prefix to mount it on.
func NewCourseServiceHandler(svc *CourseServiceServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithInterceptors(NewIdentityInterceptor()),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CourseServiceFetchCourseProcedure, unary(CourseServiceFetchCourseProcedure, svc.FetchCourse, opts))
	mux.Handle(CourseServiceCreateCourseProcedure, unary(CourseServiceCreateCourseProcedure, svc.CreateCourse, opts))
	mux.Handle(CourseServiceUpdateCourseProcedure, unary(CourseServiceUpdateCourseProcedure, svc.UpdateCourse, opts))
	mux.Handle(CourseServiceDeleteCourseProcedure, unary(CourseServiceDeleteCourseProcedure, svc.DeleteCourse, opts))
	mux.Handle(CourseServiceAddYearProcedure, unary(CourseServiceAddYearProcedure, svc.AddYear, opts))
	mux.Handle(CourseServiceUpdateYearProcedure, unary(CourseServiceUpdateYearProcedure, svc.UpdateYear, opts))
	mux.Handle(CourseServiceDeleteYearProcedure, unary(CourseServiceDeleteYearProcedure, svc.DeleteYear, opts))
	mux.Handle(CourseServiceAddModuleProcedure, unary(CourseServiceAddModuleProcedure, svc.AddModule, opts))
	mux.Handle(CourseServiceUpdateModuleProcedure, unary(CourseServiceUpdateModuleProcedure, svc.UpdateModule, opts))
	mux.Handle(CourseServiceDeleteModuleProcedure, unary(CourseServiceDeleteModuleProcedure, svc.DeleteModule, opts))
	mux.Handle(CourseServiceAddAssessmentProcedure, unary(CourseServiceAddAssessmentProcedure, svc.AddAssessment, opts))
	mux.Handle(CourseServiceUpdateAssessmentProcedure, unary(CourseServiceUpdateAssessmentProcedure, svc.UpdateAssessment, opts))
	mux.Handle(CourseServiceDeleteAssessmentProcedure, unary(CourseServiceDeleteAssessmentProcedure, svc.DeleteAssessment, opts))
	mux.Handle(CourseServiceGetReportProcedure, unary(CourseServiceGetReportProcedure, svc.GetReport, opts))
	return "/" + CourseServiceName + "/", mux
}

func unary[Req, Res any](procedure string, fn func(context.Context, string, *Req) (*Res, error), opts []connect.HandlerOption) http.Handler {
	return connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		userID, ok := UserIDFrom(ctx)
		if !ok {
			return nil, connect.NewError(connect.CodeUnauthenticated, entity.ErrInvalidUserID)
		}
		res, err := fn(ctx, userID, req.Msg)
		if err != nil {
			return nil, mapping.ToConnectError(err)
		}
		return connect.NewResponse(res), nil
	}, opts...)
}

func (s *CourseServiceServer) FetchCourse(ctx context.Context, userID string, _ *emptypb.Empty) (*CourseResponse, error) {
	course, err := s.uc.FetchCourse(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CourseResponse{Course: mapping.ToCourseDTO(course)}, nil
}

func (s *CourseServiceServer) CreateCourse(ctx context.Context, userID string, req *CreateCourseRequest) (*CourseResponse, error) {
	course, err := s.uc.CreateCourse(ctx, userID, mapping.FromCourseDTO(&req.Course))
	if err != nil {
		return nil, err
	}
	return &CourseResponse{Course: mapping.ToCourseDTO(course)}, nil
}

func (s *CourseServiceServer) UpdateCourse(ctx context.Context, userID string, req *UpdateCourseRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.UpdateCourse(ctx, userID, req.ID, req.Update.Entity())
}

func (s *CourseServiceServer) DeleteCourse(ctx context.Context, userID string, req *IDRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.DeleteCourse(ctx, userID, req.ID)
}

func (s *CourseServiceServer) AddYear(ctx context.Context, userID string, req *AddYearRequest) (*YearResponse, error) {
	year, err := s.uc.AddYear(ctx, userID, req.CourseID, mapping.FromYearDTO(&req.Year))
	if err != nil {
		return nil, err
	}
	return &YearResponse{Year: *mapping.ToYearDTO(year)}, nil
}

func (s *CourseServiceServer) UpdateYear(ctx context.Context, userID string, req *UpdateYearRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.UpdateYear(ctx, userID, req.ID, req.Update.Entity())
}

func (s *CourseServiceServer) DeleteYear(ctx context.Context, userID string, req *IDRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.DeleteYear(ctx, userID, req.ID)
}

func (s *CourseServiceServer) AddModule(ctx context.Context, userID string, req *AddModuleRequest) (*ModuleResponse, error) {
	module, err := s.uc.AddModule(ctx, userID, req.YearID, mapping.FromModuleDTO(&req.Module))
	if err != nil {
		return nil, err
	}
	return &ModuleResponse{Module: *mapping.ToModuleDTO(module)}, nil
}

func (s *CourseServiceServer) UpdateModule(ctx context.Context, userID string, req *UpdateModuleRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.UpdateModule(ctx, userID, req.ID, req.Update.Entity())
}

func (s *CourseServiceServer) DeleteModule(ctx context.Context, userID string, req *IDRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.DeleteModule(ctx, userID, req.ID)
}

func (s *CourseServiceServer) AddAssessment(ctx context.Context, userID string, req *AddAssessmentRequest) (*AssessmentResponse, error) {
	assessment, err := s.uc.AddAssessment(ctx, userID, req.ModuleID, mapping.FromAssessmentDTO(&req.Assessment))
	if err != nil {
		return nil, err
	}
	return &AssessmentResponse{Assessment: *mapping.ToAssessmentDTO(assessment)}, nil
}

func (s *CourseServiceServer) UpdateAssessment(ctx context.Context, userID string, req *UpdateAssessmentRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.UpdateAssessment(ctx, userID, req.ID, req.Update.Entity())
}

func (s *CourseServiceServer) DeleteAssessment(ctx context.Context, userID string, req *IDRequest) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, s.uc.DeleteAssessment(ctx, userID, req.ID)
}

// GetReport computes the caller's course aggregates server side.
func (s *CourseServiceServer) GetReport(ctx context.Context, userID string, _ *emptypb.Empty) (*ReportResponse, error) {
	course, err := s.uc.FetchCourse(ctx, userID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, entity.ErrCourseNotFound
	}
	return &ReportResponse{Report: grading.BuildReport(course, grading.UKHonours)}, nil
}
