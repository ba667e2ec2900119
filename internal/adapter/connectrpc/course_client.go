package connectrpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/eslsoft/gradebook/internal/adapter/mapping"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

var _ repository.CourseRepository = (*CourseClient)(nil)

// CourseClient is a repository.CourseRepository backed by a remote CourseService.
// Every request carries the bound user id.
type CourseClient struct {
	userID string

	fetchCourse      *connect.Client[emptypb.Empty, CourseResponse]
	createCourse     *connect.Client[CreateCourseRequest, CourseResponse]
	updateCourse     *connect.Client[UpdateCourseRequest, emptypb.Empty]
	deleteCourse     *connect.Client[IDRequest, emptypb.Empty]
	addYear          *connect.Client[AddYearRequest, YearResponse]
	updateYear       *connect.Client[UpdateYearRequest, emptypb.Empty]
	deleteYear       *connect.Client[IDRequest, emptypb.Empty]
	addModule        *connect.Client[AddModuleRequest, ModuleResponse]
	updateModule     *connect.Client[UpdateModuleRequest, emptypb.Empty]
	deleteModule     *connect.Client[IDRequest, emptypb.Empty]
	addAssessment    *connect.Client[AddAssessmentRequest, AssessmentResponse]
	updateAssessment *connect.Client[UpdateAssessmentRequest, emptypb.Empty]
	deleteAssessment *connect.Client[IDRequest, emptypb.Empty]
	getReport        *connect.Client[emptypb.Empty, ReportResponse]
}

func NewCourseClient(httpClient connect.HTTPClient, baseURL, userID string, opts ...connect.ClientOption) *CourseClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{
		connect.WithCodec(Codec{}),
		connect.WithInterceptors(NewUserIDInterceptor(userID)),
	}, opts...)

	return &CourseClient{
		userID:           userID,
		fetchCourse:      connect.NewClient[emptypb.Empty, CourseResponse](httpClient, baseURL+CourseServiceFetchCourseProcedure, opts...),
		createCourse:     connect.NewClient[CreateCourseRequest, CourseResponse](httpClient, baseURL+CourseServiceCreateCourseProcedure, opts...),
		updateCourse:     connect.NewClient[UpdateCourseRequest, emptypb.Empty](httpClient, baseURL+CourseServiceUpdateCourseProcedure, opts...),
		deleteCourse:     connect.NewClient[IDRequest, emptypb.Empty](httpClient, baseURL+CourseServiceDeleteCourseProcedure, opts...),
		addYear:          connect.NewClient[AddYearRequest, YearResponse](httpClient, baseURL+CourseServiceAddYearProcedure, opts...),
		updateYear:       connect.NewClient[UpdateYearRequest, emptypb.Empty](httpClient, baseURL+CourseServiceUpdateYearProcedure, opts...),
		deleteYear:       connect.NewClient[IDRequest, emptypb.Empty](httpClient, baseURL+CourseServiceDeleteYearProcedure, opts...),
		addModule:        connect.NewClient[AddModuleRequest, ModuleResponse](httpClient, baseURL+CourseServiceAddModuleProcedure, opts...),
		updateModule:     connect.NewClient[UpdateModuleRequest, emptypb.Empty](httpClient, baseURL+CourseServiceUpdateModuleProcedure, opts...),
		deleteModule:     connect.NewClient[IDRequest, emptypb.Empty](httpClient, baseURL+CourseServiceDeleteModuleProcedure, opts...),
		addAssessment:    connect.NewClient[AddAssessmentRequest, AssessmentResponse](httpClient, baseURL+CourseServiceAddAssessmentProcedure, opts...),
		updateAssessment: connect.NewClient[UpdateAssessmentRequest, emptypb.Empty](httpClient, baseURL+CourseServiceUpdateAssessmentProcedure, opts...),
		deleteAssessment: connect.NewClient[IDRequest, emptypb.Empty](httpClient, baseURL+CourseServiceDeleteAssessmentProcedure, opts...),
		getReport:        connect.NewClient[emptypb.Empty, ReportResponse](httpClient, baseURL+CourseServiceGetReportProcedure, opts...),
	}
}

func call[Req, Res any](ctx context.Context, client *connect.Client[Req, Res], req *Req, kind entity.EntityKind) (*Res, error) {
	resp, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, mapping.FromConnectError(err, kind)
	}
	return resp.Msg, nil
}

func (c *CourseClient) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	if userID != c.userID {
		return nil, entity.ErrInvalidUserID
	}
	res, err := call(ctx, c.fetchCourse, &emptypb.Empty{}, entity.KindCourse)
	if err != nil {
		return nil, err
	}
	return mapping.FromCourseDTO(res.Course), nil
}

func (c *CourseClient) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	res, err := call(ctx, c.createCourse, &CreateCourseRequest{Course: *mapping.ToCourseDTO(course)}, entity.KindCourse)
	if err != nil {
		return nil, err
	}
	return mapping.FromCourseDTO(res.Course), nil
}

func (c *CourseClient) UpdateCourse(ctx context.Context, id string, update entity.CourseUpdate) error {
	_, err := call(ctx, c.updateCourse, &UpdateCourseRequest{ID: id, Update: mapping.ToCourseUpdateDTO(update)}, entity.KindCourse)
	return err
}

func (c *CourseClient) DeleteCourse(ctx context.Context, id string) error {
	_, err := call(ctx, c.deleteCourse, &IDRequest{ID: id}, entity.KindCourse)
	return err
}

func (c *CourseClient) AddYear(ctx context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error) {
	res, err := call(ctx, c.addYear, &AddYearRequest{CourseID: courseID, Year: *mapping.ToYearDTO(year)}, entity.KindCourse)
	if err != nil {
		return nil, err
	}
	return mapping.FromYearDTO(&res.Year), nil
}

func (c *CourseClient) UpdateYear(ctx context.Context, id string, update entity.YearUpdate) error {
	_, err := call(ctx, c.updateYear, &UpdateYearRequest{ID: id, Update: mapping.ToYearUpdateDTO(update)}, entity.KindYear)
	return err
}

func (c *CourseClient) DeleteYear(ctx context.Context, id string) error {
	_, err := call(ctx, c.deleteYear, &IDRequest{ID: id}, entity.KindYear)
	return err
}

func (c *CourseClient) AddModule(ctx context.Context, yearID string, module *entity.Module) (*entity.Module, error) {
	res, err := call(ctx, c.addModule, &AddModuleRequest{YearID: yearID, Module: *mapping.ToModuleDTO(module)}, entity.KindYear)
	if err != nil {
		return nil, err
	}
	return mapping.FromModuleDTO(&res.Module), nil
}

func (c *CourseClient) UpdateModule(ctx context.Context, id string, update entity.ModuleUpdate) error {
	_, err := call(ctx, c.updateModule, &UpdateModuleRequest{ID: id, Update: mapping.ToModuleUpdateDTO(update)}, entity.KindModule)
	return err
}

func (c *CourseClient) DeleteModule(ctx context.Context, id string) error {
	_, err := call(ctx, c.deleteModule, &IDRequest{ID: id}, entity.KindModule)
	return err
}

func (c *CourseClient) AddAssessment(ctx context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error) {
	res, err := call(ctx, c.addAssessment, &AddAssessmentRequest{ModuleID: moduleID, Assessment: *mapping.ToAssessmentDTO(assessment)}, entity.KindModule)
	if err != nil {
		return nil, err
	}
	return mapping.FromAssessmentDTO(&res.Assessment), nil
}

func (c *CourseClient) UpdateAssessment(ctx context.Context, id string, update entity.AssessmentUpdate) error {
	_, err := call(ctx, c.updateAssessment, &UpdateAssessmentRequest{ID: id, Update: mapping.ToAssessmentUpdateDTO(update)}, entity.KindAssessment)
	return err
}

func (c *CourseClient) DeleteAssessment(ctx context.Context, id string) error {
	_, err := call(ctx, c.deleteAssessment, &IDRequest{ID: id}, entity.KindAssessment)
	return err
}

// GetReport fetches the bound user's course report computed by the server.
func (c *CourseClient) GetReport(ctx context.Context) (*grading.CourseReport, error) {
	res, err := call(ctx, c.getReport, &emptypb.Empty{}, entity.KindCourse)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}
