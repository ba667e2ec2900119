package connectrpc

import (
	"github.com/eslsoft/gradebook/internal/adapter/mapping"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

const CourseServiceName = "gradebook.v1.CourseService"

const (
	CourseServiceFetchCourseProcedure      = "/gradebook.v1.CourseService/FetchCourse"
	CourseServiceCreateCourseProcedure     = "/gradebook.v1.CourseService/CreateCourse"
	CourseServiceUpdateCourseProcedure     = "/gradebook.v1.CourseService/UpdateCourse"
	CourseServiceDeleteCourseProcedure     = "/gradebook.v1.CourseService/DeleteCourse"
	CourseServiceAddYearProcedure          = "/gradebook.v1.CourseService/AddYear"
	CourseServiceUpdateYearProcedure       = "/gradebook.v1.CourseService/UpdateYear"
	CourseServiceDeleteYearProcedure       = "/gradebook.v1.CourseService/DeleteYear"
	CourseServiceAddModuleProcedure        = "/gradebook.v1.CourseService/AddModule"
	CourseServiceUpdateModuleProcedure     = "/gradebook.v1.CourseService/UpdateModule"
	CourseServiceDeleteModuleProcedure     = "/gradebook.v1.CourseService/DeleteModule"
	CourseServiceAddAssessmentProcedure    = "/gradebook.v1.CourseService/AddAssessment"
	CourseServiceUpdateAssessmentProcedure = "/gradebook.v1.CourseService/UpdateAssessment"
	CourseServiceDeleteAssessmentProcedure = "/gradebook.v1.CourseService/DeleteAssessment"
	CourseServiceGetReportProcedure        = "/gradebook.v1.CourseService/GetReport"
)

type IDRequest struct {
	ID string `json:"id"`
}

type CourseResponse struct {
	Course *mapping.CourseDTO `json:"course"`
}

type CreateCourseRequest struct {
	Course mapping.CourseDTO `json:"course"`
}

type UpdateCourseRequest struct {
	ID     string                  `json:"id"`
	Update mapping.CourseUpdateDTO `json:"update"`
}

type AddYearRequest struct {
	CourseID string          `json:"course_id"`
	Year     mapping.YearDTO `json:"year"`
}

type YearResponse struct {
	Year mapping.YearDTO `json:"year"`
}

type UpdateYearRequest struct {
	ID     string                `json:"id"`
	Update mapping.YearUpdateDTO `json:"update"`
}

type AddModuleRequest struct {
	YearID string            `json:"year_id"`
	Module mapping.ModuleDTO `json:"module"`
}

type ModuleResponse struct {
	Module mapping.ModuleDTO `json:"module"`
}

type UpdateModuleRequest struct {
	ID     string                  `json:"id"`
	Update mapping.ModuleUpdateDTO `json:"update"`
}

type AddAssessmentRequest struct {
	ModuleID   string                `json:"module_id"`
	Assessment mapping.AssessmentDTO `json:"assessment"`
}

type AssessmentResponse struct {
	Assessment mapping.AssessmentDTO `json:"assessment"`
}

type UpdateAssessmentRequest struct {
	ID     string                      `json:"id"`
	Update mapping.AssessmentUpdateDTO `json:"update"`
}

// ReportResponse carries the caller's course report under the UK honours scheme.
type ReportResponse struct {
	Report *grading.CourseReport `json:"report"`
}
