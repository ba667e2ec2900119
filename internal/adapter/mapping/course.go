package mapping

import (
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/gradebook/internal/entity"
)

// CourseDTO is the JSON shape of a course tree on the wire and in snapshots.
type CourseDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Institution string    `json:"institution"`
	Title       string    `json:"title"`
	TargetGrade *float64  `json:"target_grade"`
	Years       []YearDTO `json:"years"`
}

type YearDTO struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	YearNumber  int         `json:"year_number"`
	Weight      float64     `json:"weight"`
	TargetGrade *float64    `json:"target_grade"`
	Modules     []ModuleDTO `json:"modules"`
}

type ModuleDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Credits     int             `json:"credits"`
	TargetGrade *float64        `json:"target_grade"`
	Assessments []AssessmentDTO `json:"assessments"`
}

type AssessmentDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Weight    float64  `json:"weight"`
	Grade     *float64 `json:"grade"`
	Completed bool     `json:"completed"`
}

func ToCourseDTO(in *entity.Course) *CourseDTO {
	if in == nil {
		return nil
	}
	return &CourseDTO{
		ID:          in.ID,
		UserID:      in.UserID,
		Institution: in.Institution,
		Title:       in.Title,
		TargetGrade: copyFloat(in.TargetGrade),
		Years:       lo.Map(in.Years, func(y entity.AcademicYear, _ int) YearDTO { return *ToYearDTO(&y) }),
	}
}

func ToYearDTO(in *entity.AcademicYear) *YearDTO {
	return &YearDTO{
		ID:          in.ID,
		Label:       in.Label,
		YearNumber:  in.YearNumber,
		Weight:      in.Weight,
		TargetGrade: copyFloat(in.TargetGrade),
		Modules:     lo.Map(in.Modules, func(m entity.Module, _ int) ModuleDTO { return *ToModuleDTO(&m) }),
	}
}

func ToModuleDTO(in *entity.Module) *ModuleDTO {
	return &ModuleDTO{
		ID:          in.ID,
		Name:        in.Name,
		Credits:     in.Credits,
		TargetGrade: copyFloat(in.TargetGrade),
		Assessments: lo.Map(in.Assessments, func(a entity.Assessment, _ int) AssessmentDTO { return *ToAssessmentDTO(&a) }),
	}
}

func ToAssessmentDTO(in *entity.Assessment) *AssessmentDTO {
	return &AssessmentDTO{
		ID:        in.ID,
		Name:      in.Name,
		Weight:    in.Weight,
		Grade:     copyFloat(in.Grade),
		Completed: in.Completed,
	}
}

func FromCourseDTO(in *CourseDTO) *entity.Course {
	if in == nil {
		return nil
	}
	return &entity.Course{
		ID:          in.ID,
		UserID:      strings.TrimSpace(in.UserID),
		Institution: in.Institution,
		Title:       in.Title,
		TargetGrade: copyFloat(in.TargetGrade),
		Years:       lo.Map(in.Years, func(y YearDTO, _ int) entity.AcademicYear { return *FromYearDTO(&y) }),
	}
}

func FromYearDTO(in *YearDTO) *entity.AcademicYear {
	return &entity.AcademicYear{
		ID:          in.ID,
		Label:       in.Label,
		YearNumber:  in.YearNumber,
		Weight:      in.Weight,
		TargetGrade: copyFloat(in.TargetGrade),
		Modules:     lo.Map(in.Modules, func(m ModuleDTO, _ int) entity.Module { return *FromModuleDTO(&m) }),
	}
}

func FromModuleDTO(in *ModuleDTO) *entity.Module {
	return &entity.Module{
		ID:          in.ID,
		Name:        in.Name,
		Credits:     in.Credits,
		TargetGrade: copyFloat(in.TargetGrade),
		Assessments: lo.Map(in.Assessments, func(a AssessmentDTO, _ int) entity.Assessment { return *FromAssessmentDTO(&a) }),
	}
}

func FromAssessmentDTO(in *AssessmentDTO) *entity.Assessment {
	return &entity.Assessment{
		ID:        in.ID,
		Name:      in.Name,
		Weight:    in.Weight,
		Grade:     copyFloat(in.Grade),
		Completed: in.Completed,
	}
}

// Partial updates. Absent keys leave the stored field alone; an explicit null clears
// a nullable field.

type CourseUpdateDTO struct {
	Institution *string                  `json:"institution,omitempty"`
	Title       *string                  `json:"title,omitempty"`
	TargetGrade entity.Nullable[float64] `json:"target_grade,omitzero"`
}

type YearUpdateDTO struct {
	Label       *string                  `json:"label,omitempty"`
	YearNumber  *int                     `json:"year_number,omitempty"`
	Weight      *float64                 `json:"weight,omitempty"`
	TargetGrade entity.Nullable[float64] `json:"target_grade,omitzero"`
}

type ModuleUpdateDTO struct {
	Name        *string                  `json:"name,omitempty"`
	Credits     *int                     `json:"credits,omitempty"`
	TargetGrade entity.Nullable[float64] `json:"target_grade,omitzero"`
}

type AssessmentUpdateDTO struct {
	Name      *string                  `json:"name,omitempty"`
	Weight    *float64                 `json:"weight,omitempty"`
	Grade     entity.Nullable[float64] `json:"grade,omitzero"`
	Completed *bool                    `json:"completed,omitempty"`
}

func ToCourseUpdateDTO(in entity.CourseUpdate) CourseUpdateDTO {
	return CourseUpdateDTO{Institution: in.Institution, Title: in.Title, TargetGrade: in.TargetGrade}
}

func (d CourseUpdateDTO) Entity() entity.CourseUpdate {
	return entity.CourseUpdate{Institution: d.Institution, Title: d.Title, TargetGrade: d.TargetGrade}
}

func ToYearUpdateDTO(in entity.YearUpdate) YearUpdateDTO {
	return YearUpdateDTO{Label: in.Label, YearNumber: in.YearNumber, Weight: in.Weight, TargetGrade: in.TargetGrade}
}

func (d YearUpdateDTO) Entity() entity.YearUpdate {
	return entity.YearUpdate{Label: d.Label, YearNumber: d.YearNumber, Weight: d.Weight, TargetGrade: d.TargetGrade}
}

func ToModuleUpdateDTO(in entity.ModuleUpdate) ModuleUpdateDTO {
	return ModuleUpdateDTO{Name: in.Name, Credits: in.Credits, TargetGrade: in.TargetGrade}
}

func (d ModuleUpdateDTO) Entity() entity.ModuleUpdate {
	return entity.ModuleUpdate{Name: d.Name, Credits: d.Credits, TargetGrade: d.TargetGrade}
}

func ToAssessmentUpdateDTO(in entity.AssessmentUpdate) AssessmentUpdateDTO {
	return AssessmentUpdateDTO{Name: in.Name, Weight: in.Weight, Grade: in.Grade, Completed: in.Completed}
}

func (d AssessmentUpdateDTO) Entity() entity.AssessmentUpdate {
	return entity.AssessmentUpdate{Name: d.Name, Weight: d.Weight, Grade: d.Grade, Completed: d.Completed}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
