package grading

import "github.com/eslsoft/gradebook/internal/entity"

// TargetStatus summarises how an aggregate compares with its target.
type TargetStatus string

const (
	TargetNone    TargetStatus = "none"
	TargetPending TargetStatus = "pending"
	TargetMet     TargetStatus = "met"
	TargetBelow   TargetStatus = "below"
)

// TargetProgress compares a computed grade with an optional target.
type TargetProgress struct {
	Target  *float64     `json:"target"`
	Current *float64     `json:"current"`
	Gap     *float64     `json:"gap"`
	Status  TargetStatus `json:"status"`
}

// Track compares current with target. Gap is current minus target.
func Track(current, target *float64) TargetProgress {
	p := TargetProgress{Target: target, Current: current}
	switch {
	case target == nil:
		p.Status = TargetNone
	case current == nil:
		p.Status = TargetPending
	default:
		gap := *current - *target
		p.Gap = &gap
		if gap >= 0 {
			p.Status = TargetMet
		} else {
			p.Status = TargetBelow
		}
	}
	return p
}

// CourseReport is the read-only aggregate view of a course tree.
type CourseReport struct {
	CourseID       string         `json:"courseId"`
	Institution    string         `json:"institution"`
	Title          string         `json:"title"`
	Scheme         string         `json:"scheme"`
	Grade          *float64       `json:"grade"`
	Classification Classification `json:"classification"`
	Target         TargetProgress `json:"target"`
	Completion     int            `json:"completion"`
	Years          []YearReport   `json:"years"`
}

type YearReport struct {
	YearID         string         `json:"yearId"`
	Label          string         `json:"label"`
	YearNumber     int            `json:"yearNumber"`
	Weight         float64        `json:"weight"`
	Grade          *float64       `json:"grade"`
	Classification Classification `json:"classification"`
	Target         TargetProgress `json:"target"`
	Modules        []ModuleReport `json:"modules"`
}

type ModuleReport struct {
	ModuleID        string         `json:"moduleId"`
	Name            string         `json:"name"`
	Credits         int            `json:"credits"`
	Grade           *float64       `json:"grade"`
	Classification  Classification `json:"classification"`
	Target          TargetProgress `json:"target"`
	RequiredAverage *float64       `json:"requiredAverage,omitempty"`
	Completed       int            `json:"completed"`
	Total           int            `json:"total"`
}

// BuildReport computes every aggregate of the course with the given scheme. A nil
// course yields nil.
func BuildReport(c *entity.Course, scheme Scheme) *CourseReport {
	if c == nil {
		return nil
	}
	grade := CourseGrade(c)
	report := &CourseReport{
		CourseID:       c.ID,
		Institution:    c.Institution,
		Title:          c.Title,
		Scheme:         scheme.Name,
		Grade:          grade,
		Classification: scheme.Classify(grade),
		Target:         Track(grade, c.TargetGrade),
		Completion:     CompletionPercentage(c),
		Years:          make([]YearReport, 0, len(c.Years)),
	}
	for _, y := range c.Years {
		report.Years = append(report.Years, buildYearReport(y, scheme))
	}
	return report
}

func buildYearReport(y entity.AcademicYear, scheme Scheme) YearReport {
	grade := YearGrade(y)
	yr := YearReport{
		YearID:         y.ID,
		Label:          y.Label,
		YearNumber:     y.YearNumber,
		Weight:         y.Weight,
		Grade:          grade,
		Classification: scheme.Classify(grade),
		Target:         Track(grade, y.TargetGrade),
		Modules:        make([]ModuleReport, 0, len(y.Modules)),
	}
	for _, m := range y.Modules {
		yr.Modules = append(yr.Modules, buildModuleReport(m, scheme))
	}
	return yr
}

func buildModuleReport(m entity.Module, scheme Scheme) ModuleReport {
	grade := ModuleGrade(m)
	mr := ModuleReport{
		ModuleID:       m.ID,
		Name:           m.Name,
		Credits:        m.Credits,
		Grade:          grade,
		Classification: scheme.Classify(grade),
		Target:         Track(grade, m.TargetGrade),
		Total:          len(m.Assessments),
	}
	for _, a := range m.Assessments {
		if a.Completed {
			mr.Completed++
		}
	}
	if m.TargetGrade != nil {
		mr.RequiredAverage = RequiredAverage(m, *m.TargetGrade)
	}
	return mr
}
