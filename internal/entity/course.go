package entity

import "sort"

// DefaultModuleCredits is applied when a module is created without a credit value.
const DefaultModuleCredits = 20

// Course is the root of a user's grade tree. A user owns at most one course.
type Course struct {
	ID          string
	UserID      string
	Institution string
	Title       string
	TargetGrade *float64
	Years       []AcademicYear
}

// AcademicYear groups modules. Weight is the year's percentage contribution to the
// course aggregate; sibling weights are not required to sum to 100.
type AcademicYear struct {
	ID          string
	Label       string
	YearNumber  int
	Weight      float64
	TargetGrade *float64
	Modules     []Module
}

// Module groups assessments and is weighted by Credits inside its year.
type Module struct {
	ID          string
	Name        string
	Credits     int
	TargetGrade *float64
	Assessments []Assessment
}

// Assessment is a single piece of graded work. It only counts toward aggregates once
// it is both Completed and has a Grade.
type Assessment struct {
	ID        string
	Name      string
	Weight    float64
	Grade     *float64
	Completed bool
}

// Counts reports whether the assessment takes part in aggregation.
func (a Assessment) Counts() bool {
	return a.Completed && a.Grade != nil
}

// Clone returns a deep copy of the course tree.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.TargetGrade = cloneFloat(c.TargetGrade)
	if c.Years != nil {
		out.Years = make([]AcademicYear, len(c.Years))
		for i := range c.Years {
			out.Years[i] = c.Years[i].Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the year and its descendants.
func (y AcademicYear) Clone() AcademicYear {
	out := y
	out.TargetGrade = cloneFloat(y.TargetGrade)
	if y.Modules != nil {
		out.Modules = make([]Module, len(y.Modules))
		for i := range y.Modules {
			out.Modules[i] = y.Modules[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the module and its assessments.
func (m Module) Clone() Module {
	out := m
	out.TargetGrade = cloneFloat(m.TargetGrade)
	if m.Assessments != nil {
		out.Assessments = make([]Assessment, len(m.Assessments))
		for i := range m.Assessments {
			out.Assessments[i] = m.Assessments[i].Clone()
		}
	}
	return out
}

// Clone returns a copy of the assessment that does not share the grade pointer.
func (a Assessment) Clone() Assessment {
	out := a
	out.Grade = cloneFloat(a.Grade)
	return out
}

// SortYears orders years by YearNumber, keeping insertion order for equal numbers.
func (c *Course) SortYears() {
	sort.SliceStable(c.Years, func(i, j int) bool {
		return c.Years[i].YearNumber < c.Years[j].YearNumber
	})
}

// NextYearNumber returns the year number following the highest one in the course.
func (c *Course) NextYearNumber() int {
	next := 1
	for _, y := range c.Years {
		if y.YearNumber >= next {
			next = y.YearNumber + 1
		}
	}
	return next
}

// Year returns the year with the given id.
func (c *Course) Year(id string) (*AcademicYear, bool) {
	for i := range c.Years {
		if c.Years[i].ID == id {
			return &c.Years[i], true
		}
	}
	return nil, false
}

// Module returns the module with the given id inside the given year.
func (c *Course) Module(yearID, moduleID string) (*Module, bool) {
	year, ok := c.Year(yearID)
	if !ok {
		return nil, false
	}
	for i := range year.Modules {
		if year.Modules[i].ID == moduleID {
			return &year.Modules[i], true
		}
	}
	return nil, false
}

// Assessment returns the assessment addressed by its full path.
func (c *Course) Assessment(yearID, moduleID, assessmentID string) (*Assessment, bool) {
	module, ok := c.Module(yearID, moduleID)
	if !ok {
		return nil, false
	}
	for i := range module.Assessments {
		if module.Assessments[i].ID == assessmentID {
			return &module.Assessments[i], true
		}
	}
	return nil, false
}

// RemoveYear drops a year together with its modules and assessments.
func (c *Course) RemoveYear(id string) bool {
	for i := range c.Years {
		if c.Years[i].ID == id {
			c.Years = append(c.Years[:i], c.Years[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveModule drops a module together with its assessments.
func (y *AcademicYear) RemoveModule(id string) bool {
	for i := range y.Modules {
		if y.Modules[i].ID == id {
			y.Modules = append(y.Modules[:i], y.Modules[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAssessment drops a single assessment.
func (m *Module) RemoveAssessment(id string) bool {
	for i := range m.Assessments {
		if m.Assessments[i].ID == id {
			m.Assessments = append(m.Assessments[:i], m.Assessments[i+1:]...)
			return true
		}
	}
	return false
}

// Locate finds the year and module that own an entity id. It is used by stores that
// only receive the leaf id.
func (c *Course) Locate(id string) (yearID, moduleID string, kind EntityKind) {
	if c.ID == id {
		return "", "", KindCourse
	}
	for _, y := range c.Years {
		if y.ID == id {
			return y.ID, "", KindYear
		}
		for _, m := range y.Modules {
			if m.ID == id {
				return y.ID, m.ID, KindModule
			}
			for _, a := range m.Assessments {
				if a.ID == id {
					return y.ID, m.ID, KindAssessment
				}
			}
		}
	}
	return "", "", KindUnknown
}

// AssessmentCount returns total and completed assessment counts across the tree.
func (c *Course) AssessmentCount() (total, completed int) {
	for _, y := range c.Years {
		for _, m := range y.Modules {
			for _, a := range m.Assessments {
				total++
				if a.Completed {
					completed++
				}
			}
		}
	}
	return total, completed
}

// EntityKind identifies a level of the course tree.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindCourse
	KindYear
	KindModule
	KindAssessment
)

func (k EntityKind) String() string {
	switch k {
	case KindCourse:
		return "course"
	case KindYear:
		return "year"
	case KindModule:
		return "module"
	case KindAssessment:
		return "assessment"
	default:
		return "unknown"
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
