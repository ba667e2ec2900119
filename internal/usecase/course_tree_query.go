package usecase

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
	"github.com/eslsoft/gradebook/pkg/filterexpr"
)

// AssessmentRow is an assessment flattened together with its ancestors.
type AssessmentRow struct {
	entity.Assessment

	YearID     string
	YearLabel  string
	YearNumber int
	ModuleID   string
	ModuleName string
	// Position is the row's index in tree order.
	Position int
}

// AssessmentSchema is the filter and order_by vocabulary of assessment listings, e.g.
// `completed == false && weight >= 20` ordered by `grade desc`.
var AssessmentSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"name":      {Kind: filterexpr.KindString, Ops: filterexpr.TextOps},
		"module":    {Kind: filterexpr.KindString, Ops: filterexpr.TextOps},
		"year":      {Kind: filterexpr.KindNumber, Ops: filterexpr.NumericOps},
		"weight":    {Kind: filterexpr.KindNumber, Ops: filterexpr.NumericOps},
		"grade":     {Kind: filterexpr.KindNumber, Ops: filterexpr.NumericOps},
		"completed": {Kind: filterexpr.KindBool, Ops: filterexpr.EqualityOps},
	},
	Order: filterexpr.OrderSchema{
		Fields:   []string{"year", "module", "name", "weight", "grade", "position"},
		Default:  []filterexpr.OrderKey{{Field: "year"}},
		Tiebreak: filterexpr.OrderKey{Field: "position"},
		MaxKeys:  3,
	},
}

// matchRow reports whether row satisfies cond. Numeric conditions never match a
// missing grade.
func matchRow(row AssessmentRow, cond filterexpr.Condition) bool {
	switch cond.Field {
	case "name":
		return cond.MatchString(row.Name)
	case "module":
		return cond.MatchString(row.ModuleName)
	case "year":
		return cond.MatchNumber(float64(row.YearNumber))
	case "weight":
		return cond.MatchNumber(row.Weight)
	case "grade":
		return row.Grade != nil && cond.MatchNumber(*row.Grade)
	case "completed":
		return cond.MatchBool(row.Completed)
	}
	return false
}

// compareRows orders two rows by key. Missing grades sort last in both directions.
func compareRows(key string, desc bool, a, b AssessmentRow) int {
	var c int
	switch key {
	case "year":
		c = cmp.Compare(a.YearNumber, b.YearNumber)
	case "module":
		c = strings.Compare(a.ModuleName, b.ModuleName)
	case "name":
		c = strings.Compare(a.Name, b.Name)
	case "weight":
		c = cmp.Compare(a.Weight, b.Weight)
	case "grade":
		switch {
		case a.Grade == nil && b.Grade == nil:
			return 0
		case a.Grade == nil:
			return 1
		case b.Grade == nil:
			return -1
		}
		c = cmp.Compare(*a.Grade, *b.Grade)
	default:
		c = cmp.Compare(a.Position, b.Position)
	}
	if desc {
		return -c
	}
	return c
}

// FlattenAssessments lists every assessment of the course in tree order.
func FlattenAssessments(c *entity.Course) []AssessmentRow {
	if c == nil {
		return nil
	}
	var rows []AssessmentRow
	for _, y := range c.Years {
		for _, m := range y.Modules {
			for _, a := range m.Assessments {
				rows = append(rows, AssessmentRow{
					Assessment: a.Clone(),
					YearID:     y.ID,
					YearLabel:  y.Label,
					YearNumber: y.YearNumber,
					ModuleID:   m.ID,
					ModuleName: m.Name,
					Position:   len(rows),
				})
			}
		}
	}
	return rows
}

// ListAssessments filters and orders the committed tree's assessments. It returns the
// requested page and the total number of matches.
func (t *courseTree) ListAssessments(query *repository.ListAssessmentQuery) ([]AssessmentRow, int, error) {
	if query == nil {
		return nil, 0, errors.New("list query required")
	}
	course, ok := t.Snapshot()
	if !ok {
		return nil, 0, entity.ErrCourseNotLoaded
	}

	if err := query.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", entity.ErrValidation, err)
	}
	q, err := filterexpr.Compile(query, AssessmentSchema)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", entity.ErrValidation, err)
	}

	rows := lo.Filter(FlattenAssessments(course), func(row AssessmentRow, _ int) bool {
		for _, cond := range q.Conditions {
			if !matchRow(row, cond) {
				return false
			}
		}
		return true
	})
	slices.SortStableFunc(rows, func(a, b AssessmentRow) int {
		for _, key := range q.Order {
			if c := compareRows(key.Field, key.Desc, a, b); c != 0 {
				return c
			}
		}
		return 0
	})

	total := len(rows)
	if query.PageSize <= 0 {
		return rows, total, nil
	}
	start := int(min(query.Offset(), int64(total)))
	end := min(start+int(query.PageSize), total)
	return rows[start:end], total, nil
}
