package grading

import (
	"math"

	"github.com/samber/lo"

	"github.com/eslsoft/gradebook/internal/entity"
)

// ModuleGrade is the weight-normalized average of the module's completed and graded
// assessments. Partial completion is averaged over the weight actually graded, so an
// unfinished module is not biased toward zero.
func ModuleGrade(m entity.Module) *float64 {
	graded := lo.Filter(m.Assessments, func(a entity.Assessment, _ int) bool { return a.Counts() })
	if len(graded) == 0 {
		return nil
	}
	totalWeight := lo.SumBy(graded, func(a entity.Assessment) float64 { return a.Weight })
	if totalWeight == 0 {
		return nil
	}
	weightedSum := lo.SumBy(graded, func(a entity.Assessment) float64 { return *a.Grade * a.Weight / 100 })
	grade := weightedSum / totalWeight * 100
	return &grade
}

// YearGrade is the credit-weighted mean of the year's graded modules.
func YearGrade(y entity.AcademicYear) *float64 {
	var sum, credits float64
	for _, m := range y.Modules {
		grade := ModuleGrade(m)
		if grade == nil {
			continue
		}
		sum += *grade * float64(m.Credits)
		credits += float64(m.Credits)
	}
	if credits == 0 {
		return nil
	}
	grade := sum / credits
	return &grade
}

// CourseGrade is the year-weight-weighted mean of the course's graded years.
func CourseGrade(c *entity.Course) *float64 {
	if c == nil {
		return nil
	}
	var sum, weights float64
	for _, y := range c.Years {
		grade := YearGrade(y)
		if grade == nil {
			continue
		}
		sum += *grade * y.Weight
		weights += y.Weight
	}
	if weights == 0 {
		return nil
	}
	grade := sum / weights
	return &grade
}

// CompletionPercentage is the share of completed assessments across the tree, rounded
// to the nearest integer. An empty tree is 0% complete.
func CompletionPercentage(c *entity.Course) int {
	if c == nil {
		return 0
	}
	total, completed := c.AssessmentCount()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// RequiredAverage is the mark needed across the module's outstanding assessment weight
// for the module to finish at target, measured against the module's total weight.
// The result can exceed 100 (target out of reach) or drop below 0 (already secured).
// It is nil when no weight is outstanding or the module carries no weight.
func RequiredAverage(m entity.Module, target float64) *float64 {
	var total, remaining, secured float64
	for _, a := range m.Assessments {
		total += a.Weight
		if a.Counts() {
			secured += *a.Grade * a.Weight
			continue
		}
		remaining += a.Weight
	}
	if total == 0 || remaining == 0 {
		return nil
	}
	needed := (target*total - secured) / remaining
	return &needed
}
