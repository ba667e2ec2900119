package usecase

import (
	"context"
	"fmt"

	"github.com/eslsoft/gradebook/internal/entity"
)

// RestoreCourse replays a complete course tree into an empty tree through its public
// operations, so the target store assigns fresh ids. Grades and completion flags are
// restored as stored, independently of each other.
func RestoreCourse(ctx context.Context, tree CourseTree, src *entity.Course) (*entity.Course, error) {
	if src == nil {
		return nil, entity.ErrCourseNotFound
	}
	if _, err := tree.CreateCourse(ctx, src.Institution, src.Title, 0); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	if src.TargetGrade != nil {
		if err := tree.SetCourseTarget(ctx, src.TargetGrade); err != nil {
			return nil, fmt.Errorf("course target: %w", err)
		}
	}

	for _, y := range src.Years {
		year, err := tree.AddYear(ctx, y.Label, y.Weight)
		if err != nil {
			return nil, fmt.Errorf("add year %q: %w", y.Label, err)
		}
		update := entity.YearUpdate{TargetGrade: entity.FromPtr(y.TargetGrade)}
		if y.YearNumber > 0 && y.YearNumber != year.YearNumber {
			update.YearNumber = &y.YearNumber
		}
		if err := tree.UpdateYear(ctx, year.ID, update); err != nil {
			return nil, fmt.Errorf("update year %q: %w", y.Label, err)
		}

		for _, m := range y.Modules {
			module, err := tree.AddModule(ctx, year.ID, m.Name, m.Credits)
			if err != nil {
				return nil, fmt.Errorf("add module %q: %w", m.Name, err)
			}
			if m.TargetGrade != nil {
				if err := tree.SetModuleTarget(ctx, year.ID, module.ID, m.TargetGrade); err != nil {
					return nil, fmt.Errorf("module target %q: %w", m.Name, err)
				}
			}

			for _, a := range m.Assessments {
				assessment, err := tree.AddAssessment(ctx, year.ID, module.ID, a.Name, a.Weight)
				if err != nil {
					return nil, fmt.Errorf("add assessment %q: %w", a.Name, err)
				}
				if a.Grade == nil && !a.Completed {
					continue
				}
				completed := a.Completed
				update := entity.AssessmentUpdate{Grade: entity.FromPtr(a.Grade), Completed: &completed}
				if err := tree.UpdateAssessment(ctx, year.ID, module.ID, assessment.ID, update); err != nil {
					return nil, fmt.Errorf("update assessment %q: %w", a.Name, err)
				}
			}
		}
	}

	restored, _ := tree.Snapshot()
	return restored, nil
}
