/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/gradebook/internal/adapter/presenter"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/repository"
	"github.com/eslsoft/gradebook/internal/usecase"
)

var assessmentCmd = &cobra.Command{
	Use:     "assessment",
	Aliases: []string{"assess"},
	Short:   "Manage the assessments of a module",
}

var assessmentAddCmd = &cobra.Command{
	Use:   "add <year-id> <module-id>",
	Short: "Add a weighted assessment to a module",
	Args:  cobra.ExactArgs(2),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		name, _ := cmd.Flags().GetString("name")
		weight, _ := cmd.Flags().GetFloat64("weight")
		assessment, err := tree.AddAssessment(cmd.Context(), args[0], args[1], name, weight)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", assessment.ID, assessment.Name)
		return nil
	}),
}

var assessmentUpdateCmd = &cobra.Command{
	Use:   "update <year-id> <module-id> <assessment-id>",
	Short: "Change an assessment's name, weight, grade or completion",
	Args:  cobra.ExactArgs(3),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		update := entity.AssessmentUpdate{
			Name:      changedString(cmd, "name"),
			Weight:    changedFloat(cmd, "weight"),
			Completed: changedBool(cmd, "completed"),
		}
		clearGrade, _ := cmd.Flags().GetBool("clear-grade")
		switch grade := changedFloat(cmd, "grade"); {
		case clearGrade && grade != nil:
			return fmt.Errorf("--grade and --clear-grade are mutually exclusive")
		case clearGrade:
			update.Grade = entity.Clear[float64]()
		case grade != nil:
			update.Grade = entity.SetTo(*grade)
		}
		if update.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name, --weight, --grade, --clear-grade or --completed")
		}
		return tree.UpdateAssessment(cmd.Context(), args[0], args[1], args[2], update)
	}),
}

var assessmentRemoveCmd = &cobra.Command{
	Use:     "remove <year-id> <module-id> <assessment-id>",
	Aliases: []string{"rm"},
	Short:   "Remove an assessment",
	Args:    cobra.ExactArgs(3),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		return tree.RemoveAssessment(cmd.Context(), args[0], args[1], args[2])
	}),
}

var assessmentGradeCmd = &cobra.Command{
	Use:   "grade <year-id> <module-id> <assessment-id> <percentage>",
	Short: "Record a grade and mark the assessment completed",
	Args:  cobra.ExactArgs(4),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		grade, err := parsePercent(args[3])
		if err != nil {
			return err
		}
		return tree.RecordGrade(cmd.Context(), args[0], args[1], args[2], grade)
	}),
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessments across the course",
	Example: `  gradebook assessment list --filter 'completed == false && weight >= 20'
  gradebook assessment list --filter 'module in ["Databases", "Networks"]' --order-by 'grade desc'`,
	Args: cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		page, _ := cmd.Flags().GetInt32("page")
		pageSize, _ := cmd.Flags().GetInt32("page-size")

		rows, total, err := tree.ListAssessments(&repository.ListAssessmentQuery{
			Pagination:  repository.Pagination{PageNo: page, PageSize: pageSize},
			FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
		})
		if err != nil {
			return err
		}
		presenter.RenderAssessments(cmd.OutOrStdout(), rows, total)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(assessmentCmd)
	assessmentCmd.AddCommand(assessmentAddCmd, assessmentUpdateCmd, assessmentRemoveCmd, assessmentGradeCmd, assessmentListCmd)

	assessmentAddCmd.Flags().String("name", "", "assessment name")
	assessmentAddCmd.Flags().Float64("weight", 0, "share of the module grade, in percent")
	_ = assessmentAddCmd.MarkFlagRequired("name")

	assessmentUpdateCmd.Flags().String("name", "", "assessment name")
	assessmentUpdateCmd.Flags().Float64("weight", 0, "share of the module grade, in percent")
	assessmentUpdateCmd.Flags().Float64("grade", 0, "grade in percent")
	assessmentUpdateCmd.Flags().Bool("clear-grade", false, "remove the recorded grade")
	assessmentUpdateCmd.Flags().Bool("completed", false, "mark the assessment completed (--completed=false to reopen)")

	assessmentListCmd.Flags().String("filter", "", "CEL filter over name, module, year, weight, grade and completed")
	assessmentListCmd.Flags().String("order-by", "", "comma separated keys with optional asc/desc")
	assessmentListCmd.Flags().Int32("page", 1, "page number")
	assessmentListCmd.Flags().Int32("page-size", 0, "rows per page (0 lists everything)")
}
