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
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Create, inspect and change the course",
}

var courseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the course with default academic years",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		institution, _ := cmd.Flags().GetString("institution")
		title, _ := cmd.Flags().GetString("title")
		years, _ := cmd.Flags().GetInt("years")

		course, err := tree.CreateCourse(cmd.Context(), institution, title, years)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created course %s\n", course.ID)
		for _, y := range course.Years {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (weight %g%%)\n", y.ID, y.Label, y.Weight)
		}
		return nil
	}),
}

var courseShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show grades, classifications and targets",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		dark, _ := cmd.Flags().GetBool("dark")
		color, _ := cmd.Flags().GetBool("color")
		presenter.RenderCourse(cmd.OutOrStdout(), tree.Report(grading.UKHonours), presenter.Options{Dark: dark, Color: color})
		return nil
	}),
}

var courseUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the institution or title",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		update := entity.CourseUpdate{
			Institution: changedString(cmd, "institution"),
			Title:       changedString(cmd, "title"),
		}
		if update.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --institution or --title")
		}
		return tree.UpdateCourseInfo(cmd.Context(), update)
	}),
}

var courseDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the course and everything in it",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		if err := tree.DeleteCourse(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "course deleted")
		return nil
	}),
}

var courseResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the course so a new one can be created",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		if err := tree.ResetCourse(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "course reset")
		return nil
	}),
}

var courseTargetCmd = &cobra.Command{
	Use:   "target [percentage]",
	Short: "Set or clear the overall target grade",
	Args:  cobra.MaximumNArgs(1),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		target, err := targetArg(cmd, args, 0)
		if err != nil {
			return err
		}
		return tree.SetCourseTarget(cmd.Context(), target)
	}),
}

func init() {
	rootCmd.AddCommand(courseCmd)
	courseCmd.AddCommand(courseCreateCmd, courseShowCmd, courseUpdateCmd, courseDeleteCmd, courseResetCmd, courseTargetCmd)

	courseCreateCmd.Flags().String("institution", "", "awarding institution")
	courseCreateCmd.Flags().String("title", "", "course title")
	courseCreateCmd.Flags().Int("years", 3, "number of academic years to create")
	_ = courseCreateCmd.MarkFlagRequired("title")

	courseShowCmd.Flags().Bool("dark", false, "use the dark-mode neutral colour")
	courseShowCmd.Flags().Bool("color", false, "print classification colour swatches")

	courseUpdateCmd.Flags().String("institution", "", "awarding institution")
	courseUpdateCmd.Flags().String("title", "", "course title")

	addTargetFlags(courseTargetCmd)
}
