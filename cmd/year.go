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

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase"
)

var yearCmd = &cobra.Command{
	Use:   "year",
	Short: "Manage academic years",
}

var yearAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an academic year",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
		label, _ := cmd.Flags().GetString("label")
		weight, _ := cmd.Flags().GetFloat64("weight")
		year, err := tree.AddYear(cmd.Context(), label, weight)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", year.ID, year.Label)
		return nil
	}),
}

var yearUpdateCmd = &cobra.Command{
	Use:   "update <year-id>",
	Short: "Change a year's label, number or weight",
	Args:  cobra.ExactArgs(1),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		update := entity.YearUpdate{
			Label:      changedString(cmd, "label"),
			YearNumber: changedInt(cmd, "number"),
			Weight:     changedFloat(cmd, "weight"),
		}
		if update.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --label, --number or --weight")
		}
		return tree.UpdateYear(cmd.Context(), args[0], update)
	}),
}

var yearRemoveCmd = &cobra.Command{
	Use:     "remove <year-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a year with its modules",
	Args:    cobra.ExactArgs(1),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		return tree.RemoveYear(cmd.Context(), args[0])
	}),
}

var yearTargetCmd = &cobra.Command{
	Use:   "target <year-id> [percentage]",
	Short: "Set or clear a year's target grade",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		target, err := targetArg(cmd, args, 1)
		if err != nil {
			return err
		}
		return tree.SetYearTarget(cmd.Context(), args[0], target)
	}),
}

func init() {
	rootCmd.AddCommand(yearCmd)
	yearCmd.AddCommand(yearAddCmd, yearUpdateCmd, yearRemoveCmd, yearTargetCmd)

	yearAddCmd.Flags().String("label", "", "display label (default \"Year N\")")
	yearAddCmd.Flags().Float64("weight", 0, "contribution to the course grade, in percent")

	yearUpdateCmd.Flags().String("label", "", "display label")
	yearUpdateCmd.Flags().Int("number", 0, "year number used for ordering")
	yearUpdateCmd.Flags().Float64("weight", 0, "contribution to the course grade, in percent")

	addTargetFlags(yearTargetCmd)
}
