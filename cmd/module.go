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

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage the modules of a year",
}

var moduleAddCmd = &cobra.Command{
	Use:   "add <year-id>",
	Short: "Add a module to a year",
	Args:  cobra.ExactArgs(1),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		name, _ := cmd.Flags().GetString("name")
		credits, _ := cmd.Flags().GetInt("credits")
		module, err := tree.AddModule(cmd.Context(), args[0], name, credits)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", module.ID, module.Name)
		return nil
	}),
}

var moduleUpdateCmd = &cobra.Command{
	Use:   "update <year-id> <module-id>",
	Short: "Rename a module or change its credits",
	Args:  cobra.ExactArgs(2),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		update := entity.ModuleUpdate{
			Name:    changedString(cmd, "name"),
			Credits: changedInt(cmd, "credits"),
		}
		if update.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name or --credits")
		}
		return tree.UpdateModule(cmd.Context(), args[0], args[1], update)
	}),
}

var moduleRemoveCmd = &cobra.Command{
	Use:     "remove <year-id> <module-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a module with its assessments",
	Args:    cobra.ExactArgs(2),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		return tree.RemoveModule(cmd.Context(), args[0], args[1])
	}),
}

var moduleTargetCmd = &cobra.Command{
	Use:   "target <year-id> <module-id> [percentage]",
	Short: "Set or clear a module's target grade",
	Args:  cobra.RangeArgs(2, 3),
	RunE: withTree(func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error {
		target, err := targetArg(cmd, args, 2)
		if err != nil {
			return err
		}
		return tree.SetModuleTarget(cmd.Context(), args[0], args[1], target)
	}),
}

func init() {
	rootCmd.AddCommand(moduleCmd)
	moduleCmd.AddCommand(moduleAddCmd, moduleUpdateCmd, moduleRemoveCmd, moduleTargetCmd)

	moduleAddCmd.Flags().String("name", "", "module name")
	moduleAddCmd.Flags().Int("credits", entity.DefaultModuleCredits, "credit value")
	_ = moduleAddCmd.MarkFlagRequired("name")

	moduleUpdateCmd.Flags().String("name", "", "module name")
	moduleUpdateCmd.Flags().Int("credits", 0, "credit value")

	addTargetFlags(moduleTargetCmd)
}
