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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/gradebook/internal/adapter/presenter"
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/backup"
)

const (
	importInputKey   = "backup.import.input"
	importGzipKey    = "backup.import.gzip"
	importReplaceKey = "backup.import.replace"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore the course from an NDJSON backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (err error) {
		path := viper.GetString(importInputKey)
		if path == "" {
			return errors.New("pass a backup file with --input, or - for stdin")
		}

		r, cs, err := openBackup(cmd, path, compressed(path, viper.GetBool(importGzipKey)))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cs.Close(); err == nil {
				err = cerr
			}
		}()

		return withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) error {
			course, err := backup.NewService(tree).Import(cmd.Context(), r, backup.WithReplace(viper.GetBool(importReplaceKey)))
			if err != nil {
				return fmt.Errorf("import backup: %w", err)
			}
			presenter.RenderRecordCounts(cmd.ErrOrStderr(), courseRecords(course))
			fmt.Fprintf(cmd.OutOrStdout(), "imported course %s (%s)\n", course.ID, course.Title)
			return nil
		})(cmd, nil)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().Bool("replace", false, "discard the current course before importing")

	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importReplaceKey, importCmd.Flags().Lookup("replace"))
}
