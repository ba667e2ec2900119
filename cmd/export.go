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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/gradebook/internal/adapter/presenter"
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the course as an NDJSON backup",
	Args:  cobra.NoArgs,
	RunE: withTree(func(cmd *cobra.Command, _ []string, tree usecase.CourseTree) (err error) {
		path := viper.GetString(exportOutputKey)
		if path == "" {
			path = backupFilename(time.Now(), viper.GetBool(exportGzipKey))
		}

		w, cs, err := createBackup(cmd, path, compressed(path, viper.GetBool(exportGzipKey)))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cs.Close(); err == nil {
				err = cerr
			}
		}()

		tally := newRecordTally()
		if err := backup.NewService(tree).Export(cmd.Context(), w, backup.WithProgressReporter(tally)); err != nil {
			return fmt.Errorf("export backup: %w", err)
		}

		presenter.RenderRecordCounts(cmd.ErrOrStderr(), tally.rows())
		if path != stdio {
			fmt.Fprintf(cmd.ErrOrStderr(), "export complete: %s\n", path)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
}

// backupFilename names a backup after the UTC time it was taken.
func backupFilename(now time.Time, gz bool) string {
	name := "gradebook-backup-" + now.UTC().Format("20060102-150405") + ".jsonl"
	if gz {
		name += ".gz"
	}
	return name
}
