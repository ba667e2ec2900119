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
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/gradebook/internal/adapter/presenter"
	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase/backup"
)

// stdio selects stdin or stdout instead of a backup file.
const stdio = "-"

// closers closes backup layers innermost first.
type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i].Close())
	}
	return errors.Join(errs...)
}

// compressed reports whether a backup at path is gzip encoded. A .gz suffix implies it.
func compressed(path string, flag bool) bool {
	return flag || (path != stdio && strings.EqualFold(filepath.Ext(path), ".gz"))
}

func createBackup(cmd *cobra.Command, path string, gz bool) (io.Writer, closers, error) {
	var (
		w  = cmd.OutOrStdout()
		cs closers
	)
	if path != stdio {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create backup file: %w", err)
		}
		w, cs = f, append(cs, f)
	}
	if gz {
		zw := gzip.NewWriter(w)
		w, cs = zw, append(cs, zw)
	}
	return w, cs, nil
}

func openBackup(cmd *cobra.Command, path string, gz bool) (io.Reader, closers, error) {
	var (
		r  = cmd.InOrStdin()
		cs closers
	)
	if path != stdio {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open backup file: %w", err)
		}
		r, cs = f, append(cs, f)
	}
	if gz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			_ = cs.Close()
			return nil, nil, fmt.Errorf("open gzip reader: %w", err)
		}
		r, cs = zr, append(cs, zr)
	}
	return r, cs, nil
}

// recordTally counts exported records per type.
type recordTally struct {
	order  []string
	counts map[string]int
}

func newRecordTally() *recordTally {
	return &recordTally{counts: make(map[string]int)}
}

func (t *recordTally) StartTable(table string, _ int) {
	t.order = append(t.order, table)
}

func (t *recordTally) Increment(table string, delta int) {
	t.counts[table] += delta
}

func (t *recordTally) FinishTable(string) {}

func (t *recordTally) rows() []presenter.RecordCount {
	out := make([]presenter.RecordCount, 0, len(t.order))
	for _, typ := range t.order {
		out = append(out, presenter.RecordCount{Type: typ, Rows: t.counts[typ]})
	}
	return out
}

// courseRecords counts the records a course occupies in a backup.
func courseRecords(c *entity.Course) []presenter.RecordCount {
	var modules, assessments int
	for _, y := range c.Years {
		modules += len(y.Modules)
		for _, m := range y.Modules {
			assessments += len(m.Assessments)
		}
	}
	return []presenter.RecordCount{
		{Type: backup.TypeCourse, Rows: 1},
		{Type: backup.TypeYear, Rows: len(c.Years)},
		{Type: backup.TypeModule, Rows: modules},
		{Type: backup.TypeAssessment, Rows: assessments},
	}
}
