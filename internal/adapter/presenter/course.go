// Package presenter renders course reports for the terminal. It is the only place
// where grades are rounded.
package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

// Options controls colour output.
type Options struct {
	// Dark selects the dark neutral tone for grades that are not available yet.
	Dark bool
	// Color prefixes classifications with an ANSI true-colour swatch.
	Color bool
}

// Percent formats a grade to one decimal place, or "-" when there is none.
func Percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "%"
}

func weight(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func (o Options) classification(c grading.Classification) string {
	label := c.Label()
	if !o.Color {
		return label
	}
	return Swatch(grading.ColorFor(c, o.Dark)) + " " + label
}

func target(p grading.TargetProgress) string {
	switch p.Status {
	case grading.TargetNone:
		return "-"
	case grading.TargetPending:
		return Percent(p.Target) + " (pending)"
	default:
		gap := strconv.FormatFloat(*p.Gap, 'f', 1, 64)
		if *p.Gap >= 0 {
			gap = "+" + gap
		}
		return fmt.Sprintf("%s (%s, %s)", Percent(p.Target), p.Status, gap)
	}
}

// Swatch renders a coloured block for a "#RRGGBB" colour. Malformed colours render
// as a plain block.
func Swatch(c grading.Color) string {
	hex := strings.TrimPrefix(string(c), "#")
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if len(hex) != 6 || err != nil {
		return "■"
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm■\x1b[0m", rgb>>16&0xff, rgb>>8&0xff, rgb&0xff)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// RenderCourse writes the course summary followed by one table per academic year.
func RenderCourse(w io.Writer, report *grading.CourseReport, opts Options) {
	if report == nil {
		fmt.Fprintln(w, "No course yet. Create one with `gradebook course create`.")
		return
	}

	summary := newTable(w, "Course", "Institution", "Grade", "Class", "Target", "Completion")
	summary.Append([]string{
		report.Title,
		report.Institution,
		Percent(report.Grade),
		opts.classification(report.Classification),
		target(report.Target),
		fmt.Sprintf("%d%%", report.Completion),
	})
	summary.Render()

	for _, y := range report.Years {
		fmt.Fprintf(w, "\n%s (year %d, weight %s): %s %s\n",
			y.Label, y.YearNumber, weight(y.Weight), Percent(y.Grade), opts.classification(y.Classification))
		if y.Target.Status != grading.TargetNone {
			fmt.Fprintf(w, "target %s\n", target(y.Target))
		}
		if len(y.Modules) == 0 {
			fmt.Fprintln(w, "  no modules")
			continue
		}
		modules := newTable(w, "Module", "Credits", "Grade", "Class", "Target", "Needed", "Done")
		for _, m := range y.Modules {
			modules.Append([]string{
				m.Name,
				strconv.Itoa(m.Credits),
				Percent(m.Grade),
				opts.classification(m.Classification),
				target(m.Target),
				Percent(m.RequiredAverage),
				fmt.Sprintf("%d/%d", m.Completed, m.Total),
			})
		}
		modules.Render()
	}
}

// RenderAssessments writes a flattened assessment listing.
func RenderAssessments(w io.Writer, rows []usecase.AssessmentRow, total int) {
	table := newTable(w, "Year", "Module", "Assessment", "Weight", "Grade", "Done", "ID")
	for _, r := range rows {
		done := "no"
		if r.Completed {
			done = "yes"
		}
		table.Append([]string{
			r.YearLabel,
			r.ModuleName,
			r.Name,
			weight(r.Weight),
			Percent(r.Grade),
			done,
			r.ID,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "total", strconv.Itoa(total)})
	table.Render()
}
