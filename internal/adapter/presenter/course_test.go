package presenter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase"
	"github.com/eslsoft/gradebook/internal/usecase/grading"
)

func ptr(v float64) *float64 { return &v }

func TestPercentRoundsToOneDecimal(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "-"},
		{ptr(68), "68.0%"},
		{ptr(69.96), "70.0%"},
		{ptr(59.94), "59.9%"},
	}
	for _, c := range cases {
		if got := Percent(c.in); got != c.want {
			t.Errorf("Percent(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSwatch(t *testing.T) {
	if got := Swatch("#16A34A"); got != "\x1b[38;2;22;163;74m■\x1b[0m" {
		t.Fatalf("unexpected swatch %q", got)
	}
	if got := Swatch("nope"); got != "■" {
		t.Fatalf("expected plain block for malformed colour, got %q", got)
	}
}

func sampleReport() *grading.CourseReport {
	course := &entity.Course{
		ID:          "c1",
		Institution: "Open University",
		Title:       "BSc Computing",
		TargetGrade: ptr(70),
		Years: []entity.AcademicYear{
			{ID: "y1", Label: "Year 1", YearNumber: 1, Weight: 0},
			{ID: "y2", Label: "Year 2", YearNumber: 2, Weight: 100, Modules: []entity.Module{{
				ID: "m1", Name: "Databases", Credits: 20, TargetGrade: ptr(70),
				Assessments: []entity.Assessment{
					{ID: "a1", Name: "Coursework", Weight: 40, Grade: ptr(64.26), Completed: true},
					{ID: "a2", Name: "Exam", Weight: 60},
				},
			}}},
		},
	}
	return grading.BuildReport(course, grading.UKHonours)
}

func TestRenderCourse(t *testing.T) {
	var buf bytes.Buffer
	RenderCourse(&buf, sampleReport(), Options{})
	out := buf.String()

	for _, want := range []string{"BSc Computing", "64.3%", "2:1", "Databases", "1/2", "no modules", "below"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("colour codes must only appear with Color set")
	}
}

func TestRenderCourseColor(t *testing.T) {
	var buf bytes.Buffer
	RenderCourse(&buf, sampleReport(), Options{Color: true, Dark: true})
	if !strings.Contains(buf.String(), Swatch(grading.ColorFor(grading.NotAvailable, true))) {
		t.Fatalf("expected dark neutral swatch for the empty year:\n%s", buf.String())
	}
}

func TestRenderCourseEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderCourse(&buf, nil, Options{})
	if !strings.Contains(buf.String(), "No course yet") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRenderAssessments(t *testing.T) {
	rows := []usecase.AssessmentRow{{
		Assessment: entity.Assessment{ID: "a1", Name: "Exam", Weight: 60, Grade: ptr(71), Completed: true},
		YearLabel:  "Year 2",
		ModuleName: "Databases",
	}}
	var buf bytes.Buffer
	RenderAssessments(&buf, rows, 1)
	out := buf.String()
	for _, want := range []string{"Exam", "60.0%", "71.0%", "yes", "a1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
