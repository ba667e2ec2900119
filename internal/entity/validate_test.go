package entity

import (
	"errors"
	"math"
	"testing"
)

func TestPercentageValidation(t *testing.T) {
	cases := []struct {
		v    float64
		want bool
	}{
		{0, true},
		{100, true},
		{55.5, true},
		{-0.1, false},
		{100.01, false},
		{math.NaN(), false},
	}
	for _, tc := range cases {
		if err := ValidateGrade(&tc.v); (err == nil) != tc.want {
			t.Errorf("ValidateGrade(%v) = %v", tc.v, err)
		}
		if err := ValidateWeight(tc.v); (err == nil) != tc.want {
			t.Errorf("ValidateWeight(%v) = %v", tc.v, err)
		}
	}
	if err := ValidateGrade(nil); err != nil {
		t.Fatalf("nil grade must be valid: %v", err)
	}
}

func TestValidationErrorsAreCategorized(t *testing.T) {
	for _, err := range []error{ErrInvalidGrade, ErrInvalidTarget, ErrInvalidWeight, ErrInvalidCredits, ErrInvalidName, ErrInvalidYearNum} {
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%v is not a validation error", err)
		}
	}
	if !errors.Is(ErrCourseExists, ErrConflict) || !errors.Is(ErrModuleNotFound, ErrNotFound) {
		t.Fatal("conflict and not-found errors must wrap their category")
	}
}

func TestCourseNormalize(t *testing.T) {
	c := &Course{
		UserID:      "u1",
		Institution: "  Open University ",
		Title:       " BSc ",
		Years: []AcademicYear{{
			Label: " Year 1 ", YearNumber: 1, Weight: 20,
			Modules: []Module{{Name: " Maths ", Credits: 20, Assessments: []Assessment{{Name: " Exam ", Weight: 100}}}},
		}},
	}
	if err := c.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if c.Institution != "Open University" || c.Title != "BSc" || c.Years[0].Label != "Year 1" ||
		c.Years[0].Modules[0].Name != "Maths" || c.Years[0].Modules[0].Assessments[0].Name != "Exam" {
		t.Fatalf("text not trimmed: %+v", c)
	}

	bad := []struct {
		name string
		mut  func(*Course)
		want error
	}{
		{"no user", func(c *Course) { c.UserID = "" }, ErrInvalidUserID},
		{"blank title", func(c *Course) { c.Title = "  " }, ErrInvalidName},
		{"target", func(c *Course) { c.TargetGrade = ptr(101.0) }, ErrInvalidTarget},
		{"year number", func(c *Course) { c.Years[0].YearNumber = 0 }, ErrInvalidYearNum},
		{"credits", func(c *Course) { c.Years[0].Modules[0].Credits = 0 }, ErrInvalidCredits},
		{"grade", func(c *Course) { c.Years[0].Modules[0].Assessments[0].Grade = ptr(-1.0) }, ErrInvalidGrade},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			c := c.Clone()
			tc.mut(c)
			if err := c.Normalize(); !errors.Is(err, tc.want) {
				t.Fatalf("Normalize() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUpdateNormalize(t *testing.T) {
	u := YearUpdate{Label: ptr("  Final year "), Weight: ptr(60.0)}
	if err := u.Normalize(); err != nil || *u.Label != "Final year" {
		t.Fatalf("Normalize() = %v, label %q", err, *u.Label)
	}
	if err := (&YearUpdate{YearNumber: ptr(0)}).Normalize(); !errors.Is(err, ErrInvalidYearNum) {
		t.Fatalf("expected ErrInvalidYearNum, got %v", err)
	}
	if err := (&ModuleUpdate{TargetGrade: SetTo(120.0)}).Normalize(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if err := (&AssessmentUpdate{Grade: Clear[float64]()}).Normalize(); err != nil {
		t.Fatalf("clearing a grade must be valid: %v", err)
	}
}
