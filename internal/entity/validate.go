package entity

import (
	"math"
	"strings"
)

// MaxYearCount bounds the number of years generated for a new course.
const MaxYearCount = 10

func validPercentage(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// ValidateGrade checks an optional grade value.
func ValidateGrade(v *float64) error {
	if v != nil && !validPercentage(*v) {
		return ErrInvalidGrade
	}
	return nil
}

// ValidateTarget checks an optional target percentage.
func ValidateTarget(v *float64) error {
	if v != nil && !validPercentage(*v) {
		return ErrInvalidTarget
	}
	return nil
}

// ValidateWeight checks a percentage-style weight.
func ValidateWeight(v float64) error {
	if !validPercentage(v) {
		return ErrInvalidWeight
	}
	return nil
}

// ValidateCredits checks a module credit value.
func ValidateCredits(v int) error {
	if v <= 0 {
		return ErrInvalidCredits
	}
	return nil
}

// NormalizeName trims a user-supplied name and rejects blanks.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// Normalize validates the update and trims text fields in place.
func (u *CourseUpdate) Normalize() error {
	if u.Institution != nil {
		v := strings.TrimSpace(*u.Institution)
		u.Institution = &v
	}
	if u.Title != nil {
		v, err := NormalizeName(*u.Title)
		if err != nil {
			return err
		}
		u.Title = &v
	}
	return ValidateTarget(u.TargetGrade.Value)
}

func (u *YearUpdate) Normalize() error {
	if u.Label != nil {
		v, err := NormalizeName(*u.Label)
		if err != nil {
			return err
		}
		u.Label = &v
	}
	if u.YearNumber != nil && *u.YearNumber <= 0 {
		return ErrInvalidYearNum
	}
	if u.Weight != nil {
		if err := ValidateWeight(*u.Weight); err != nil {
			return err
		}
	}
	return ValidateTarget(u.TargetGrade.Value)
}

func (u *ModuleUpdate) Normalize() error {
	if u.Name != nil {
		v, err := NormalizeName(*u.Name)
		if err != nil {
			return err
		}
		u.Name = &v
	}
	if u.Credits != nil {
		if err := ValidateCredits(*u.Credits); err != nil {
			return err
		}
	}
	return ValidateTarget(u.TargetGrade.Value)
}

func (u *AssessmentUpdate) Normalize() error {
	if u.Name != nil {
		v, err := NormalizeName(*u.Name)
		if err != nil {
			return err
		}
		u.Name = &v
	}
	if u.Weight != nil {
		if err := ValidateWeight(*u.Weight); err != nil {
			return err
		}
	}
	return ValidateGrade(u.Grade.Value)
}

// Normalize validates a new course tree and trims its text fields in place.
func (c *Course) Normalize() error {
	if c.UserID == "" {
		return ErrInvalidUserID
	}
	c.Institution = strings.TrimSpace(c.Institution)
	title, err := NormalizeName(c.Title)
	if err != nil {
		return err
	}
	c.Title = title
	if err := ValidateTarget(c.TargetGrade); err != nil {
		return err
	}
	for i := range c.Years {
		if err := c.Years[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (y *AcademicYear) Normalize() error {
	label, err := NormalizeName(y.Label)
	if err != nil {
		return err
	}
	y.Label = label
	if y.YearNumber <= 0 {
		return ErrInvalidYearNum
	}
	if err := ValidateWeight(y.Weight); err != nil {
		return err
	}
	if err := ValidateTarget(y.TargetGrade); err != nil {
		return err
	}
	for i := range y.Modules {
		if err := y.Modules[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) Normalize() error {
	name, err := NormalizeName(m.Name)
	if err != nil {
		return err
	}
	m.Name = name
	if err := ValidateCredits(m.Credits); err != nil {
		return err
	}
	if err := ValidateTarget(m.TargetGrade); err != nil {
		return err
	}
	for i := range m.Assessments {
		if err := m.Assessments[i].Normalize(); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assessment) Normalize() error {
	name, err := NormalizeName(a.Name)
	if err != nil {
		return err
	}
	a.Name = name
	if err := ValidateWeight(a.Weight); err != nil {
		return err
	}
	return ValidateGrade(a.Grade)
}
