package entity

import (
	"bytes"
	"encoding/json"
)

// Nullable is a tri-state optional value used by partial updates: absent (leave the
// stored value alone), cleared (store null) or set.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a Nullable that stores v.
func SetTo[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Clear returns a Nullable that stores null.
func Clear[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// FromPtr maps nil to Clear and anything else to SetTo.
func FromPtr[T any](v *T) Nullable[T] {
	if v == nil {
		return Clear[T]()
	}
	return SetTo(*v)
}

// IsZero reports whether the value is absent. encoding/json uses it for omitzero.
func (n Nullable[T]) IsZero() bool { return !n.Set }

// MarshalJSON renders a cleared value as null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// UnmarshalJSON treats an explicit null as Clear. Absent keys never reach here and
// stay unset.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) apply(dst **T) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}

// CourseUpdate is a partial update of course-level fields.
type CourseUpdate struct {
	Institution *string
	Title       *string
	TargetGrade Nullable[float64]
}

// IsEmpty reports whether the update carries no field.
func (u CourseUpdate) IsEmpty() bool {
	return u.Institution == nil && u.Title == nil && !u.TargetGrade.Set
}

// Apply writes the provided fields onto c.
func (u CourseUpdate) Apply(c *Course) {
	if u.Institution != nil {
		c.Institution = *u.Institution
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	u.TargetGrade.apply(&c.TargetGrade)
}

// YearUpdate is a partial update of an academic year.
type YearUpdate struct {
	Label       *string
	YearNumber  *int
	Weight      *float64
	TargetGrade Nullable[float64]
}

func (u YearUpdate) IsEmpty() bool {
	return u.Label == nil && u.YearNumber == nil && u.Weight == nil && !u.TargetGrade.Set
}

func (u YearUpdate) Apply(y *AcademicYear) {
	if u.Label != nil {
		y.Label = *u.Label
	}
	if u.YearNumber != nil {
		y.YearNumber = *u.YearNumber
	}
	if u.Weight != nil {
		y.Weight = *u.Weight
	}
	u.TargetGrade.apply(&y.TargetGrade)
}

// ModuleUpdate is a partial update of a module.
type ModuleUpdate struct {
	Name        *string
	Credits     *int
	TargetGrade Nullable[float64]
}

func (u ModuleUpdate) IsEmpty() bool {
	return u.Name == nil && u.Credits == nil && !u.TargetGrade.Set
}

func (u ModuleUpdate) Apply(m *Module) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Credits != nil {
		m.Credits = *u.Credits
	}
	u.TargetGrade.apply(&m.TargetGrade)
}

// AssessmentUpdate is a partial update of an assessment. Grade and Completed are
// independent: setting one never touches the other.
type AssessmentUpdate struct {
	Name      *string
	Weight    *float64
	Grade     Nullable[float64]
	Completed *bool
}

func (u AssessmentUpdate) IsEmpty() bool {
	return u.Name == nil && u.Weight == nil && !u.Grade.Set && u.Completed == nil
}

func (u AssessmentUpdate) Apply(a *Assessment) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Weight != nil {
		a.Weight = *u.Weight
	}
	u.Grade.apply(&a.Grade)
	if u.Completed != nil {
		a.Completed = *u.Completed
	}
}
