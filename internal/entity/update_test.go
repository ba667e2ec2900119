package entity

import (
	"encoding/json"
	"testing"
)

type gradePatch struct {
	Grade Nullable[float64] `json:"grade,omitzero"`
}

func TestNullableJSON(t *testing.T) {
	cases := []struct {
		name  string
		patch gradePatch
		want  string
	}{
		{"absent", gradePatch{}, `{}`},
		{"cleared", gradePatch{Grade: Clear[float64]()}, `{"grade":null}`},
		{"set", gradePatch{Grade: SetTo(72.5)}, `{"grade":72.5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.patch)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("marshal = %s, want %s", data, tc.want)
			}

			var back gradePatch
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if back.Grade.Set != tc.patch.Grade.Set {
				t.Fatalf("Set = %v, want %v", back.Grade.Set, tc.patch.Grade.Set)
			}
			if (back.Grade.Value == nil) != (tc.patch.Grade.Value == nil) {
				t.Fatalf("Value = %v, want %v", back.Grade.Value, tc.patch.Grade.Value)
			}
		})
	}
}

func TestAssessmentUpdateKeepsGradeAndCompletionIndependent(t *testing.T) {
	a := Assessment{Name: "Exam", Grade: ptr(60.0), Completed: true}

	AssessmentUpdate{Completed: ptr(false)}.Apply(&a)
	if a.Grade == nil || *a.Grade != 60 || a.Completed {
		t.Fatalf("completion change touched the grade: %+v", a)
	}

	AssessmentUpdate{Grade: Clear[float64]()}.Apply(&a)
	if a.Grade != nil || a.Completed {
		t.Fatalf("clearing the grade touched completion: %+v", a)
	}

	AssessmentUpdate{Grade: SetTo(75.0)}.Apply(&a)
	if a.Grade == nil || *a.Grade != 75 {
		t.Fatalf("grade not set: %+v", a)
	}
}

func TestFromPtr(t *testing.T) {
	if n := FromPtr[float64](nil); !n.Set || n.Value != nil {
		t.Fatalf("nil must clear, got %+v", n)
	}
	v := 10.0
	n := FromPtr(&v)
	v = 20
	if !n.Set || *n.Value != 10 {
		t.Fatalf("FromPtr must copy the value, got %+v", n)
	}
}

func TestUpdateIsEmpty(t *testing.T) {
	if !(CourseUpdate{}).IsEmpty() || !(YearUpdate{}).IsEmpty() || !(ModuleUpdate{}).IsEmpty() || !(AssessmentUpdate{}).IsEmpty() {
		t.Fatal("zero updates must be empty")
	}
	if (CourseUpdate{TargetGrade: Clear[float64]()}).IsEmpty() {
		t.Fatal("clearing a target is a change")
	}
}
