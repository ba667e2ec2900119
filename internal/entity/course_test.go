package entity

import "testing"

func ptr[T any](v T) *T { return &v }

func sampleCourse() *Course {
	return &Course{
		ID:          "c1",
		UserID:      "u1",
		Title:       "BSc",
		TargetGrade: ptr(70.0),
		Years: []AcademicYear{
			{ID: "y2", Label: "Year 2", YearNumber: 2, Weight: 40},
			{ID: "y1", Label: "Year 1", YearNumber: 1, Modules: []Module{{
				ID: "m1", Name: "Maths", Credits: 20,
				Assessments: []Assessment{{ID: "a1", Name: "Exam", Weight: 100, Grade: ptr(55.0), Completed: true}},
			}}},
			{ID: "y2b", Label: "Placement", YearNumber: 2},
		},
	}
}

func TestCloneIsDeep(t *testing.T) {
	c := sampleCourse()
	clone := c.Clone()

	*clone.TargetGrade = 10
	*clone.Years[1].Modules[0].Assessments[0].Grade = 99
	clone.Years[1].Modules[0].Name = "changed"

	if *c.TargetGrade != 70 || *c.Years[1].Modules[0].Assessments[0].Grade != 55 || c.Years[1].Modules[0].Name != "Maths" {
		t.Fatalf("clone shares state with the original: %+v", c)
	}
	if (*Course)(nil).Clone() != nil {
		t.Fatal("nil clone must stay nil")
	}
}

func TestSortYearsIsStable(t *testing.T) {
	c := sampleCourse()
	c.SortYears()
	got := []string{c.Years[0].ID, c.Years[1].ID, c.Years[2].ID}
	want := []string{"y1", "y2", "y2b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if n := c.NextYearNumber(); n != 3 {
		t.Fatalf("NextYearNumber = %d, want 3", n)
	}
	if n := (&Course{}).NextYearNumber(); n != 1 {
		t.Fatalf("empty course NextYearNumber = %d, want 1", n)
	}
}

func TestLocate(t *testing.T) {
	c := sampleCourse()
	cases := []struct {
		id       string
		year     string
		module   string
		wantKind EntityKind
	}{
		{"c1", "", "", KindCourse},
		{"y2", "y2", "", KindYear},
		{"m1", "y1", "m1", KindModule},
		{"a1", "y1", "m1", KindAssessment},
		{"nope", "", "", KindUnknown},
	}
	for _, tc := range cases {
		year, module, kind := c.Locate(tc.id)
		if year != tc.year || module != tc.module || kind != tc.wantKind {
			t.Errorf("Locate(%q) = (%q, %q, %s), want (%q, %q, %s)", tc.id, year, module, kind, tc.year, tc.module, tc.wantKind)
		}
	}
}

func TestRemoveCascades(t *testing.T) {
	c := sampleCourse()
	if _, ok := c.Assessment("y1", "m1", "a1"); !ok {
		t.Fatal("expected assessment to be addressable")
	}
	year, _ := c.Year("y1")
	module, _ := c.Module("y1", "m1")
	if !module.RemoveAssessment("a1") || module.RemoveAssessment("a1") {
		t.Fatal("RemoveAssessment must succeed once")
	}
	if !year.RemoveModule("m1") {
		t.Fatal("RemoveModule failed")
	}
	if !c.RemoveYear("y1") || len(c.Years) != 2 {
		t.Fatalf("RemoveYear failed: %+v", c.Years)
	}
	if total, _ := c.AssessmentCount(); total != 0 {
		t.Fatalf("expected no assessments left, got %d", total)
	}
}

func TestAssessmentCounts(t *testing.T) {
	cases := []struct {
		a    Assessment
		want bool
	}{
		{Assessment{Completed: true, Grade: ptr(40.0)}, true},
		{Assessment{Completed: false, Grade: ptr(40.0)}, false},
		{Assessment{Completed: true}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Counts(); got != tc.want {
			t.Errorf("Counts(%+v) = %v, want %v", tc.a, got, tc.want)
		}
	}
}
