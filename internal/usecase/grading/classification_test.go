package grading

import "testing"

func ptr(v float64) *float64 { return &v }

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		in   *float64
		want Classification
	}{
		{nil, NotAvailable},
		{ptr(100), First},
		{ptr(70), First},
		{ptr(69.999), UpperSecond},
		{ptr(60), UpperSecond},
		{ptr(59.9999999), LowerSecond},
		{ptr(50), LowerSecond},
		{ptr(40), Third},
		{ptr(39.99), Fail},
		{ptr(0), Fail},
	}
	for _, c := range cases {
		if got := Classify(c.in); got != c.want {
			if c.in == nil {
				t.Fatalf("Classify(nil) = %s, want %s", got, c.want)
			}
			t.Fatalf("Classify(%v) = %s, want %s", *c.in, got, c.want)
		}
	}
}

func TestCustomScheme(t *testing.T) {
	passFail := NewScheme("pass_fail", Fail,
		Band{Classification: Third, Min: 40},
		Band{Classification: First, Min: 85},
	)
	if passFail.Bands[0].Classification != First {
		t.Fatalf("expected bands sorted by descending bound, got %+v", passFail.Bands)
	}
	if got := passFail.Classify(ptr(84.9)); got != Third {
		t.Fatalf("expected Third, got %s", got)
	}
	if got := passFail.Classify(ptr(85)); got != First {
		t.Fatalf("expected First, got %s", got)
	}
	if got := passFail.Classify(ptr(10)); got != Fail {
		t.Fatalf("expected fallback Fail, got %s", got)
	}
}

func TestColorFor(t *testing.T) {
	if ColorFor(NotAvailable, true) == ColorFor(NotAvailable, false) {
		t.Fatal("expected distinct neutral tones for dark and light themes")
	}
	for _, c := range []Classification{First, UpperSecond, LowerSecond, Third, Fail} {
		if ColorFor(c, true) != ColorFor(c, false) {
			t.Errorf("expected %s colour to be theme independent", c)
		}
		if ColorFor(c, false) == ColorFor(NotAvailable, false) {
			t.Errorf("expected %s colour to differ from the neutral tone", c)
		}
	}
}

func TestLabels(t *testing.T) {
	if UpperSecond.Label() != "2:1" || LowerSecond.Label() != "2:2" || NotAvailable.Label() != "N/A" {
		t.Fatalf("unexpected labels: %s %s %s", UpperSecond.Label(), LowerSecond.Label(), NotAvailable.Label())
	}
}
