package filterexpr

import (
	"strings"
	"testing"
)

var testFields = map[string]Field{
	"name":      {Kind: KindString, Ops: TextOps},
	"year":      {Kind: KindNumber, Ops: NumericOps},
	"grade":     {Kind: KindNumber, Ops: NumericOps},
	"completed": {Kind: KindBool, Ops: EqualityOps},
}

type msg struct{ filter, orderBy string }

func (m msg) GetFilter() string  { return m.filter }
func (m msg) GetOrderBy() string { return m.orderBy }

func TestParseConjunction(t *testing.T) {
	conds, err := Parse(`name.startsWith("Ex") && year >= 2 && completed == false && name in ["Exam", "Essay"]`, testFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(conds) != 4 {
		t.Fatalf("expected 4 conditions, got %+v", conds)
	}
	if c := conds[0]; c.Field != "name" || c.Op != OpPrefix || c.Str != "Ex" {
		t.Errorf("unexpected prefix condition %+v", c)
	}
	if c := conds[1]; c.Field != "year" || c.Op != OpGTE || c.Num != 2 {
		t.Errorf("unexpected year condition %+v", c)
	}
	if c := conds[2]; c.Op != OpEQ || c.Bool {
		t.Errorf("unexpected completed condition %+v", c)
	}
	if c := conds[3]; c.Op != OpIn || strings.Join(c.List, ",") != "Exam,Essay" {
		t.Errorf("unexpected in condition %+v", c)
	}
}

func TestParseMirrorsLiteralOnTheLeft(t *testing.T) {
	conds, err := Parse(`40 < grade`, testFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c := conds[0]; c.Field != "grade" || c.Op != OpGT || c.Num != 40 {
		t.Fatalf("unexpected condition %+v", c)
	}
	if !conds[0].MatchNumber(41) || conds[0].MatchNumber(40) {
		t.Fatal("mirrored condition evaluates wrongly")
	}
}

func TestParseEmpty(t *testing.T) {
	conds, err := Parse("   ", testFields)
	if err != nil || conds != nil {
		t.Fatalf("expected no conditions, got %+v, %v", conds, err)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		`name == "a" || year == 1`: "not supported",
		`!completed`:               "not supported",
		`colour == "red"`:          "not allowed",
		`completed >= true`:        "not allowed",
		`year == "two"`:            "expected number literal",
		`completed == 1`:           "expected bool literal",
		`name in [1, 2]`:           "not a string",
		`name in []`:               "must not be empty",
		`year == grade`:            "expected a literal",
		`size(name) == 3`:          "needs a field",
		`name ==`:                  "invalid filter",
	}
	for filter, want := range cases {
		t.Run(filter, func(t *testing.T) {
			_, err := Parse(filter, testFields)
			if err == nil || !strings.Contains(err.Error(), want) {
				t.Fatalf("expected error containing %q, got %v", want, err)
			}
		})
	}
}

func TestConditionMatch(t *testing.T) {
	in := Condition{Op: OpIn, List: []string{"a", "b"}}
	if !in.MatchString("b") || in.MatchString("c") {
		t.Error("in")
	}
	ne := Condition{Op: OpNE, Num: 3}
	if !ne.MatchNumber(2) || ne.MatchNumber(3) {
		t.Error("!=")
	}
	prefix := Condition{Op: OpPrefix, Str: "Ex"}
	if !prefix.MatchString("Exam") || prefix.MatchString("Essay") {
		t.Error("startsWith")
	}
	if (Condition{Op: OpLT, Bool: true}).MatchBool(false) {
		t.Error("ordering ops never match booleans")
	}
}

func TestCompilePrefixesErrors(t *testing.T) {
	schema := Schema{Fields: testFields, Order: OrderSchema{Fields: []string{"year"}}}
	if _, err := Compile(msg{filter: "colour == 1"}, schema); err == nil || !strings.HasPrefix(err.Error(), "filter: ") {
		t.Fatalf("unexpected filter error %v", err)
	}
	if _, err := Compile(msg{orderBy: "colour"}, schema); err == nil || !strings.HasPrefix(err.Error(), "order_by: ") {
		t.Fatalf("unexpected order error %v", err)
	}
	q, err := Compile(msg{filter: "year == 1", orderBy: "year desc"}, schema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(q.Conditions) != 1 || len(q.Order) != 1 || !q.Order[0].Desc {
		t.Fatalf("unexpected query %+v", q)
	}
}
