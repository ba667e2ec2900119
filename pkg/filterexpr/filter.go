// Package filterexpr compiles list filters written in a small CEL subset into flat
// conjunctions of field comparisons, and order_by strings into sort keys.
//
// A filter is one or more comparisons joined with &&:
//
//	completed == false && weight >= 20 && module in ["Databases", "Networks"]
//
// Each comparison has a declared field on one side and a literal on the other.
package filterexpr

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg is anything that carries raw filter and order_by inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// Kind is the literal type a field compares against.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
)

// Op is a comparison operator.
type Op string

const (
	OpEQ     Op = "=="
	OpNE     Op = "!="
	OpLT     Op = "<"
	OpLTE    Op = "<="
	OpGT     Op = ">"
	OpGTE    Op = ">="
	OpPrefix Op = "startsWith"
	OpIn     Op = "in"
)

var (
	// Ops usable on every kind of field.
	EqualityOps = []Op{OpEQ, OpNE}
	// Ops for numeric fields.
	NumericOps = []Op{OpEQ, OpNE, OpLT, OpLTE, OpGT, OpGTE}
	// Ops for text fields.
	TextOps = []Op{OpEQ, OpNE, OpPrefix, OpIn}
)

var comparisons = map[string]Op{
	"_==_": OpEQ,
	"_!=_": OpNE,
	"_<_":  OpLT,
	"_<=_": OpLTE,
	"_>_":  OpGT,
	"_>=_": OpGTE,
}

// mirrored gives the operator to use when the literal is written on the left.
var mirrored = map[Op]Op{OpEQ: OpEQ, OpNE: OpNE, OpLT: OpGT, OpLTE: OpGTE, OpGT: OpLT, OpGTE: OpLTE}

// Field declares a filterable field.
type Field struct {
	Kind Kind
	Ops  []Op
}

// Schema is the filter and order vocabulary of one listing.
type Schema struct {
	Fields map[string]Field
	Order  OrderSchema
}

// Condition is a single comparison. Only the value matching the field's kind is set.
type Condition struct {
	Field string
	Op    Op

	Str  string
	Num  float64
	Bool bool
	List []string
}

// MatchString evaluates the condition against a text value.
func (c Condition) MatchString(v string) bool {
	switch c.Op {
	case OpEQ:
		return v == c.Str
	case OpNE:
		return v != c.Str
	case OpPrefix:
		return strings.HasPrefix(v, c.Str)
	case OpIn:
		return slices.Contains(c.List, v)
	}
	return false
}

// MatchNumber evaluates the condition against a numeric value.
func (c Condition) MatchNumber(v float64) bool {
	switch c.Op {
	case OpEQ:
		return v == c.Num
	case OpNE:
		return v != c.Num
	case OpLT:
		return v < c.Num
	case OpLTE:
		return v <= c.Num
	case OpGT:
		return v > c.Num
	case OpGTE:
		return v >= c.Num
	}
	return false
}

// MatchBool evaluates the condition against a boolean value.
func (c Condition) MatchBool(v bool) bool {
	switch c.Op {
	case OpEQ:
		return v == c.Bool
	case OpNE:
		return v != c.Bool
	}
	return false
}

// Query is a compiled filter with its sort keys.
type Query struct {
	Conditions []Condition
	Order      []OrderKey
}

// Compile parses msg's filter and order_by against schema.
func Compile(msg Msg, schema Schema) (*Query, error) {
	conds, err := Parse(msg.GetFilter(), schema.Fields)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	order, err := ParseOrder(msg.GetOrderBy(), schema.Order)
	if err != nil {
		return nil, fmt.Errorf("order_by: %w", err)
	}
	return &Query{Conditions: conds, Order: order}, nil
}

// Parse compiles a filter into its conditions. An empty filter has none.
func Parse(filter string, fields map[string]Field) ([]Condition, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	if len(fields) == 0 {
		return nil, errors.New("no filterable fields")
	}

	env, err := newEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("convert filter: %w", err)
	}

	var terms []*exprpb.Expr
	if err := flattenAnd(parsed.GetExpr(), &terms); err != nil {
		return nil, err
	}

	conds := make([]Condition, 0, len(terms))
	for _, term := range terms {
		cond, err := toCondition(term, fields)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func newEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, f := range fields {
		var t *cel.Type
		switch f.Kind {
		case KindString:
			t = cel.StringType
		case KindNumber:
			t = cel.DoubleType
		case KindBool:
			t = cel.BoolType
		default:
			return nil, fmt.Errorf("field %q has unsupported kind %q", name, f.Kind)
		}
		opts = append(opts, cel.Variable(name, t))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// flattenAnd collects the operands of nested && calls. The parser produces a binary
// tree for chains such as a && b && c.
func flattenAnd(expr *exprpb.Expr, out *[]*exprpb.Expr) error {
	if expr == nil {
		return errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		*out = append(*out, expr)
		return nil
	}
	switch call.GetFunction() {
	case "_&&_":
		for _, arg := range call.GetArgs() {
			if err := flattenAnd(arg, out); err != nil {
				return err
			}
		}
		return nil
	case "_||_", "!_", "_?_:_":
		return fmt.Errorf("operator %q is not supported; combine conditions with &&", strings.Trim(call.GetFunction(), "_"))
	default:
		*out = append(*out, expr)
		return nil
	}
}

func toCondition(expr *exprpb.Expr, fields map[string]Field) (Condition, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return Condition{}, errors.New("expected a comparison")
	}

	var (
		name    string
		op      Op
		literal *exprpb.Expr
	)
	fn := call.GetFunction()
	switch {
	case comparisons[fn] != "":
		if len(call.GetArgs()) != 2 {
			return Condition{}, fmt.Errorf("%s expects two operands", fn)
		}
		left, right := call.GetArgs()[0], call.GetArgs()[1]
		op = comparisons[fn]
		if ident := left.GetIdentExpr(); ident != nil {
			name, literal = ident.GetName(), right
		} else if ident := right.GetIdentExpr(); ident != nil {
			name, literal, op = ident.GetName(), left, mirrored[op]
		} else {
			return Condition{}, fmt.Errorf("comparison %s needs a field on one side", op)
		}
	case fn == "@in":
		if len(call.GetArgs()) != 2 || call.GetArgs()[0].GetIdentExpr() == nil {
			return Condition{}, errors.New("in expects a field and a list")
		}
		name, op, literal = call.GetArgs()[0].GetIdentExpr().GetName(), OpIn, call.GetArgs()[1]
	case fn == "startsWith":
		if call.GetTarget().GetIdentExpr() == nil || len(call.GetArgs()) != 1 {
			return Condition{}, errors.New("startsWith must be called on a field with one argument")
		}
		name, op, literal = call.GetTarget().GetIdentExpr().GetName(), OpPrefix, call.GetArgs()[0]
	default:
		return Condition{}, fmt.Errorf("function %q is not supported", fn)
	}

	field, ok := fields[name]
	if !ok {
		return Condition{}, fmt.Errorf("field %q is not allowed", name)
	}
	if !slices.Contains(field.Ops, op) {
		return Condition{}, fmt.Errorf("operator %q is not allowed for field %q", op, name)
	}
	cond := Condition{Field: name, Op: op}
	if err := setLiteral(&cond, field.Kind, literal); err != nil {
		return Condition{}, fmt.Errorf("field %q: %w", name, err)
	}
	return cond, nil
}

func setLiteral(cond *Condition, kind Kind, expr *exprpb.Expr) error {
	if cond.Op == OpIn {
		list := expr.GetListExpr()
		if list == nil || kind != KindString {
			return errors.New("in expects a list of strings")
		}
		if len(list.GetElements()) == 0 {
			return errors.New("list must not be empty")
		}
		for i, elem := range list.GetElements() {
			c := elem.GetConstExpr()
			if c == nil {
				return fmt.Errorf("list element %d is not a literal", i)
			}
			s, ok := c.GetConstantKind().(*exprpb.Constant_StringValue)
			if !ok {
				return fmt.Errorf("list element %d is not a string", i)
			}
			cond.List = append(cond.List, s.StringValue)
		}
		return nil
	}

	c := expr.GetConstExpr()
	if c == nil {
		return errors.New("expected a literal")
	}
	switch v := c.GetConstantKind().(type) {
	case *exprpb.Constant_StringValue:
		if kind == KindString {
			cond.Str = v.StringValue
			return nil
		}
	case *exprpb.Constant_DoubleValue:
		if kind == KindNumber {
			cond.Num = v.DoubleValue
			return nil
		}
	case *exprpb.Constant_Int64Value:
		if kind == KindNumber {
			cond.Num = float64(v.Int64Value)
			return nil
		}
	case *exprpb.Constant_Uint64Value:
		if kind == KindNumber {
			cond.Num = float64(v.Uint64Value)
			return nil
		}
	case *exprpb.Constant_BoolValue:
		if kind == KindBool {
			cond.Bool = v.BoolValue
			return nil
		}
	}
	return fmt.Errorf("expected %s literal", kind)
}
