// Package filter evaluates CEL predicates against entity and relation instances.
//
// An expression sees these variables:
//
//	properties   map(string, dyn)  the instance properties
//	namespace    string
//	type_name    string
//	id           string            entity id, empty for relations
//	outbound_id  string            relation outbound id, empty for entities
//	inbound_id   string            relation inbound id, empty for entities
//
// Reading a property that is not set is an evaluation error; guard optional
// properties with has(), e.g. `has(properties.level) && properties.level > 3`.
// Integer properties decoded from JSON are unsigned when non-negative, so compare
// them against unsigned literals (`properties.count > 3u`) or convert with int().
package filter

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/zero-day-ai/flowgraph/model"
	"github.com/zero-day-ai/flowgraph/property"
)

var (
	// ErrInvalidExpression indicates an expression that does not parse or type-check.
	ErrInvalidExpression = errors.New("filter: invalid expression")

	// ErrNotBoolean indicates an expression that does not evaluate to a bool.
	ErrNotBoolean = errors.New("filter: expression does not evaluate to a bool")
)

const (
	varProperties = "properties"
	varNamespace  = "namespace"
	varTypeName   = "type_name"
	varID         = "id"
	varOutboundID = "outbound_id"
	varInboundID  = "inbound_id"
)

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(varProperties, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(varNamespace, cel.StringType),
		cel.Variable(varTypeName, cel.StringType),
		cel.Variable(varID, cel.StringType),
		cel.Variable(varOutboundID, cel.StringType),
		cel.Variable(varInboundID, cel.StringType),
	)
}

// Filter is a compiled predicate. It is safe for concurrent use.
type Filter struct {
	expr    string
	program cel.Program
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Filter, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExpression, issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %q has type %s", ErrNotBoolean, expr, out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExpression, err)
	}

	return &Filter{expr: expr, program: program}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Filter {
	f, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.expr
}

// Match evaluates the filter against a bare property store.
func (f *Filter) Match(props property.Instances) (bool, error) {
	return f.eval(bindings(props))
}

// MatchEntity evaluates the filter against an entity instance.
func (f *Filter) MatchEntity(entity model.EntityInstance) (bool, error) {
	vars := bindings(entity.Properties)
	vars[varNamespace] = entity.Namespace
	vars[varTypeName] = entity.TypeName
	vars[varID] = entity.ID.String()
	return f.eval(vars)
}

// MatchRelation evaluates the filter against a relation instance.
func (f *Filter) MatchRelation(relation model.RelationInstance) (bool, error) {
	vars := bindings(relation.Properties)
	vars[varNamespace] = relation.Namespace
	vars[varTypeName] = relation.TypeName
	vars[varOutboundID] = relation.OutboundID.String()
	vars[varInboundID] = relation.InboundID.String()
	return f.eval(vars)
}

func (f *Filter) eval(vars map[string]any) (bool, error) {
	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate %q: %w", f.expr, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q returned %s", ErrNotBoolean, f.expr, out.Type())
	}
	return matched, nil
}

func bindings(props property.Instances) map[string]any {
	values := make(map[string]any, len(props))
	for name, value := range props {
		values[name] = value.Interface()
	}
	return map[string]any{
		varProperties: values,
		varNamespace:  "",
		varTypeName:   "",
		varID:         "",
		varOutboundID: "",
		varInboundID:  "",
	}
}
