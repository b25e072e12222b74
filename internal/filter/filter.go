// Package filter compiles CEL expressions into row predicates for --where.
// The row is bound to both "_" and "row", so `_.status == "open"` and
// `row.priority > 2` are equivalent.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/tblx/pkg/table"
)

// ErrNotBool is returned when an expression cannot produce a boolean.
var ErrNotBool = errors.New("filter expression must evaluate to bool")

// Predicate is a compiled filter expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("_", cel.DynType),
		cel.Variable("row", cel.DynType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

// Compile parses and type-checks expr. Expressions whose static type is
// neither bool nor dyn are rejected up front.
func Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("empty filter expression")
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBool, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// Match evaluates the predicate against row.
func (p *Predicate) Match(row table.Row) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"_": row, "row": row})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w, got %s", ErrNotBool, out.Type())
	}
	return bool(b), nil
}

// Func adapts the predicate to table.Query.Filter. Rows that fail to
// evaluate (a missing field, a type mismatch) are excluded and logged at V(1).
func (p *Predicate) Func(log logr.Logger) func(table.Row) bool {
	return func(row table.Row) bool {
		ok, err := p.Match(row)
		if err != nil {
			log.V(1).Info("filter skipped row", "expr", p.expr, "error", err.Error())
			return false
		}
		return ok
	}
}
