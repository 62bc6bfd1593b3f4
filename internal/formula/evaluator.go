// Package formula evaluates exchange formulas against a snapshot of
// parameter values. Formulas written by the mapping registrar are always a
// single parameter name; arbitrary arithmetic expressions over parameter
// names are supported for callers that write their own formulas.
package formula

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
)

// UnresolvedReferenceError indicates a formula references parameter names
// that are not present in the snapshot.
type UnresolvedReferenceError struct {
	Formula string
	Names   []string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("formula %q references unknown parameters: %s", e.Formula, strings.Join(e.Names, ", "))
}

// CyclicFormulaError is reserved for formulas that reference other exchanges.
// Formulas in this system only reference parameter store values, so the error
// is never produced today; it exists so the contract survives an extension to
// multi-level formulas.
type CyclicFormulaError struct {
	Names []string
}

func (e *CyclicFormulaError) Error() string {
	return fmt.Sprintf("cyclic formula dependency: %s", strings.Join(e.Names, " -> "))
}

// InvalidFormulaError indicates a formula that cannot be parsed or does not
// evaluate to a number.
type InvalidFormulaError struct {
	Formula string
	Reason  string
}

func (e *InvalidFormulaError) Error() string {
	return fmt.Sprintf("invalid formula %q: %s", e.Formula, e.Reason)
}

// ValidName reports whether name can be used as a parameter name inside
// formulas. Names must be valid identifiers and not language keywords so
// the interpreter can bind them.
func ValidName(name string) bool {
	return token.IsIdentifier(name) && !token.IsKeyword(name)
}

// Idents extracts the unique identifiers referenced by an arithmetic
// expression, sorted for stable reporting.
func Idents(expr string) ([]string, error) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, &InvalidFormulaError{Formula: expr, Reason: err.Error()}
	}
	set := make(map[string]bool)
	ast.Inspect(parsed, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok {
			set[ident.Name] = true
		}
		return true
	})
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Evaluator resolves formulas against one immutable snapshot of parameter
// values. The interpreter is primed lazily on the first compound formula;
// single-name formulas never touch it.
type Evaluator struct {
	params map[string]float64
	interp *interp.Interpreter
}

// NewEvaluator creates an evaluator over the given parameter snapshot.
func NewEvaluator(params map[string]float64) *Evaluator {
	return &Evaluator{params: params}
}

// Evaluate resolves a formula to a float64. A formula consisting of exactly
// one parameter name is resolved by direct lookup. Anything else is parsed,
// checked for unresolved references, and evaluated as an arithmetic
// expression with every snapshot parameter in scope.
func (e *Evaluator) Evaluate(formulaExpr string) (float64, error) {
	expr := strings.TrimSpace(formulaExpr)
	if expr == "" {
		return 0, &InvalidFormulaError{Formula: formulaExpr, Reason: "empty formula"}
	}

	if ValidName(expr) {
		v, ok := e.params[expr]
		if !ok {
			return 0, &UnresolvedReferenceError{Formula: expr, Names: []string{expr}}
		}
		return v, nil
	}

	names, err := Idents(expr)
	if err != nil {
		return 0, err
	}
	var missing []string
	for _, name := range names {
		if _, ok := e.params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, &UnresolvedReferenceError{Formula: expr, Names: missing}
	}

	if e.interp == nil {
		if err := e.prime(); err != nil {
			return 0, err
		}
	}

	result, err := e.interp.Eval(expr)
	if err != nil {
		return 0, &InvalidFormulaError{Formula: expr, Reason: err.Error()}
	}
	switch v := result.Interface().(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, &InvalidFormulaError{Formula: expr, Reason: fmt.Sprintf("evaluates to %T, not a number", v)}
	}
}

// prime creates the interpreter and binds every snapshot parameter as a
// float64 variable. Done once per evaluator so a recalculation pass over N
// exchanges stays O(N).
func (e *Evaluator) prime() error {
	i := interp.New(interp.Options{})
	var b strings.Builder
	for name, value := range e.params {
		if !ValidName(name) {
			// Names are validated at upsert time; skip rather than fail the
			// whole pass if an older row predates validation.
			continue
		}
		// float64 conversion keeps whole numbers from binding as ints.
		b.WriteString(name)
		b.WriteString(" := float64(")
		b.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
		b.WriteString(")\n_ = ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	if b.Len() > 0 {
		if _, err := i.Eval(b.String()); err != nil {
			return fmt.Errorf("failed to bind parameter snapshot: %w", err)
		}
	}
	e.interp = i
	return nil
}
