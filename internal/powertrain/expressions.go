// Package powertrain assembles per-vehicle powertrain costs from the
// expression-graph cost definition file: engine, driveline, e-machine,
// battery and electrified-driveline components with learning curves and
// battery volume effects.
package powertrain

import (
	"fmt"
	"math"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// TemplateName is the banner name of the powertrain cost input file.
const TemplateName = "powertrain_cost"

// Entry is one compiled cost atom keyed by (powertrain_type, item). Value
// expressions are compiled once at load and evaluated many times against a
// vehicle scope. DollarAdjustment is the deflator factor that brings the
// entry's dollar basis to the analysis basis; it is applied at evaluation so
// the expression text stays exactly as authored.
type Entry struct {
	Powertrain       domain.PowertrainType
	Item             string
	Quantity         int
	DollarAdjustment float64

	expr *govaluate.EvaluableExpression
}

type entryKey struct {
	powertrain domain.PowertrainType
	item       string
}

// Table is the frozen set of compiled cost entries.
type Table struct {
	entries map[entryKey]*Entry
}

// exprFunctions is the restricted function namespace available to cost
// expressions: element-wise maxima and minima only. Any other call fails at
// compile time, so an undeclared name can never reach evaluation.
var exprFunctions = map[string]govaluate.ExpressionFunction{
	"maxelem": func(args ...interface{}) (interface{}, error) {
		return foldFloat(math.Max, "maxelem", args...)
	},
	"minelem": func(args ...interface{}) (interface{}, error) {
		return foldFloat(math.Min, "minelem", args...)
	},
}

func foldFloat(f func(a, b float64) float64, name string, args ...interface{}) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("powertrain: %s needs at least 2 arguments, got %d", name, len(args))
	}
	acc, ok := args[0].(float64)
	if !ok {
		return nil, fmt.Errorf("powertrain: %s argument is not numeric", name)
	}
	for _, arg := range args[1:] {
		v, ok := arg.(float64)
		if !ok {
			return nil, fmt.Errorf("powertrain: %s argument is not numeric", name)
		}
		acc = f(acc, v)
	}
	return acc, nil
}

// rewriteExpression maps the source file's max/min spellings (including the
// numpy-namespace forms) to the element-wise functions before compile.
func rewriteExpression(src string) string {
	r := strings.NewReplacer(
		"np.maximum(", "maxelem(",
		"np.minimum(", "minelem(",
		"max(", "maxelem(",
		"min(", "minelem(",
	)
	return r.Replace(src)
}

// LoadTable reads the powertrain cost template, compiles every value
// expression, and records the deflator adjustment for each row's dollar
// basis.
func LoadTable(f *tabular.File, deflators *deflate.Series) (*Table, error) {
	if err := f.Require("powertrain_type", "item", "value", "quantity", "dollar_basis"); err != nil {
		return nil, err
	}

	t := &Table{entries: make(map[entryKey]*Entry, f.Len())}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		ptype, err := domain.ParsePowertrainType(row.String("powertrain_type"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		item := row.String("item")
		if item == "" {
			return nil, fmt.Errorf("%s: blank item for powertrain_type %s", f.Path, ptype)
		}
		quantity, err := row.Int("quantity")
		if err != nil {
			return nil, err
		}
		basis, err := row.Year("dollar_basis")
		if err != nil {
			return nil, err
		}
		adjustment := 1.0
		if basis != 0 {
			if adjustment, err = deflators.AdjustmentFactor(basis); err != nil {
				return nil, err
			}
		}

		src := rewriteExpression(row.String("value"))
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(src, exprFunctions)
		if err != nil {
			return nil, fmt.Errorf("%s: bad expression for (%s, %s): %w", f.Path, ptype, item, err)
		}

		t.entries[entryKey{ptype, item}] = &Entry{
			Powertrain:       ptype,
			Item:             item,
			Quantity:         quantity,
			DollarAdjustment: adjustment,
			expr:             expr,
		}
	}
	return t, nil
}

// Lookup resolves (powertrain, item) with grouping fallbacks: the exact
// powertrain first, then PEV for plug-ins, then ALL.
func (t *Table) Lookup(p domain.PowertrainType, item string) (*Entry, bool) {
	if e, ok := t.entries[entryKey{p, item}]; ok {
		return e, true
	}
	if p.IsPlugIn() {
		if e, ok := t.entries[entryKey{domain.PowertrainPEV, item}]; ok {
			return e, true
		}
	}
	e, ok := t.entries[entryKey{domain.PowertrainALL, item}]
	return e, ok
}

// Has reports whether any entry exists for (powertrain, item) after
// fallbacks.
func (t *Table) Has(p domain.PowertrainType, item string) bool {
	_, ok := t.Lookup(p, item)
	return ok
}

// Eval evaluates one entry against a scope, applying the dollar adjustment.
// Quantity is not applied here; the assembler multiplies it where an atom
// represents a counted part.
func (e *Entry) Eval(scope map[string]interface{}) (float64, error) {
	out, err := e.expr.Evaluate(scope)
	if err != nil {
		return 0, fmt.Errorf("powertrain: evaluating (%s, %s): %w", e.Powertrain, e.Item, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("powertrain: (%s, %s) did not evaluate to a number", e.Powertrain, e.Item)
	}
	return v * e.DollarAdjustment, nil
}

// EvalItem resolves and evaluates an item for a powertrain; missing items
// evaluate to zero, which lets sparse cost files omit atoms that do not
// apply.
func (t *Table) EvalItem(p domain.PowertrainType, item string, scope map[string]interface{}) (float64, error) {
	e, ok := t.Lookup(p, item)
	if !ok {
		return 0, nil
	}
	return e.Eval(scope)
}

// EvalCounted evaluates an item and multiplies by its quantity (minimum 1).
func (t *Table) EvalCounted(p domain.PowertrainType, item string, scope map[string]interface{}) (float64, error) {
	e, ok := t.Lookup(p, item)
	if !ok {
		return 0, nil
	}
	v, err := e.Eval(scope)
	if err != nil {
		return 0, err
	}
	q := e.Quantity
	if q < 1 {
		q = 1
	}
	return v * float64(q), nil
}
