package factors

import (
	"fmt"
	"math"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// CriteriaTemplateName is the banner name of the criteria damages input file.
const CriteriaTemplateName = "cost_factors_criteria"

// Upstream emission source tags for criteria factor lookups. Vehicle sources
// are built as "<reg_class_id> <fuel name>".
const (
	SourceEGU      = "egu"
	SourceRefinery = "refinery"
)

// CriteriaColumn builds the factor column name for one criteria pollutant,
// valuation study and rate variant, e.g. "pm25_low_3.0_USD_per_uston".
func CriteriaColumn(pollutant, study, rate string) string {
	return fmt.Sprintf("%s_%s_%s_USD_per_uston", pollutant, study, rate)
}

// CriteriaColumns lists all twelve factor columns of the criteria table.
func CriteriaColumns() []string {
	cols := make([]string, 0, len(domain.CriteriaPollutants)*len(domain.CriteriaStudies)*len(domain.CriteriaRates))
	for _, p := range domain.CriteriaPollutants {
		for _, s := range domain.CriteriaStudies {
			for _, r := range domain.CriteriaRates {
				cols = append(cols, CriteriaColumn(p, s, r))
			}
		}
	}
	return cols
}

// CriteriaTable prices criteria pollutant emissions in USD per US short ton,
// keyed by (calendar_year, source_id). An empty or zero-sum table disables
// health effects for the session.
type CriteriaTable struct {
	sources map[string]*yearSeries
	zeroSum bool
}

// LoadCriteria reads the criteria template. Criteria damage factors are the
// one table normalized with the CPI deflator series rather than the implicit
// price deflators.
func LoadCriteria(f *tabular.File, cpi *deflate.Series) (*CriteriaTable, error) {
	cols := CriteriaColumns()
	required := append([]string{"calendar_year", "source_id", "dollar_basis"}, cols...)
	if err := f.Require(required...); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	t := &CriteriaTable{sources: make(map[string]*yearSeries)}
	sum := 0.0
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		year, err := row.Year("calendar_year")
		if err != nil {
			return nil, err
		}
		basis, err := row.Year("dollar_basis")
		if err != nil {
			return nil, err
		}
		source := row.String("source_id")
		values := make(map[string]float64, len(cols))
		for _, col := range cols {
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			if values[col], err = cpi.Adjust(v, basis); err != nil {
				return nil, err
			}
			sum += math.Abs(values[col])
		}
		series, ok := t.sources[source]
		if !ok {
			series = newYearSeries(CriteriaTemplateName + ":" + source)
			t.sources[source] = series
		}
		series.addRow(year, values)
	}
	for _, series := range t.sources {
		series.freeze()
	}
	t.zeroSum = sum == 0
	return t, nil
}

// Empty reports whether the table carries no priced damages at all, the
// signal that health effects are skipped for the session.
func (t *CriteriaTable) Empty() bool {
	return len(t.sources) == 0 || t.zeroSum
}

// Get returns the named factors for (calendar year, emission source) in the
// given order. Unknown sources read as all-zero factors rather than failing:
// the factor workbooks only price the sources they cover.
func (t *CriteriaTable) Get(y int32, sourceID string, names ...string) ([]float64, error) {
	series, ok := t.sources[sourceID]
	if !ok {
		return make([]float64, len(names)), nil
	}
	return series.get(y, names)
}

// GetScalar returns a single named factor for (calendar year, source).
func (t *CriteriaTable) GetScalar(y int32, sourceID, name string) (float64, error) {
	vals, err := t.Get(y, sourceID, name)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// ClearCache drops memoized lookups; called on reload.
func (t *CriteriaTable) ClearCache() {
	for _, series := range t.sources {
		series.clear()
	}
}
