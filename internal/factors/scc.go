package factors

import (
	"fmt"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// SCCTemplateName is the banner name of the social-cost-of-GHG input file.
const SCCTemplateName = "cost_factors_scc"

// SCCColumn builds the factor column name for one GHG pollutant and SCC rate
// variant, e.g. "co2_global_3.0_USD_per_metricton".
func SCCColumn(pollutant, rate string) string {
	return fmt.Sprintf("%s_global_%s_USD_per_metricton", pollutant, rate)
}

// SCCColumns lists all twelve factor columns of the SCC table.
func SCCColumns() []string {
	cols := make([]string, 0, len(domain.GHGPollutants)*len(domain.SCCRates))
	for _, p := range domain.GHGPollutants {
		for _, r := range domain.SCCRates {
			cols = append(cols, SCCColumn(p, r))
		}
	}
	return cols
}

// SCCTable prices GHG emissions in USD per metric ton by calendar year, per
// pollutant and per SCC discount rate variant.
type SCCTable struct {
	series *yearSeries
}

// LoadSCC reads the SCC template and normalizes every factor column with the
// implicit price deflator series.
func LoadSCC(f *tabular.File, deflators *deflate.Series) (*SCCTable, error) {
	cols := SCCColumns()
	required := append([]string{"calendar_year", "dollar_basis"}, cols...)
	if err := f.Require(required...); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	t := &SCCTable{series: newYearSeries(SCCTemplateName)}
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
		values := make(map[string]float64, len(cols))
		for _, col := range cols {
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			if values[col], err = deflators.Adjust(v, basis); err != nil {
				return nil, err
			}
		}
		t.series.addRow(year, values)
	}
	t.series.freeze()
	return t, nil
}

// Get returns the named factors for calendar year y in the given order.
func (t *SCCTable) Get(y int32, names ...string) ([]float64, error) {
	return t.series.get(y, names)
}

// GetScalar returns a single named factor for calendar year y.
func (t *SCCTable) GetScalar(y int32, name string) (float64, error) {
	vals, err := t.series.get(y, []string{name})
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// ClearCache drops memoized lookups; called on reload.
func (t *SCCTable) ClearCache() { t.series.clear() }
