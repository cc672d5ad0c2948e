package factors

import (
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// EnergySecurityTemplateName is the banner name of the energy security input
// file.
const EnergySecurityTemplateName = "cost_factors_energysecurity"

// Energy security factor column names.
const (
	ColDollarsPerBBL      = "dollars_per_bbl"
	ColOilImportReduction = "oil_import_reduction_as_percent_of_total_oil_demand_reduction"
)

// EnergySecurityTable prices the external cost of oil dependence per barrel
// by calendar year.
type EnergySecurityTable struct {
	series *yearSeries
}

// LoadEnergySecurity reads the energy security template and normalizes the
// per-barrel premium with the implicit price deflators. The import-reduction
// share column is part of the template contract and must parse, but the
// engine prices total barrels and the annual data already carries imported
// barrels, so the share is not kept.
func LoadEnergySecurity(f *tabular.File, deflators *deflate.Series) (*EnergySecurityTable, error) {
	if err := f.Require("calendar_year", "dollar_basis", ColDollarsPerBBL, ColOilImportReduction); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	t := &EnergySecurityTable{series: newYearSeries(EnergySecurityTemplateName)}
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
		perBBL, err := row.Float(ColDollarsPerBBL)
		if err != nil {
			return nil, err
		}
		if perBBL, err = deflators.Adjust(perBBL, basis); err != nil {
			return nil, err
		}
		if _, err := row.Float(ColOilImportReduction); err != nil {
			return nil, err
		}
		t.series.addRow(year, map[string]float64{
			ColDollarsPerBBL: perBBL,
		})
	}
	t.series.freeze()
	return t, nil
}

// Get returns the named factors for calendar year y in the given order.
func (t *EnergySecurityTable) Get(y int32, names ...string) ([]float64, error) {
	return t.series.get(y, names)
}

// GetScalar returns a single named factor for calendar year y.
func (t *EnergySecurityTable) GetScalar(y int32, name string) (float64, error) {
	vals, err := t.series.get(y, []string{name})
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// ClearCache drops memoized lookups; called on reload.
func (t *EnergySecurityTable) ClearCache() { t.series.clear() }
