package factors

import (
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// FuelPricesTemplateName is the banner name of the context fuel prices input
// file.
const FuelPricesTemplateName = "context_fuel_prices"

// Fuel price column names. Units are dollars per gallon for liquid fuels and
// dollars per kWh for electricity.
const (
	ColRetailPrice = "retail_dollars_per_unit"
	ColPretaxPrice = "pretax_dollars_per_unit"
)

// FuelPriceTable prices in-use fuels by (calendar_year, fuel_id) with the
// same carry-forward year semantics as the cost-factor tables.
type FuelPriceTable struct {
	fuels map[string]*yearSeries
}

// LoadFuelPrices reads the fuel price template and normalizes both price
// columns with the implicit price deflators.
func LoadFuelPrices(f *tabular.File, deflators *deflate.Series) (*FuelPriceTable, error) {
	if err := f.Require("calendar_year", "fuel_id", "dollar_basis", ColRetailPrice, ColPretaxPrice); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	t := &FuelPriceTable{fuels: make(map[string]*yearSeries)}
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
		fuelID := row.String("fuel_id")
		values := make(map[string]float64, 2)
		for _, col := range []string{ColRetailPrice, ColPretaxPrice} {
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			if values[col], err = deflators.Adjust(v, basis); err != nil {
				return nil, err
			}
		}
		series, ok := t.fuels[fuelID]
		if !ok {
			series = newYearSeries(FuelPricesTemplateName + ":" + fuelID)
			t.fuels[fuelID] = series
		}
		series.addRow(year, values)
	}
	for _, series := range t.fuels {
		series.freeze()
	}
	return t, nil
}

// Get returns (retail, pretax) unit prices for one fuel in one calendar year.
func (t *FuelPriceTable) Get(y int32, fuelID string) (retail, pretax float64, err error) {
	series, ok := t.fuels[fuelID]
	if !ok {
		return 0, 0, nil
	}
	vals, err := series.get(y, []string{ColRetailPrice, ColPretaxPrice})
	if err != nil {
		return 0, 0, err
	}
	return vals[0], vals[1], nil
}

// ClearCache drops memoized lookups; called on reload.
func (t *FuelPriceTable) ClearCache() {
	for _, series := range t.fuels {
		series.clear()
	}
}
