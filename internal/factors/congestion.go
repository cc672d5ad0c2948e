package factors

import (
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// CongestionNoiseTemplateName is the banner name of the congestion and noise
// externality input file.
const CongestionNoiseTemplateName = "cost_factors_congestion_noise"

// Congestion/noise factor column names, USD per mile.
const (
	ColCongestionPerMile = "congestion_cost_dollars_per_mile"
	ColNoisePerMile      = "noise_cost_dollars_per_mile"
)

// CongestionNoiseTable prices congestion and noise externalities per mile by
// regulatory class. The legacy factor workbooks only carry car and truck
// rows; mediumduty falls back to the truck factors.
type CongestionNoiseTable struct {
	rows map[domain.RegClassId]map[string]float64
}

// LoadCongestionNoise reads the congestion/noise template and normalizes both
// per-mile columns with the implicit price deflators.
func LoadCongestionNoise(f *tabular.File, deflators *deflate.Series) (*CongestionNoiseTable, error) {
	if err := f.Require("reg_class_id", "dollar_basis", ColCongestionPerMile, ColNoisePerMile); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	t := &CongestionNoiseTable{rows: make(map[domain.RegClassId]map[string]float64)}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		basis, err := row.Year("dollar_basis")
		if err != nil {
			return nil, err
		}
		values := make(map[string]float64, 2)
		for _, col := range []string{ColCongestionPerMile, ColNoisePerMile} {
			v, err := row.Float(col)
			if err != nil {
				return nil, err
			}
			if values[col], err = deflators.Adjust(v, basis); err != nil {
				return nil, err
			}
		}
		t.rows[domain.RegClassId(row.String("reg_class_id"))] = values
	}
	return t, nil
}

// Get returns the named per-mile factors for a regulatory class.
func (t *CongestionNoiseTable) Get(regClass domain.RegClassId, names ...string) []float64 {
	row, ok := t.rows[regClass]
	if !ok && regClass == domain.RegClassMediumDuty {
		row = t.rows[domain.RegClassTruck]
	}
	vals := make([]float64, len(names))
	if row == nil {
		return vals
	}
	for i, name := range names {
		vals[i] = row[name]
	}
	return vals
}
