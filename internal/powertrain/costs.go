package powertrain

import (
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// VehicleCost pairs one vehicle with its assembled powertrain cost, the
// session's per-vehicle costing result.
type VehicleCost struct {
	VehicleID  int
	ModelYear  int32
	Powertrain domain.PowertrainType
	Cost       Cost
}

// WriteCosts emits the per-vehicle powertrain cost table in
// (vehicle_id, model_year) order.
func WriteCosts(path string, rows []VehicleCost) error {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].VehicleID != rows[j].VehicleID {
			return rows[i].VehicleID < rows[j].VehicleID
		}
		return rows[i].ModelYear < rows[j].ModelYear
	})
	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"vehicle_id", "model_year", "powertrain_type",
			"engine_cost_dollars", "driveline_cost_dollars", "emachine_cost_dollars",
			"battery_cost_dollars", "electrified_driveline_cost_dollars",
			"powertrain_cost_dollars",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.VehicleID),
				strconv.FormatInt(int64(r.ModelYear), 10),
				string(r.Powertrain),
				formatFloat(r.Cost.Engine),
				formatFloat(r.Cost.Driveline),
				formatFloat(r.Cost.EMachine),
				formatFloat(r.Cost.Battery),
				formatFloat(r.Cost.ElectrifiedDriveline),
				formatFloat(r.Cost.Total()),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
