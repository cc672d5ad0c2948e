package powertrain

import (
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// Tracker collects one diagnostic row per costed vehicle: every assembled
// component and the inputs that produced it. It is a debugging surface, not
// part of the computational result.
type Tracker struct {
	rows []trackerRow
}

type trackerRow struct {
	vehicleID  int
	modelYear  int32
	powertrain string
	batteryKWh float64
	emachineKW float64
	markup     float64
	learning   float64
	cost       Cost
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record captures one costed vehicle.
func (t *Tracker) Record(v *Vehicle, cost Cost, markup, learning float64) {
	t.rows = append(t.rows, trackerRow{
		vehicleID:  v.VehicleID,
		modelYear:  v.ModelYear,
		powertrain: string(v.Powertrain),
		batteryKWh: v.BatteryKWh,
		emachineKW: v.TotalEMachineKW,
		markup:     markup,
		learning:   learning,
		cost:       cost,
	})
}

// Len returns the number of recorded rows.
func (t *Tracker) Len() int { return len(t.rows) }

// Write emits the tracker CSV in (vehicle_id, model_year) order.
func (t *Tracker) Write(path string) error {
	sort.Slice(t.rows, func(i, j int) bool {
		if t.rows[i].vehicleID != t.rows[j].vehicleID {
			return t.rows[i].vehicleID < t.rows[j].vehicleID
		}
		return t.rows[i].modelYear < t.rows[j].modelYear
	})
	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"vehicle_id", "model_year", "powertrain_type", "battery_kwh",
			"total_emachine_kw", "markup", "learning_factor",
			"engine_cost_dollars", "driveline_cost_dollars", "emachine_cost_dollars",
			"battery_cost_dollars", "electrified_driveline_cost_dollars",
			"powertrain_cost_dollars",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range t.rows {
			rec := []string{
				strconv.Itoa(r.vehicleID),
				strconv.FormatInt(int64(r.modelYear), 10),
				r.powertrain,
				formatFloat(r.batteryKWh),
				formatFloat(r.emachineKW),
				formatFloat(r.markup),
				formatFloat(r.learning),
				formatFloat(r.cost.Engine),
				formatFloat(r.cost.Driveline),
				formatFloat(r.cost.EMachine),
				formatFloat(r.cost.Battery),
				formatFloat(r.cost.ElectrifiedDriveline),
				formatFloat(r.cost.Total()),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
