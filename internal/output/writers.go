// Package output emits the session result tables as CSV. Every write goes to
// a temp path swapped to final on success so partial outputs never land.
package output

import (
	"encoding/csv"
	"math"
	"sort"
	"strconv"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatMapValue renders a map entry, blank when the key was never computed.
func formatMapValue(m map[string]float64, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return formatFloat(v)
}

// massColumns returns the canonical mass column order followed by any extra
// tracked columns (toxics and the like) sorted by name.
func massColumns(rows []*domain.AnnualPhysical) []string {
	canonical := append(domain.GHGMassColumns(), domain.CriteriaMassColumns()...)
	known := make(map[string]bool, len(canonical))
	for _, col := range canonical {
		known[col] = true
	}
	extraSet := make(map[string]bool)
	for _, r := range rows {
		for col := range r.Masses {
			if !known[col] {
				extraSet[col] = true
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for col := range extraSet {
		extras = append(extras, col)
	}
	sort.Strings(extras)
	return append(canonical, extras...)
}

// WritePhysicalEffects emits the annual physical aggregates.
func WritePhysicalEffects(path string, rows []*domain.AnnualPhysical) error {
	masses := massColumns(rows)
	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"session_policy", "calendar_year", "reg_class_id", "in_use_fuel_id",
			"vmt", "vmt_liquid_fuel", "vmt_electricity", "vmt_rebound",
			"fuel_consumption_gallons", "fuel_consumption_kWh",
			"barrels_of_oil", "barrels_of_imported_oil", "session_fatalities",
		}
		header = append(header, masses...)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				r.Key.SessionPolicy,
				strconv.FormatInt(int64(r.Key.CalendarYear), 10),
				string(r.Key.RegClassID),
				r.Key.InUseFuelID,
				formatFloat(r.VMT),
				formatFloat(r.VMTLiquidFuel),
				formatFloat(r.VMTElectricity),
				formatFloat(r.VMTRebound),
				formatFloat(r.FuelConsumptionGallons),
				formatFloat(r.FuelConsumptionKWh),
				formatFloat(r.BarrelsOfOil),
				formatFloat(r.BarrelsOfImportedOil),
				formatFloat(r.SessionFatalities),
			}
			for _, col := range masses {
				rec = append(rec, formatMapValue(r.Masses, col))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCostEffects emits one row per monetized vehicle-year record, in the
// order given.
func WriteCostEffects(path string, rows []*domain.CostEffectsRecord) error {
	ghgKeys := domain.GHGCostKeys()
	criteriaKeys := domain.CriteriaCostKeys()
	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"vehicle_id", "calendar_year", "age", "session_policy", "session_name",
			"model_year", "reg_class_id", "in_use_fuel_id", "fueling_class",
			"discount_rate", "series", "periods",
			"fuel_retail_cost_dollars", "fuel_pretax_cost_dollars",
			"energy_security_cost_dollars", "congestion_cost_dollars",
			"noise_cost_dollars", "maintenance_cost_dollars",
			"refueling_cost_dollars", "drive_value_cost_dollars",
		}
		for _, k := range ghgKeys {
			header = append(header, k+"_cost_dollars")
		}
		for _, k := range criteriaKeys {
			header = append(header, k+"_cost_dollars")
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.Key.VehicleID),
				strconv.FormatInt(int64(r.Key.CalendarYear), 10),
				strconv.FormatInt(int64(r.Key.Age), 10),
				r.Key.SessionPolicy,
				r.Key.SessionName,
				strconv.FormatInt(int64(r.Key.ModelYear), 10),
				string(r.Key.RegClassID),
				r.Key.InUseFuelID,
				r.Key.FuelingClass,
				formatFloat(r.DiscountRate),
				string(r.Series),
				strconv.Itoa(r.Periods),
				formatFloat(r.FuelRetailCost),
				formatFloat(r.FuelPretaxCost),
				formatFloat(r.EnergySecurityCost),
				formatFloat(r.CongestionCost),
				formatFloat(r.NoiseCost),
				formatFloat(r.MaintenanceCost),
				formatFloat(r.RefuelingCost),
				formatFloat(r.DriveValueCost),
			}
			for _, k := range ghgKeys {
				rec = append(rec, formatMapValue(r.GHGCosts, k))
			}
			for _, k := range criteriaKeys {
				rec = append(rec, formatMapValue(r.CriteriaCosts, k))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// deltaColumns is the fixed physical-delta column order on the benefits
// table.
var deltaColumns = []string{
	"vmt", "vmt_liquid_fuel", "vmt_electricity", "vmt_rebound",
	"fuel_consumption_gallons", "fuel_consumption_kWh",
	"barrels_of_oil", "barrels_of_imported_oil", "session_fatalities",
}

// WriteBenefits emits one row per action aggregate. Criteria benefit columns
// appear only when health effects were computed.
func WriteBenefits(path string, rows []*domain.BenefitsRecord, healthEffects bool) error {
	ghgKeys := domain.GHGCostKeys()
	var criteriaKeys []string
	if healthEffects {
		criteriaKeys = domain.CriteriaBenefitKeys()
	}
	deltaMasses := append(domain.GHGMassColumns(), domain.CriteriaMassColumns()...)

	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"session_policy", "calendar_year", "reg_class_id", "in_use_fuel_id",
			"fuel_pretax_savings_dollars", "energy_security_benefit_dollars",
			"congestion_benefit_dollars", "noise_benefit_dollars",
			"maintenance_benefit_dollars", "refueling_benefit_dollars",
			"drive_value_benefit_dollars",
		}
		for _, k := range ghgKeys {
			header = append(header, k+"_benefit_dollars")
		}
		for _, k := range criteriaKeys {
			header = append(header, k+"_benefit_dollars")
		}
		for _, col := range deltaColumns {
			header = append(header, "delta_"+col)
		}
		for _, col := range deltaMasses {
			header = append(header, "delta_"+col)
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				r.Key.SessionPolicy,
				strconv.FormatInt(int64(r.Key.CalendarYear), 10),
				string(r.Key.RegClassID),
				r.Key.InUseFuelID,
				formatFloat(r.FuelPretaxSavings),
				formatFloat(r.EnergySecurityBenefit),
				formatFloat(r.CongestionBenefit),
				formatFloat(r.NoiseBenefit),
				formatFloat(r.MaintenanceBenefit),
				formatFloat(r.RefuelingBenefit),
				formatFloat(r.DriveValueBenefit),
			}
			for _, k := range ghgKeys {
				rec = append(rec, formatMapValue(r.GHGBenefits, k))
			}
			for _, k := range criteriaKeys {
				rec = append(rec, formatMapValue(r.CriteriaBenefits, k))
			}
			for _, col := range deltaColumns {
				rec = append(rec, formatMapValue(r.DeltaPhysical, col))
			}
			for _, col := range deltaMasses {
				rec = append(rec, formatMapValue(r.DeltaPhysical, col))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
