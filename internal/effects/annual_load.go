// Package effects computes monetized cost effects for each vehicle-year
// record produced by the upstream simulator.
package effects

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// AnnualDataTemplateName is the banner name of the physical effects input
// file.
const AnnualDataTemplateName = "vehicle_annual_data"

// massTolerance bounds the *_total = *_vehicle + *_upstream check.
const massTolerance = 1e-6

// LoadAnnualData reads vehicle-year physical records and returns them in
// (vehicle_id, calendar_year, age) order. Any column ending in _metrictons or
// _ustons is captured as a pollutant mass, so toxics columns ride along
// without schema changes.
func LoadAnnualData(f *tabular.File) ([]*domain.VehicleAnnualRecord, error) {
	required := []string{
		"vehicle_id", "calendar_year", "age", "session_policy", "session_name",
		"model_year", "reg_class_id", "in_use_fuel_id", "fueling_class",
		"vmt", "vmt_liquid_fuel", "vmt_electricity", "vmt_rebound",
		"fuel_consumption_gallons", "fuel_consumption_kWh",
		"barrels_of_oil", "barrels_of_imported_oil", "session_fatalities",
		"odometer_midyear",
	}
	if err := f.Require(required...); err != nil {
		return nil, err
	}

	var massColumns []string
	for _, col := range f.Columns {
		col = strings.TrimSpace(col)
		if strings.HasSuffix(col, "_metrictons") || strings.HasSuffix(col, "_ustons") {
			massColumns = append(massColumns, col)
		}
	}

	records := make([]*domain.VehicleAnnualRecord, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		r, err := annualRecordFromRow(row, massColumns)
		if err != nil {
			return nil, err
		}
		if err := checkMassIdentity(r); err != nil {
			return nil, fmt.Errorf("%s: vehicle %d year %d: %w", f.Path, r.Key.VehicleID, r.Key.CalendarYear, err)
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Key.Less(records[j].Key) })
	return records, nil
}

func annualRecordFromRow(row tabular.Row, massColumns []string) (*domain.VehicleAnnualRecord, error) {
	id, err := row.Int("vehicle_id")
	if err != nil {
		return nil, err
	}
	year, err := row.Year("calendar_year")
	if err != nil {
		return nil, err
	}
	age, err := row.Year("age")
	if err != nil {
		return nil, err
	}
	modelYear, err := row.Year("model_year")
	if err != nil {
		return nil, err
	}
	regClass, err := domain.ParseRegClassId(row.String("reg_class_id"))
	if err != nil {
		return nil, fmt.Errorf("vehicle %d year %d: %w", id, year, err)
	}
	if age != year-modelYear || age < 0 {
		return nil, fmt.Errorf("vehicle %d year %d: age %d inconsistent with model year %d", id, year, age, modelYear)
	}

	r := &domain.VehicleAnnualRecord{
		Key: domain.RecordKey{
			VehicleID:     id,
			CalendarYear:  year,
			Age:           age,
			SessionPolicy: row.String("session_policy"),
			SessionName:   row.String("session_name"),
			ModelYear:     modelYear,
			RegClassID:    regClass,
			InUseFuelID:   row.String("in_use_fuel_id"),
			FuelingClass:  row.String("fueling_class"),
		},
		Masses: make(map[string]float64, len(massColumns)),
	}

	floatFields := []struct {
		col string
		dst *float64
	}{
		{"vmt", &r.VMT},
		{"vmt_liquid_fuel", &r.VMTLiquidFuel},
		{"vmt_electricity", &r.VMTElectricity},
		{"vmt_rebound", &r.VMTRebound},
		{"fuel_consumption_gallons", &r.FuelConsumptionGallons},
		{"fuel_consumption_kWh", &r.FuelConsumptionKWh},
		{"barrels_of_oil", &r.BarrelsOfOil},
		{"barrels_of_imported_oil", &r.BarrelsOfImportedOil},
		{"session_fatalities", &r.SessionFatalities},
		{"odometer_midyear", &r.OdometerMidYear},
	}
	for _, ff := range floatFields {
		val, err := row.Float(ff.col)
		if err != nil {
			return nil, err
		}
		*ff.dst = val
	}
	for _, col := range massColumns {
		val, err := row.Float(col)
		if err != nil {
			return nil, err
		}
		r.Masses[col] = val
	}
	return r, nil
}

// checkMassIdentity verifies pollutant totals equal vehicle + upstream for
// every pollutant that carries all three columns.
func checkMassIdentity(r *domain.VehicleAnnualRecord) error {
	for col, total := range r.Masses {
		var prefix, suffix string
		switch {
		case strings.HasSuffix(col, "_total_metrictons"):
			prefix, suffix = strings.TrimSuffix(col, "_total_metrictons"), "_metrictons"
		case strings.HasSuffix(col, "_total_ustons"):
			prefix, suffix = strings.TrimSuffix(col, "_total_ustons"), "_ustons"
		default:
			continue
		}
		vehicle, okV := r.Masses[prefix+"_vehicle"+suffix]
		upstream, okU := r.Masses[prefix+"_upstream"+suffix]
		if !okV || !okU {
			continue
		}
		if diff := math.Abs(total - (vehicle + upstream)); diff > massTolerance*math.Max(1, math.Abs(total)) {
			return fmt.Errorf("%s (%g) != vehicle (%g) + upstream (%g)", col, total, vehicle, upstream)
		}
	}
	return nil
}
