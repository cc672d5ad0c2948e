package powertrain

import (
	"fmt"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// VehiclesTemplateName is the banner name of the vehicle descriptor input
// file.
const VehiclesTemplateName = "vehicles"

// LoadVehicles reads vehicle descriptors. Flag columns are 0/1 cells; absent
// flag columns read as false so older vehicle files stay loadable.
func LoadVehicles(f *tabular.File) ([]*Vehicle, error) {
	required := []string{
		"vehicle_id", "model_year", "reg_class_id", "powertrain_type",
		"drive_system", "curbweight_lbs", "battery_kwh", "total_emachine_kw",
		"engine_cylinders", "engine_displacement_liters", "footprint_ft2",
	}
	if err := f.Require(required...); err != nil {
		return nil, err
	}

	vehicles := make([]*Vehicle, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		v, err := vehicleFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

func vehicleFromRow(row tabular.Row) (*Vehicle, error) {
	id, err := row.Int("vehicle_id")
	if err != nil {
		return nil, err
	}
	modelYear, err := row.Year("model_year")
	if err != nil {
		return nil, err
	}
	regClass, err := domain.ParseRegClassId(row.String("reg_class_id"))
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", id, err)
	}
	ptype, err := domain.ParsePowertrainType(row.String("powertrain_type"))
	if err != nil {
		return nil, fmt.Errorf("vehicle %d: %w", id, err)
	}
	if ptype == domain.PowertrainALL || ptype == domain.PowertrainPEV {
		return nil, fmt.Errorf("vehicle %d: %w", id,
			&domain.ConfigurationError{Field: "powertrain_type", Value: string(ptype)})
	}

	v := &Vehicle{
		VehicleID:          id,
		ModelYear:          modelYear,
		RegClassID:         regClass,
		MarketClassID:      row.String("market_class_id"),
		BaseYearCertFuelID: row.String("base_year_cert_fuel_id"),
		Powertrain:         ptype,
		DriveSystem:        row.String("drive_system"),
		CostCurveClass:     row.String("cost_curve_class"),
	}
	if v.DriveSystem != Drive2WD && v.DriveSystem != DriveAWD {
		return nil, fmt.Errorf("vehicle %d: %w", id,
			&domain.ConfigurationError{Field: "drive_system", Value: v.DriveSystem})
	}

	floatFields := []struct {
		col string
		dst *float64
	}{
		{"curbweight_lbs", &v.CurbweightLbs},
		{"battery_kwh", &v.BatteryKWh},
		{"total_emachine_kw", &v.TotalEMachineKW},
		{"engine_displacement_liters", &v.EngineDisplacementLiters},
		{"footprint_ft2", &v.FootprintFt2},
		{"rated_range_miles", &v.RatedRangeMiles},
		{"sales", &v.Sales},
	}
	for _, ff := range floatFields {
		val, err := row.Float(ff.col)
		if err != nil {
			return nil, err
		}
		*ff.dst = val
	}
	if v.EngineCylinders, err = row.Int("engine_cylinders"); err != nil {
		return nil, err
	}

	boolFields := []struct {
		col string
		dst *bool
	}{
		{"high_eff_alternator", &v.Flags.HighEffAlternator},
		{"start_stop", &v.Flags.StartStop},
		{"deac_pd", &v.Flags.DeacPD},
		{"deac_fc", &v.Flags.DeacFC},
		{"cegr", &v.Flags.CEGR},
		{"atk2", &v.Flags.ATK2},
		{"gdi", &v.Flags.GDI},
		{"turb11", &v.Flags.Turb11},
		{"turb12", &v.Flags.Turb12},
		{"trx10", &v.Flags.TRX10},
		{"trx11", &v.Flags.TRX11},
		{"trx12", &v.Flags.TRX12},
		{"trx21", &v.Flags.TRX21},
		{"trx22", &v.Flags.TRX22},
		{"ecvt", &v.Flags.ECVT},
		{"diesel_flag", &v.Flags.Diesel},
	}
	for _, bf := range boolFields {
		val, err := row.Bool(bf.col)
		if err != nil {
			return nil, err
		}
		*bf.dst = val
	}
	return v, nil
}
