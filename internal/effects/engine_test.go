package effects

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/factors"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/maintenance"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/refueling"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

func loadFixture(t *testing.T, name, body string) *tabular.File {
	t.Helper()
	content := "input_template_name:," + name + ",input_template_version:,0.22\n" + body
	path := filepath.Join(t.TempDir(), name+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := tabular.ReadTemplate(path, name, "0.22")
	require.NoError(t, err)
	return f
}

func fixtureDeflators(t *testing.T) *deflate.Series {
	t.Helper()
	f := loadFixture(t, deflate.ImplicitPriceTemplateName,
		"calendar_year,price_deflator\n2020,100.0\n")
	s, err := deflate.LoadSeries(f, deflate.ImplicitPriceTemplateName, 2020)
	require.NoError(t, err)
	return s
}

// constantRow renders a factor row where every named column holds value.
func constantRow(prefix string, n int, value float64) string {
	fields := []string{prefix}
	for i := 0; i < n; i++ {
		fields = append(fields, fmt.Sprint(value))
	}
	return strings.Join(fields, ",")
}

// buildEngine loads a full fixture table set: SCC at $200/t, criteria at
// $1000/uston, oil at $15/bbl, car congestion 0.10 and noise 0.01 per mile,
// gasoline at $3.50 retail / $2.80 pretax, a $100-per-10000-mile maintenance
// schedule and the standard refueling parameters.
func buildEngine(t *testing.T, healthEffects bool) *Engine {
	t.Helper()
	deflators := fixtureDeflators(t)

	sccCols := factors.SCCColumns()
	sccFile := loadFixture(t, factors.SCCTemplateName,
		"calendar_year,dollar_basis,"+strings.Join(sccCols, ",")+"\n"+
			constantRow("2025,2020", len(sccCols), 200)+"\n")
	scc, err := factors.LoadSCC(sccFile, deflators)
	require.NoError(t, err)

	critCols := factors.CriteriaColumns()
	critHeader := "calendar_year,source_id,dollar_basis," + strings.Join(critCols, ",")
	critValue := 1000.0
	if !healthEffects {
		critValue = 0
	}
	critFile := loadFixture(t, factors.CriteriaTemplateName,
		critHeader+"\n"+
			constantRow("2025,car pump gasoline,2020", len(critCols), critValue)+"\n"+
			constantRow("2025,egu,2020", len(critCols), critValue)+"\n"+
			constantRow("2025,refinery,2020", len(critCols), critValue)+"\n")
	criteria, err := factors.LoadCriteria(critFile, deflators)
	require.NoError(t, err)

	esFile := loadFixture(t, factors.EnergySecurityTemplateName,
		"calendar_year,dollar_basis,dollars_per_bbl,"+factors.ColOilImportReduction+"\n"+
			"2025,2020,15.0,0.9\n")
	energySecurity, err := factors.LoadEnergySecurity(esFile, deflators)
	require.NoError(t, err)

	cnFile := loadFixture(t, factors.CongestionNoiseTemplateName,
		"reg_class_id,dollar_basis,congestion_cost_dollars_per_mile,noise_cost_dollars_per_mile\n"+
			"car,2020,0.10,0.01\n"+
			"truck,2020,0.20,0.02\n")
	congestion, err := factors.LoadCongestionNoise(cnFile, deflators)
	require.NoError(t, err)

	fpFile := loadFixture(t, factors.FuelPricesTemplateName,
		"calendar_year,fuel_id,dollar_basis,retail_dollars_per_unit,pretax_dollars_per_unit\n"+
			"2025,pump gasoline,2020,3.50,2.80\n"+
			"2025,US electricity,2020,0.12,0.10\n")
	fuelPrices, err := factors.LoadFuelPrices(fpFile, deflators)
	require.NoError(t, err)

	maintFile := loadFixture(t, maintenance.TemplateName,
		"item,miles_per_event_ICE,miles_per_event_HEV,miles_per_event_PHEV,miles_per_event_BEV,dollars_per_event,dollar_basis\n"+
			"oil_change,10000,10000,10000,100000,100,2020\n")
	curves, err := maintenance.Load(maintFile, deflators)
	require.NoError(t, err)

	refFile := loadFixture(t, refueling.TemplateName,
		"item,x_squared_factor,x_factor,constant,dollar_basis\n"+
			"bev_miles_to_mid_trip_charge,0,0,300,0\n"+
			"bev_share_of_miles_charged_mid_trip,0,0,0.1,0\n"+
			"bev_fixed_charging_minutes,0,0,10,0\n"+
			"bev_charge_rate_mph_under_threshold,0,0,30,0\n"+
			"bev_charge_rate_mph_over_threshold,0,0,60,0\n"+
			"bev_travel_value_dollars_per_hour,0,0,25,2020\n"+
			"car_tank_gallons,0,0,15,0\n"+
			"car_share_of_tank_refueled,0,0,0.85,0\n"+
			"car_fixed_refueling_minutes,0,0,5,0\n"+
			"car_refuel_rate_gallons_per_minute,0,0,7,0\n"+
			"car_travel_value_dollars_per_hour,0,0,25,2020\n"+
			"car_share_of_time_included,0,0,0.5,0\n")
	model, err := refueling.Load(refFile, deflators)
	require.NoError(t, err)

	return &Engine{
		SCC:             scc,
		Criteria:        criteria,
		EnergySecurity:  energySecurity,
		CongestionNoise: congestion,
		FuelPrices:      fuelPrices,
		Maintenance:     curves,
		Refueling:       model,
		RatedRangeMiles: map[int]float64{2: 250},
		HealthEffects:   healthEffects,
	}
}

func gasolineRecord() *domain.VehicleAnnualRecord {
	return &domain.VehicleAnnualRecord{
		Key: domain.RecordKey{
			VehicleID:     1,
			CalendarYear:  2025,
			Age:           1,
			SessionPolicy: domain.NoActionPolicy,
			SessionName:   "test",
			ModelYear:     2024,
			RegClassID:    domain.RegClassCar,
			InUseFuelID:   "{'pump gasoline': 1.0}",
			FuelingClass:  "ICE",
		},
		VMT:                    12000,
		VMTLiquidFuel:          12000,
		VMTRebound:             1000,
		FuelConsumptionGallons: 300,
		BarrelsOfOil:           300.0 / 42,
		BarrelsOfImportedOil:   0.9 * 300.0 / 42,
		OdometerMidYear:        18000,
		Masses: map[string]float64{
			"co2_total_metrictons": 10,
			"ch4_total_metrictons": 0.001,
			"n2o_total_metrictons": 0.0005,
			"pm25_vehicle_ustons":  0.002,
			"pm25_upstream_ustons": 0.001,
			"nox_vehicle_ustons":   0.01,
			"nox_upstream_ustons":  0.004,
			"sox_vehicle_ustons":   0.0002,
			"sox_upstream_ustons":  0.003,
		},
	}
}

func electricRecord() *domain.VehicleAnnualRecord {
	return &domain.VehicleAnnualRecord{
		Key: domain.RecordKey{
			VehicleID:     2,
			CalendarYear:  2025,
			Age:           1,
			SessionPolicy: "action_1",
			SessionName:   "test",
			ModelYear:     2024,
			RegClassID:    domain.RegClassCar,
			InUseFuelID:   "{'US electricity': 1.0}",
			FuelingClass:  "BEV",
		},
		VMT:                12000,
		VMTElectricity:     12000,
		FuelConsumptionKWh: 30000,
		OdometerMidYear:    18000,
		Masses: map[string]float64{
			"co2_total_metrictons": 0,
		},
	}
}

func TestCostEffectsFuelCost(t *testing.T) {
	engine := buildEngine(t, false)

	out, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)

	// 300 gallons at $3.50 retail / $2.80 pretax
	assert.InDelta(t, 1050.0, out.FuelRetailCost, 1e-9)
	assert.InDelta(t, 840.0, out.FuelPretaxCost, 1e-9)
}

func TestCostEffectsEnergySecurity(t *testing.T) {
	engine := buildEngine(t, false)

	gasoline, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)
	assert.InDelta(t, 300.0/42*15, gasoline.EnergySecurityCost, 1e-9)

	electric, err := engine.CostEffects(electricRecord())
	require.NoError(t, err)
	assert.Zero(t, electric.EnergySecurityCost, "electricity carries no oil premium")
	assert.InDelta(t, 30000*0.12, electric.FuelRetailCost, 1e-9)
}

func TestCostEffectsCongestionNoiseAndClimate(t *testing.T) {
	engine := buildEngine(t, false)

	out, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)

	assert.InDelta(t, 12000*0.10, out.CongestionCost, 1e-9)
	assert.InDelta(t, 12000*0.01, out.NoiseCost, 1e-9)

	assert.InDelta(t, 10*200.0, out.GHGCosts["co2_global_3.0"], 1e-9)
	assert.InDelta(t, (10+0.001+0.0005)*200.0, out.GHGCosts["ghg_global_3.0"], 1e-9)
	for _, rate := range domain.SCCRates {
		assert.Contains(t, out.GHGCosts, "ghg_global_"+rate)
	}
}

func TestCostEffectsCriteriaDamages(t *testing.T) {
	engine := buildEngine(t, true)

	out, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)

	vehicle := out.CriteriaCosts["pm25_vehicle_low_3.0"]
	upstream := out.CriteriaCosts["pm25_upstream_low_3.0"]
	combined := out.CriteriaCosts["pm25_low_3.0"]
	assert.InDelta(t, 0.002*1000, vehicle, 1e-9)
	assert.InDelta(t, 0.001*1000, upstream, 1e-9)
	assert.InDelta(t, vehicle+upstream, combined, 1e-12)
}

func TestCostEffectsCriteriaDisabled(t *testing.T) {
	// a zero-sum criteria table disables health effects entirely and the
	// pipeline still completes
	engine := buildEngine(t, false)
	engine.HealthEffects = true

	out, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)
	assert.Empty(t, out.CriteriaCosts)
}

func TestCostEffectsMaintenanceRefuelingDriveValue(t *testing.T) {
	engine := buildEngine(t, false)

	out, err := engine.CostEffects(gasolineRecord())
	require.NoError(t, err)

	// slope 2e-7 at mid-year odometer 18000 over 12000 miles
	assert.InDelta(t, 2e-7*18000*12000, out.MaintenanceCost, 1e-9)

	gallonsPerStop := 15 * 0.85
	perGallon := (1 / gallonsPerStop) * ((5 + gallonsPerStop/7) / 60) * 25 * 0.5
	assert.InDelta(t, perGallon*300, out.RefuelingCost, 1e-9)

	assert.InDelta(t, 0.5*1000*1050.0/12000, out.DriveValueCost, 1e-9)
}

func TestCostEffectsBEVRefuelingUsesRatedRange(t *testing.T) {
	engine := buildEngine(t, false)

	out, err := engine.CostEffects(electricRecord())
	require.NoError(t, err)

	// vehicle 2 has a 250-mile rated range, over the charge rate threshold
	perMile := ((10.0/60)/300 + 0.1/60) * 25
	assert.InDelta(t, perMile*12000, out.RefuelingCost, 1e-6)
}

func TestCostEffectsRejectsBadFuelID(t *testing.T) {
	engine := buildEngine(t, false)
	r := gasolineRecord()
	r.Key.InUseFuelID = "{'pump gasoline': 0.5}"
	_, err := engine.CostEffects(r)
	var ferr *domain.InvalidFuelIDError
	require.ErrorAs(t, err, &ferr)
}
