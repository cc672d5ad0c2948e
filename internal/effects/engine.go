package effects

import (
	"fmt"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/factors"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/maintenance"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/refueling"
)

// defaultBEVRangeMiles stands in when a plug-in vehicle has no rated range on
// file.
const defaultBEVRangeMiles = 300.0

// Engine turns physical vehicle-year records into monetized cost effects. All
// referenced tables are loaded and frozen before the first call; the engine
// itself holds no mutable state and never accumulates across records.
type Engine struct {
	SCC             *factors.SCCTable
	Criteria        *factors.CriteriaTable
	EnergySecurity  *factors.EnergySecurityTable
	CongestionNoise *factors.CongestionNoiseTable
	FuelPrices      *factors.FuelPriceTable
	Maintenance     *maintenance.Curves
	Refueling       *refueling.Model

	// RatedRangeMiles maps vehicle_id to BEV rated range for the refueling
	// model. Vehicles absent from the map use defaultBEVRangeMiles.
	RatedRangeMiles map[int]float64

	// HealthEffects gates the criteria damage columns.
	HealthEffects bool
}

// CostEffects computes the monetized counterpart of one vehicle-year record.
// The result carries a zero discount rate and a one-period end-of-year stream
// until the discounter fans it out.
func (e *Engine) CostEffects(r *domain.VehicleAnnualRecord) (*domain.CostEffectsRecord, error) {
	shares, err := domain.ParseFuelShares(r.Key.InUseFuelID)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d year %d: %w", r.Key.VehicleID, r.Key.CalendarYear, err)
	}
	ptype, err := domain.ParsePowertrainType(r.Key.FuelingClass)
	if err != nil {
		return nil, fmt.Errorf("vehicle %d year %d: %w", r.Key.VehicleID, r.Key.CalendarYear, err)
	}

	out := &domain.CostEffectsRecord{
		Key:              r.Key,
		DiscountRate:     0,
		Series:           domain.SeriesEndOfYear,
		Periods:          1,
		MonetizedEffects: domain.NewMonetizedEffects(),
	}

	if err := e.fuelAndEnergySecurity(r, shares, out); err != nil {
		return nil, err
	}
	e.congestionAndNoise(r, out)
	if err := e.climateDamages(r, out); err != nil {
		return nil, err
	}
	if e.HealthEffects && !e.Criteria.Empty() {
		if err := e.criteriaDamages(r, shares, out); err != nil {
			return nil, err
		}
	}

	curve := e.Maintenance.For(ptype)
	out.MaintenanceCost = curve.CostForYear(r.OdometerMidYear, r.VMT)

	if err := e.refuelingCost(r, ptype, out); err != nil {
		return nil, err
	}

	// rule of half: rebound miles are valued at half the retail fuel cost
	// per mile, since the marginal rebound mile is worth just under its cost
	if r.VMT > 0 {
		out.DriveValueCost = 0.5 * r.VMTRebound * out.FuelRetailCost / r.VMT
	}
	return out, nil
}

// fuelAndEnergySecurity prices the record's consumption fuel by fuel. Energy
// security applies to liquid fuels only: imported-oil exposure is gallons
// converted to barrels times the per-barrel premium.
func (e *Engine) fuelAndEnergySecurity(r *domain.VehicleAnnualRecord, shares domain.FuelShares, out *domain.CostEffectsRecord) error {
	year := r.Key.CalendarYear
	var liquidShare float64
	for _, fuel := range shares.Ordered() {
		share := shares[fuel]
		retail, pretax, err := e.FuelPrices.Get(year, fuel)
		if err != nil {
			return err
		}
		quantity := r.FuelConsumptionGallons * share
		if fuel == domain.ElectricityFuelID {
			quantity = r.FuelConsumptionKWh * share
		} else {
			liquidShare += share
		}
		out.FuelRetailCost += quantity * retail
		out.FuelPretaxCost += quantity * pretax
	}

	if liquidShare > 0 && r.FuelConsumptionGallons > 0 {
		perBBL, err := e.EnergySecurity.GetScalar(year, factors.ColDollarsPerBBL)
		if err != nil {
			return err
		}
		barrels := r.FuelConsumptionGallons * liquidShare / domain.GallonsPerBarrel
		out.EnergySecurityCost = barrels * perBBL
	}
	return nil
}

func (e *Engine) congestionAndNoise(r *domain.VehicleAnnualRecord, out *domain.CostEffectsRecord) {
	vals := e.CongestionNoise.Get(r.Key.RegClassID, factors.ColCongestionPerMile, factors.ColNoisePerMile)
	out.CongestionCost = r.VMT * vals[0]
	out.NoiseCost = r.VMT * vals[1]
}

// climateDamages prices total GHG masses at every SCC rate variant and sums
// the per-rate ghg_ columns.
func (e *Engine) climateDamages(r *domain.VehicleAnnualRecord, out *domain.CostEffectsRecord) error {
	vals, err := e.SCC.Get(r.Key.CalendarYear, factors.SCCColumns()...)
	if err != nil {
		return err
	}
	i := 0
	for _, p := range domain.GHGPollutants {
		mass := r.Mass(p + "_total_metrictons")
		for _, rate := range domain.SCCRates {
			cost := mass * vals[i]
			i++
			out.GHGCosts[p+"_global_"+rate] = cost
			out.GHGCosts["ghg_global_"+rate] += cost
		}
	}
	return nil
}

// criteriaDamages prices vehicle and upstream criteria masses separately with
// source-specific factors, then emits the combined totals. Vehicle emissions
// price at the "<reg_class> <fuel>" source; upstream emissions at "egu" for
// electricity and "refinery" for everything else.
func (e *Engine) criteriaDamages(r *domain.VehicleAnnualRecord, shares domain.FuelShares, out *domain.CostEffectsRecord) error {
	year := r.Key.CalendarYear
	cols := factors.CriteriaColumns()

	for _, fuel := range shares.Ordered() {
		share := shares[fuel]
		vehicleSource := string(r.Key.RegClassID) + " " + fuel
		upstreamSource := factors.SourceRefinery
		if fuel == domain.ElectricityFuelID {
			upstreamSource = factors.SourceEGU
		}
		vehicleVals, err := e.Criteria.Get(year, vehicleSource, cols...)
		if err != nil {
			return err
		}
		upstreamVals, err := e.Criteria.Get(year, upstreamSource, cols...)
		if err != nil {
			return err
		}

		i := 0
		for _, p := range domain.CriteriaPollutants {
			vehicleMass := r.Mass(p+"_vehicle_ustons") * share
			upstreamMass := r.Mass(p+"_upstream_ustons") * share
			for _, study := range domain.CriteriaStudies {
				for _, rate := range domain.CriteriaRates {
					vehicleCost := vehicleMass * vehicleVals[i]
					upstreamCost := upstreamMass * upstreamVals[i]
					i++
					out.CriteriaCosts[p+"_vehicle_"+study+"_"+rate] += vehicleCost
					out.CriteriaCosts[p+"_upstream_"+study+"_"+rate] += upstreamCost
					out.CriteriaCosts[p+"_"+study+"_"+rate] += vehicleCost + upstreamCost
				}
			}
		}
	}
	return nil
}

// refuelingCost values time spent charging or at the pump. Plug-ins pay the
// per-mile charging cost on electric miles; anything burning liquid fuel pays
// the per-gallon cost on gallons.
func (e *Engine) refuelingCost(r *domain.VehicleAnnualRecord, ptype domain.PowertrainType, out *domain.CostEffectsRecord) error {
	if ptype.IsPlugIn() && r.VMTElectricity > 0 {
		rangeMiles := e.RatedRangeMiles[r.Key.VehicleID]
		if rangeMiles <= 0 {
			rangeMiles = defaultBEVRangeMiles
		}
		perMile, err := e.Refueling.BEVCostPerMile(rangeMiles)
		if err != nil {
			return err
		}
		out.RefuelingCost += perMile * r.VMTElectricity
	}
	if r.FuelConsumptionGallons > 0 {
		perGallon, err := e.Refueling.LiquidCostPerGallon(r.Key.RegClassID)
		if err != nil {
			return err
		}
		out.RefuelingCost += perGallon * r.FuelConsumptionGallons
	}
	return nil
}
