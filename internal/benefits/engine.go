// Package benefits joins action-policy annual aggregates to their no-action
// baseline and monetizes the differences.
package benefits

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/factors"
)

// Engine computes one BenefitsRecord per action-policy annual aggregate.
// Action rows with no same-key no-action baseline contribute nothing.
type Engine struct {
	SCC            *factors.SCCTable
	Criteria       *factors.CriteriaTable
	EnergySecurity *factors.EnergySecurityTable

	// HealthEffects gates the criteria benefit columns.
	HealthEffects bool

	Log zerolog.Logger
}

type baseline struct {
	physical *domain.AnnualPhysical
	cost     *domain.AnnualCost
}

// Compute joins every action row against the no-action baseline with the same
// (calendar_year, reg_class_id, in_use_fuel_id) and emits benefits in
// (session_policy, calendar_year, reg_class_id, in_use_fuel_id) order.
// Monetized benefits follow the no_action − action convention except drive
// value; physical deltas are reported action − no_action so negative means
// avoided.
func (e *Engine) Compute(physical []*domain.AnnualPhysical, costs []*domain.AnnualCost) ([]*domain.BenefitsRecord, error) {
	physicalByKey := make(map[domain.AnnualKey]*domain.AnnualPhysical, len(physical))
	for _, p := range physical {
		physicalByKey[p.Key] = p
	}
	baselines := make(map[domain.AnnualKey]baseline)
	for _, c := range costs {
		if c.Key.SessionPolicy != domain.NoActionPolicy {
			continue
		}
		baselines[c.Key.JoinKey()] = baseline{physical: physicalByKey[c.Key], cost: c}
	}

	var out []*domain.BenefitsRecord
	for _, actionCost := range costs {
		if actionCost.Key.SessionPolicy == domain.NoActionPolicy {
			continue
		}
		base, ok := baselines[actionCost.Key.JoinKey()]
		if !ok || base.physical == nil {
			e.Log.Debug().
				Str("session_policy", actionCost.Key.SessionPolicy).
				Int32("calendar_year", actionCost.Key.CalendarYear).
				Str("reg_class_id", string(actionCost.Key.RegClassID)).
				Str("in_use_fuel_id", actionCost.Key.InUseFuelID).
				Msg("no baseline for action aggregate, skipping")
			continue
		}
		actionPhysical := physicalByKey[actionCost.Key]
		if actionPhysical == nil {
			return nil, fmt.Errorf("benefits: action aggregate %+v has costs but no physical row", actionCost.Key)
		}

		rec, err := e.benefitsFor(actionPhysical, actionCost, base)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out, nil
}

func (e *Engine) benefitsFor(actionPhysical *domain.AnnualPhysical, actionCost *domain.AnnualCost, base baseline) (*domain.BenefitsRecord, error) {
	key := actionCost.Key
	rec := &domain.BenefitsRecord{
		Key:              key,
		GHGBenefits:      make(map[string]float64),
		CriteriaBenefits: make(map[string]float64),
		DeltaPhysical:    deltaPhysical(actionPhysical, base.physical),
	}

	rec.FuelPretaxSavings = base.cost.FuelPretaxCost - actionCost.FuelPretaxCost
	rec.CongestionBenefit = base.cost.CongestionCost - actionCost.CongestionCost
	rec.NoiseBenefit = base.cost.NoiseCost - actionCost.NoiseCost
	rec.MaintenanceBenefit = base.cost.MaintenanceCost - actionCost.MaintenanceCost
	rec.RefuelingBenefit = base.cost.RefuelingCost - actionCost.RefuelingCost
	// drive value is a consumer surplus the action increases, so the sign
	// convention flips
	rec.DriveValueBenefit = actionCost.DriveValueCost - base.cost.DriveValueCost

	avoidedBarrels := base.physical.BarrelsOfImportedOil - actionPhysical.BarrelsOfImportedOil
	perBBL, err := e.EnergySecurity.GetScalar(key.CalendarYear, factors.ColDollarsPerBBL)
	if err != nil {
		return nil, err
	}
	rec.EnergySecurityBenefit = avoidedBarrels * perBBL

	if err := e.climateBenefits(actionPhysical, base.physical, rec); err != nil {
		return nil, err
	}
	if e.HealthEffects && !e.Criteria.Empty() {
		if err := e.criteriaBenefits(actionPhysical, base.physical, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// climateBenefits prices avoided GHG masses at every SCC rate variant.
func (e *Engine) climateBenefits(action, noAction *domain.AnnualPhysical, rec *domain.BenefitsRecord) error {
	vals, err := e.SCC.Get(rec.Key.CalendarYear, factors.SCCColumns()...)
	if err != nil {
		return err
	}
	i := 0
	for _, p := range domain.GHGPollutants {
		avoided := noAction.Masses[p+"_total_metrictons"] - action.Masses[p+"_total_metrictons"]
		for _, rate := range domain.SCCRates {
			benefit := avoided * vals[i]
			i++
			rec.GHGBenefits[p+"_global_"+rate] = benefit
			rec.GHGBenefits["ghg_global_"+rate] += benefit
		}
	}
	return nil
}

// criteriaBenefits prices avoided vehicle and upstream criteria masses with
// the same source routing the cost engine uses, emitting the combined keys.
func (e *Engine) criteriaBenefits(action, noAction *domain.AnnualPhysical, rec *domain.BenefitsRecord) error {
	shares, err := domain.ParseFuelShares(rec.Key.InUseFuelID)
	if err != nil {
		return fmt.Errorf("benefits: %w", err)
	}
	cols := factors.CriteriaColumns()

	for _, fuel := range shares.Ordered() {
		share := shares[fuel]
		vehicleSource := string(rec.Key.RegClassID) + " " + fuel
		upstreamSource := factors.SourceRefinery
		if fuel == domain.ElectricityFuelID {
			upstreamSource = factors.SourceEGU
		}
		vehicleVals, err := e.Criteria.Get(rec.Key.CalendarYear, vehicleSource, cols...)
		if err != nil {
			return err
		}
		upstreamVals, err := e.Criteria.Get(rec.Key.CalendarYear, upstreamSource, cols...)
		if err != nil {
			return err
		}

		i := 0
		for _, p := range domain.CriteriaPollutants {
			avoidedVehicle := (noAction.Masses[p+"_vehicle_ustons"] - action.Masses[p+"_vehicle_ustons"]) * share
			avoidedUpstream := (noAction.Masses[p+"_upstream_ustons"] - action.Masses[p+"_upstream_ustons"]) * share
			for _, study := range domain.CriteriaStudies {
				for _, rate := range domain.CriteriaRates {
					benefit := avoidedVehicle*vehicleVals[i] + avoidedUpstream*upstreamVals[i]
					i++
					rec.CriteriaBenefits[p+"_"+study+"_"+rate] += benefit
				}
			}
		}
	}
	return nil
}

// deltaPhysical reports action − no_action for every physical quantity, so a
// negative mass delta reads as an avoided emission.
func deltaPhysical(action, noAction *domain.AnnualPhysical) map[string]float64 {
	delta := map[string]float64{
		"vmt":                      action.VMT - noAction.VMT,
		"vmt_liquid_fuel":          action.VMTLiquidFuel - noAction.VMTLiquidFuel,
		"vmt_electricity":          action.VMTElectricity - noAction.VMTElectricity,
		"vmt_rebound":              action.VMTRebound - noAction.VMTRebound,
		"fuel_consumption_gallons": action.FuelConsumptionGallons - noAction.FuelConsumptionGallons,
		"fuel_consumption_kWh":     action.FuelConsumptionKWh - noAction.FuelConsumptionKWh,
		"barrels_of_oil":           action.BarrelsOfOil - noAction.BarrelsOfOil,
		"barrels_of_imported_oil":  action.BarrelsOfImportedOil - noAction.BarrelsOfImportedOil,
		"session_fatalities":       action.SessionFatalities - noAction.SessionFatalities,
	}
	for col := range action.Masses {
		delta[col] = action.Masses[col] - noAction.Masses[col]
	}
	for col := range noAction.Masses {
		if _, ok := delta[col]; !ok {
			delta[col] = -noAction.Masses[col]
		}
	}
	return delta
}
