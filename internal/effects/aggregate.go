package effects

import (
	"sort"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

func annualKey(k domain.RecordKey) domain.AnnualKey {
	return domain.AnnualKey{
		SessionPolicy: k.SessionPolicy,
		CalendarYear:  k.CalendarYear,
		RegClassID:    k.RegClassID,
		InUseFuelID:   k.InUseFuelID,
	}
}

// AggregatePhysical rolls vehicle-year records up to annual aggregates, one
// per (session_policy, calendar_year, reg_class_id, in_use_fuel_id), in key
// order.
func AggregatePhysical(records []*domain.VehicleAnnualRecord) []*domain.AnnualPhysical {
	byKey := make(map[domain.AnnualKey]*domain.AnnualPhysical)
	for _, r := range records {
		key := annualKey(r.Key)
		agg, ok := byKey[key]
		if !ok {
			agg = &domain.AnnualPhysical{Key: key}
			byKey[key] = agg
		}
		agg.Accumulate(r)
	}
	return sortedPhysical(byKey)
}

// AggregateCosts rolls monetized vehicle-year effects up to annual aggregates
// in key order.
func AggregateCosts(costs []*domain.CostEffectsRecord) []*domain.AnnualCost {
	byKey := make(map[domain.AnnualKey]*domain.AnnualCost)
	for _, c := range costs {
		key := annualKey(c.Key)
		agg, ok := byKey[key]
		if !ok {
			agg = &domain.AnnualCost{Key: key, MonetizedEffects: domain.NewMonetizedEffects()}
			byKey[key] = agg
		}
		agg.Accumulate(c.MonetizedEffects)
	}
	out := make([]*domain.AnnualCost, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

func sortedPhysical(byKey map[domain.AnnualKey]*domain.AnnualPhysical) []*domain.AnnualPhysical {
	out := make([]*domain.AnnualPhysical, 0, len(byKey))
	for _, agg := range byKey {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}
