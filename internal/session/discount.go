package session

import (
	"sort"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/discount"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/output"
)

// benefitCategories lists the scalar benefit stream names in output order.
var benefitCategories = []string{
	"fuel_pretax_savings",
	"energy_security_benefit",
	"congestion_benefit",
	"noise_benefit",
	"maintenance_benefit",
	"refueling_benefit",
	"drive_value_benefit",
}

func scalarBenefit(r *domain.BenefitsRecord, category string) float64 {
	switch category {
	case "fuel_pretax_savings":
		return r.FuelPretaxSavings
	case "energy_security_benefit":
		return r.EnergySecurityBenefit
	case "congestion_benefit":
		return r.CongestionBenefit
	case "noise_benefit":
		return r.NoiseBenefit
	case "maintenance_benefit":
		return r.MaintenanceBenefit
	case "refueling_benefit":
		return r.RefuelingBenefit
	case "drive_value_benefit":
		return r.DriveValueBenefit
	}
	return 0
}

// discountBenefits sums each benefit category to one annual stream per
// action policy over the analysis horizon, then fans every stream out over
// all requested rates and both timing conventions. The discounter does not
// pair rates with categories; downstream consumers select the pairing.
func (r *Runner) discountBenefits(rows []*domain.BenefitsRecord, healthEffects bool) ([]output.PresentValueRow, error) {
	years := r.settings.AnalysisYears()
	if len(years) == 0 || len(rows) == 0 {
		return nil, nil
	}
	yearIndex := make(map[int32]int, len(years))
	for i, y := range years {
		yearIndex[y] = i
	}

	categories := append([]string(nil), benefitCategories...)
	for _, k := range domain.GHGCostKeys() {
		categories = append(categories, k+"_benefit")
	}
	if healthEffects {
		for _, k := range domain.CriteriaBenefitKeys() {
			categories = append(categories, k+"_benefit")
		}
	}

	type streamKey struct {
		policy   string
		category string
	}
	streams := make(map[streamKey][]float64)
	ensure := func(k streamKey) []float64 {
		s, ok := streams[k]
		if !ok {
			s = make([]float64, len(years))
			streams[k] = s
		}
		return s
	}

	var policies []string
	seenPolicy := make(map[string]bool)
	for _, row := range rows {
		if !seenPolicy[row.Key.SessionPolicy] {
			seenPolicy[row.Key.SessionPolicy] = true
			policies = append(policies, row.Key.SessionPolicy)
		}
		i, ok := yearIndex[row.Key.CalendarYear]
		if !ok {
			continue
		}
		for _, category := range benefitCategories {
			ensure(streamKey{row.Key.SessionPolicy, category})[i] += scalarBenefit(row, category)
		}
		for _, k := range domain.GHGCostKeys() {
			ensure(streamKey{row.Key.SessionPolicy, k + "_benefit"})[i] += row.GHGBenefits[k]
		}
		if healthEffects {
			for _, k := range domain.CriteriaBenefitKeys() {
				ensure(streamKey{row.Key.SessionPolicy, k + "_benefit"})[i] += row.CriteriaBenefits[k]
			}
		}
	}
	sort.Strings(policies)

	rates := discount.AllRates()
	series := []domain.DiscountSeries{domain.SeriesEndOfYear, domain.SeriesMidYear}

	var out []output.PresentValueRow
	for _, policy := range policies {
		for _, category := range categories {
			values, ok := streams[streamKey{policy, category}]
			if !ok {
				continue
			}
			for _, sv := range series {
				stream := discount.Stream{
					BaseYear: r.settings.AnalysisInitialYear,
					Series:   sv,
					Years:    years,
					Values:   values,
				}
				results, err := discount.FanOut(stream, rates)
				if err != nil {
					return nil, err
				}
				for _, res := range results {
					for i, y := range years {
						out = append(out, output.PresentValueRow{
							SessionPolicy:          policy,
							Category:               category,
							DiscountRate:           res.Rate,
							Series:                 sv,
							CalendarYear:           y,
							Value:                  values[i],
							CumulativePresentValue: res.Cumulative[i],
							PresentValue:           res.PresentValue,
							Annualized:             res.Annualized,
						})
					}
				}
			}
		}
	}
	return out, nil
}
