// Package maintenance builds dollars-per-mile maintenance cost curves from
// event-based schedules.
//
// The schedule file lists maintenance events with a service interval per
// powertrain type and a cost per event. The builder spreads each event over
// odometer milestones, accumulates total spend, and fits a linear
// dollars-per-mile function through the origin whose integral preserves the
// schedule's total: zero cost at odometer zero rising to a maximum at the
// last milestone, which is how a per-mile schedule should weight annual VMT.
package maintenance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// TemplateName is the banner name of the maintenance schedule input file.
const TemplateName = "maintenance_cost"

// milestoneStep is the odometer granularity of the accumulation grid.
const milestoneStep = 100.0

// scheduled powertrain columns; MHEV shares the HEV schedule.
var scheduleTypes = []domain.PowertrainType{
	domain.PowertrainICE,
	domain.PowertrainHEV,
	domain.PowertrainPHEV,
	domain.PowertrainBEV,
}

// Curve is the fitted dollars-per-mile function of odometer miles for one
// powertrain type.
type Curve struct {
	Slope     float64
	Intercept float64
}

// PerMile evaluates the curve at an odometer reading.
func (c Curve) PerMile(odometer float64) float64 {
	return c.Slope*odometer + c.Intercept
}

// CostForYear returns dollars spent over miles driven in one year at a
// mid-year odometer reading.
func (c Curve) CostForYear(odometerMidYear, miles float64) float64 {
	return c.PerMile(odometerMidYear) * miles
}

// Curves holds one fitted curve per powertrain type.
type Curves struct {
	byType map[domain.PowertrainType]Curve
}

// For returns the curve for a powertrain type. MHEV maps onto the HEV
// schedule; the file does not carry a separate mild-hybrid column.
func (cs *Curves) For(p domain.PowertrainType) Curve {
	if p == domain.PowertrainMHEV {
		p = domain.PowertrainHEV
	}
	return cs.byType[p]
}

type event struct {
	milesPerEvent   map[domain.PowertrainType]float64
	dollarsPerEvent float64
}

// Load reads the maintenance schedule template and builds the per-powertrain
// curves. Event costs are normalized with the implicit price deflators.
func Load(f *tabular.File, deflators *deflate.Series) (*Curves, error) {
	required := []string{"item", "dollars_per_event", "dollar_basis"}
	for _, p := range scheduleTypes {
		required = append(required, "miles_per_event_"+string(p))
	}
	if err := f.Require(required...); err != nil {
		return nil, err
	}
	f.DropZeroDollarBasis()

	events := make([]event, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		basis, err := row.Year("dollar_basis")
		if err != nil {
			return nil, err
		}
		dollars, err := row.Float("dollars_per_event")
		if err != nil {
			return nil, err
		}
		if dollars, err = deflators.Adjust(dollars, basis); err != nil {
			return nil, err
		}
		ev := event{
			milesPerEvent:   make(map[domain.PowertrainType]float64, len(scheduleTypes)),
			dollarsPerEvent: dollars,
		}
		for _, p := range scheduleTypes {
			miles, err := row.Float("miles_per_event_" + string(p))
			if err != nil {
				return nil, err
			}
			ev.milesPerEvent[p] = miles
		}
		events = append(events, ev)
	}

	// the accumulation horizon is the largest interval anywhere in the
	// schedule, shared by every powertrain so the fitted slopes are comparable
	maxMiles := 0.0
	for _, ev := range events {
		for _, p := range scheduleTypes {
			if interval := ev.milesPerEvent[p]; interval > maxMiles {
				maxMiles = interval
			}
		}
	}

	cs := &Curves{byType: make(map[domain.PowertrainType]Curve, len(scheduleTypes))}
	for _, p := range scheduleTypes {
		cs.byType[p] = fitCurve(events, p, maxMiles)
	}
	return cs, nil
}

// fitCurve accumulates per-event spend over 100-mile milestones and fits the
// equal-area triangle: slope = total / (0.5 * maxMiles^2), intercept 0.
func fitCurve(events []event, p domain.PowertrainType, maxMiles float64) Curve {
	if maxMiles <= 0 {
		return Curve{}
	}

	n := int(maxMiles / milestoneStep)
	spend := make([]float64, n+1)
	for _, ev := range events {
		interval := ev.milesPerEvent[p]
		if interval <= 0 {
			continue
		}
		for i := 1; i <= n; i++ {
			m := float64(i) * milestoneStep
			if remainderIsZero(m, interval) {
				spend[i] += ev.dollarsPerEvent
			}
		}
	}
	floats.CumSum(spend, append([]float64(nil), spend...))
	total := spend[n]

	return Curve{Slope: total / (0.5 * maxMiles * maxMiles)}
}

// remainderIsZero reports m % interval == 0 on the 100-mile grid without
// float modulo noise.
func remainderIsZero(m, interval float64) bool {
	k := int(m / interval)
	return float64(k)*interval == m || float64(k+1)*interval == m
}
