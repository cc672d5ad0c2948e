// Package refueling evaluates per-vehicle-type refueling time costs: dollars
// per mile for BEVs as a function of rated range, dollars per gallon for
// liquid-fueled vehicles.
package refueling

import (
	"fmt"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// TemplateName is the banner name of the refueling cost input file.
const TemplateName = "refueling_cost_inputs"

// chargeRateThresholdMiles splits BEV charge rates: at or below the threshold
// one rate applies, above it the other.
const chargeRateThresholdMiles = 200.0

// BEV parameter items. Curve items use all three coefficient columns; scalar
// items use only the constant.
const (
	itemBEVMilesToMidTripCharge = "bev_miles_to_mid_trip_charge"
	itemBEVShareChargedMidTrip  = "bev_share_of_miles_charged_mid_trip"
	itemBEVFixedChargingMinutes = "bev_fixed_charging_minutes"
	itemBEVChargeRateUnder      = "bev_charge_rate_mph_under_threshold"
	itemBEVChargeRateOver       = "bev_charge_rate_mph_over_threshold"
	itemBEVTravelValue          = "bev_travel_value_dollars_per_hour"
)

// Liquid-fuel parameter item suffixes; the prefix is the regulatory class.
const (
	itemLiquidTankGallons       = "_tank_gallons"
	itemLiquidShareRefueled     = "_share_of_tank_refueled"
	itemLiquidFixedMinutes      = "_fixed_refueling_minutes"
	itemLiquidRefuelRate        = "_refuel_rate_gallons_per_minute"
	itemLiquidTravelValue       = "_travel_value_dollars_per_hour"
	itemLiquidShareTimeIncluded = "_share_of_time_included"
)

// curve is one quadratic of the independent variable.
type curve struct {
	xSquared float64
	x        float64
	constant float64
}

func (c curve) at(x float64) float64 {
	return c.xSquared*x*x + c.x*x + c.constant
}

// Model holds the frozen refueling parameters, in the analysis dollar basis.
type Model struct {
	curves map[string]curve
}

// Load reads the refueling template. Rows with a nonzero dollar_basis (the
// travel value items) have their constant normalized with the implicit price
// deflators; coefficient rows are not dollar-denominated.
func Load(f *tabular.File, deflators *deflate.Series) (*Model, error) {
	if err := f.Require("item", "x_squared_factor", "x_factor", "constant", "dollar_basis"); err != nil {
		return nil, err
	}

	m := &Model{curves: make(map[string]curve, f.Len())}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		item := row.String("item")
		if item == "" {
			continue
		}
		xsq, err := row.Float("x_squared_factor")
		if err != nil {
			return nil, err
		}
		x, err := row.Float("x_factor")
		if err != nil {
			return nil, err
		}
		c, err := row.Float("constant")
		if err != nil {
			return nil, err
		}
		basis, err := row.Year("dollar_basis")
		if err != nil {
			return nil, err
		}
		if c, err = deflators.Adjust(c, basis); err != nil {
			return nil, err
		}
		m.curves[item] = curve{xSquared: xsq, x: x, constant: c}
	}
	return m, nil
}

func (m *Model) scalar(item string) float64 {
	return m.curves[item].constant
}

// BEVCostPerMile returns the refueling time cost per mile for a BEV of the
// given rated range.
func (m *Model) BEVCostPerMile(rangeMiles float64) (float64, error) {
	chargeFreq := m.curves[itemBEVMilesToMidTripCharge].at(rangeMiles)
	if chargeFreq <= 0 {
		return 0, fmt.Errorf("refueling: non-positive miles between charges for range %.0f", rangeMiles)
	}
	shareMid := m.curves[itemBEVShareChargedMidTrip].at(rangeMiles)

	chargeRate := m.scalar(itemBEVChargeRateUnder)
	if rangeMiles > chargeRateThresholdMiles {
		chargeRate = m.scalar(itemBEVChargeRateOver)
	}
	if chargeRate <= 0 {
		return 0, fmt.Errorf("refueling: non-positive charge rate for range %.0f", rangeMiles)
	}

	fixedHours := m.scalar(itemBEVFixedChargingMinutes) / 60.0
	travelValue := m.scalar(itemBEVTravelValue)
	return (fixedHours/chargeFreq + shareMid/chargeRate) * travelValue, nil
}

// LiquidCostPerGallon returns the refueling time cost per gallon for a
// liquid-fueled vehicle of one regulatory class.
func (m *Model) LiquidCostPerGallon(regClass domain.RegClassId) (float64, error) {
	prefix := string(regClass)
	tank := m.scalar(prefix + itemLiquidTankGallons)
	shareRefueled := m.scalar(prefix + itemLiquidShareRefueled)
	if tank <= 0 || shareRefueled <= 0 {
		return 0, fmt.Errorf("refueling: no liquid parameters for reg class %q", regClass)
	}
	refuelRate := m.scalar(prefix + itemLiquidRefuelRate)
	if refuelRate <= 0 {
		return 0, fmt.Errorf("refueling: non-positive refuel rate for reg class %q", regClass)
	}
	fixedMinutes := m.scalar(prefix + itemLiquidFixedMinutes)
	travelValue := m.scalar(prefix + itemLiquidTravelValue)
	shareIncluded := m.scalar(prefix + itemLiquidShareTimeIncluded)

	gallonsPerStop := tank * shareRefueled
	hoursPerStop := (fixedMinutes + gallonsPerStop/refuelRate) / 60.0
	return (1.0 / gallonsPerStop) * hoursPerStop * travelValue * shareIncluded, nil
}
