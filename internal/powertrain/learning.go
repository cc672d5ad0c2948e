package powertrain

import (
	"fmt"
	"math"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Learning parameter item names in the cost definition file. Each is a
// constant-valued expression looked up per powertrain grouping (ICE or PEV).
const (
	itemLearningRate       = "learning_rate"
	itemLearningStart      = "learning_start"
	itemLegacySalesScaler  = "legacy_sales_learning_scaler"
	itemSalesScaler        = "sales_scaler"
	itemGWhLearningCurve   = "battery_GWh_learning_curve"
	itemGWhLDNoIRA         = "cumulative_GWh_LD_noIRA"
	itemBatteryOffset      = "battery_offset"
	itemBatteryOffsetStart = "battery_offset_start_year"
	itemBatteryOffsetEnd   = "battery_offset_end_year"
)

// learningGroup maps a powertrain to the grouping that owns its sales
// learning parameters: plug-ins learn on the PEV curve, everything else on
// ICE.
func learningGroup(p domain.PowertrainType) domain.PowertrainType {
	if p.IsPlugIn() {
		return domain.PowertrainPEV
	}
	return domain.PowertrainICE
}

// constant evaluates a parameter item that carries no vehicle variables.
func (t *Table) constant(p domain.PowertrainType, item string) (float64, bool, error) {
	e, ok := t.Lookup(p, item)
	if !ok {
		return 0, false, nil
	}
	v, err := e.Eval(map[string]interface{}{})
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// salesLearningFactor computes the general (non-battery) learning factor for
// one model year:
//
//	factor = ((cum_sales + legacy) / legacy) ** learning_rate
//
// with cumulative sales approximated as sales_scaler * |model_year −
// learning_start|. Model years before learning_start invert the factor, so
// early years cost more instead of less.
func (t *Table) salesLearningFactor(p domain.PowertrainType, modelYear int32) (float64, error) {
	group := learningGroup(p)

	rate, ok, err := t.constant(group, itemLearningRate)
	if err != nil {
		return 0, err
	}
	if !ok || rate == 0 {
		return 1, nil
	}
	start, ok, err := t.constant(group, itemLearningStart)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	legacy, ok, err := t.constant(group, itemLegacySalesScaler)
	if err != nil {
		return 0, err
	}
	if !ok || legacy <= 0 {
		return 0, fmt.Errorf("powertrain: %s learning requires a positive %s", group, itemLegacySalesScaler)
	}
	scaler, _, err := t.constant(group, itemSalesScaler)
	if err != nil {
		return 0, err
	}

	cumSales := scaler * math.Abs(float64(modelYear)-start)
	factor := math.Pow((cumSales+legacy)/legacy, rate)
	if float64(modelYear) < start && factor != 0 {
		factor = 1 / factor
	}
	return factor, nil
}

// batteryLearningFactor evaluates the GWh-based battery learning curve with
// the cumulative volume through the prior model year. A factor above 1 is a
// producer corner case (the prior year's ledger entry ran backwards); the
// evaluator retries with the two prior years summed. For mediumduty the
// light-duty no-IRA curve supplies the volume when the ledger has nothing for
// the prior year.
func (t *Table) batteryLearningFactor(v *Vehicle, ledger *BatteryLedger) (float64, error) {
	e, ok := t.Lookup(v.Powertrain, itemGWhLearningCurve)
	if !ok {
		return 1, nil
	}

	cumulative := ledger.CumulativeThrough(v.ModelYear - 1)
	if v.RegClassID == domain.RegClassMediumDuty && !ledger.Has(v.ModelYear-1) {
		fallback, haveFallback, err := t.evalWithYear(domain.PowertrainALL, itemGWhLDNoIRA, v.ModelYear)
		if err != nil {
			return 0, err
		}
		if haveFallback {
			cumulative = fallback
		}
	}

	factor, err := e.Eval(map[string]interface{}{"CUMULATIVE_GWH": cumulative})
	if err != nil {
		return 0, err
	}
	if factor > 1 {
		retry := ledger.CumulativeThrough(v.ModelYear-1) + ledger.CumulativeThrough(v.ModelYear-2)
		factor, err = e.Eval(map[string]interface{}{"CUMULATIVE_GWH": retry})
		if err != nil {
			return 0, err
		}
	}
	return factor, nil
}

// evalWithYear evaluates an item whose only variable is the model year.
func (t *Table) evalWithYear(p domain.PowertrainType, item string, modelYear int32) (float64, bool, error) {
	e, ok := t.Lookup(p, item)
	if !ok {
		return 0, false, nil
	}
	v, err := e.Eval(map[string]interface{}{"MODEL_YEAR": float64(modelYear)})
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// batteryOffsetPerKWh returns the statutory battery credit in dollars per
// kWh for one model year, zero outside the offset window or below the 7 kWh
// floor. The offset applies after markup; it is a credit, not a cost
// reduction.
func (t *Table) batteryOffsetPerKWh(v *Vehicle) (float64, error) {
	if v.BatteryKWh < 7 {
		return 0, nil
	}
	start, haveStart, err := t.constant(v.Powertrain, itemBatteryOffsetStart)
	if err != nil {
		return 0, err
	}
	end, haveEnd, err := t.constant(v.Powertrain, itemBatteryOffsetEnd)
	if err != nil {
		return 0, err
	}
	my := float64(v.ModelYear)
	if (haveStart && my < start) || (haveEnd && my > end) {
		return 0, nil
	}
	offset, _, err := t.evalWithYear(v.Powertrain, itemBatteryOffset, v.ModelYear)
	return offset, err
}
