package powertrain

import (
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Engine and driveline cost atom names.
const (
	itemDollarsPerCylinder = "dollars_per_cylinder"
	itemDollarsPerLiter    = "dollars_per_liter"
	itemTurbScaler         = "turb_production_scaler"
	itemDieselEngineScaler = "diesel_engine_cost_scaler"
	itemMarkup             = "markup"

	itemTWCSubstrate = "threeway_catalyst_substrate"
	itemTWCWashcoat  = "threeway_catalyst_washcoat"
	itemTWCCanning   = "threeway_catalyst_canning"
	itemTWCPGMs      = "threeway_catalyst_pgms"
	itemGPF          = "gasoline_particulate_filter"
	itemDieselAT     = "diesel_aftertreatment_system"
)

// engineFlagItems are the engine tech atoms gated by their boolean flag.
var engineFlagItems = []struct {
	item string
	flag func(TechFlags) bool
}{
	{"deac_pd", func(f TechFlags) bool { return f.DeacPD }},
	{"deac_fc", func(f TechFlags) bool { return f.DeacFC }},
	{"cegr", func(f TechFlags) bool { return f.CEGR }},
	{"atk2", func(f TechFlags) bool { return f.ATK2 }},
	{"gdi", func(f TechFlags) bool { return f.GDI }},
	{"turb11", func(f TechFlags) bool { return f.Turb11 }},
	{"turb12", func(f TechFlags) bool { return f.Turb12 }},
}

// Electrified driveline atom names.
const (
	itemMotorSingle      = "motor_single"
	itemMotorDual        = "motor_dual"
	itemInverterSingle   = "inverter_single"
	itemInverterDual     = "inverter_dual"
	itemInductionMotor   = "induction_motor"
	itemInductionInvert  = "induction_inverter"
	itemOBCAndDCDC       = "OBC_and_DCDC_converter"
	itemHVOrangeCables   = "HV_orange_cables"
	itemLVBattery        = "LV_battery"
	itemSingleSpeedGear  = "single_speed_gearbox"
	itemCoolingLoop      = "powertrain_cooling_loop"
	itemChargingCordKit  = "charging_cord_kit"
	itemDCFastCharge     = "DC_fast_charge_circuitry"
	itemPowerManagement  = "power_management_and_distribution"
	itemBrakeSensors     = "brake_sensors_and_actuators"
	itemExtraHalfShafts  = "additional_pair_of_half_shafts"
	itemBattery          = "battery"
)

// Cost is the assembled powertrain cost of one vehicle, in analysis-basis
// dollars. The sum of the five components is the total powertrain cost.
type Cost struct {
	Engine               float64
	Driveline            float64
	EMachine             float64
	Battery              float64
	ElectrifiedDriveline float64
}

// Total returns the summed powertrain cost.
func (c Cost) Total() float64 {
	return c.Engine + c.Driveline + c.EMachine + c.Battery + c.ElectrifiedDriveline
}

// Assembler evaluates the compiled cost table against vehicle descriptors.
type Assembler struct {
	table   *Table
	ledger  *BatteryLedger
	withIRA bool
	withGPF bool
	tracker *Tracker
}

// NewAssembler wires the assembler to its frozen cost table and the battery
// volume ledger. The tracker is optional; pass nil to disable the diagnostic
// surface.
func NewAssembler(table *Table, ledger *BatteryLedger, withIRA, withGPF bool, tracker *Tracker) *Assembler {
	return &Assembler{table: table, ledger: ledger, withIRA: withIRA, withGPF: withGPF, tracker: tracker}
}

// CalcCost assembles the five powertrain cost components for one vehicle.
func (a *Assembler) CalcCost(v *Vehicle) (Cost, error) {
	scope := v.scope()

	markup, ok, err := a.table.constant(v.Powertrain, itemMarkup)
	if err != nil {
		return Cost{}, err
	}
	if !ok || markup <= 0 {
		markup = 1
	}
	learning, err := a.table.salesLearningFactor(v.Powertrain, v.ModelYear)
	if err != nil {
		return Cost{}, err
	}

	var cost Cost
	if v.Powertrain != domain.PowertrainBEV {
		if cost.Engine, err = a.engineCost(v, scope); err != nil {
			return Cost{}, err
		}
		if cost.Driveline, err = a.drivelineCost(v, scope); err != nil {
			return Cost{}, err
		}
	}
	if v.Powertrain.IsElectrified() {
		if cost.EMachine, err = a.emachineCost(v, scope); err != nil {
			return Cost{}, err
		}
		if cost.ElectrifiedDriveline, err = a.electrifiedDrivelineCost(v, scope); err != nil {
			return Cost{}, err
		}
	}

	// markup and sales learning apply to every non-battery component
	cost.Engine *= markup * learning
	cost.Driveline *= markup * learning
	cost.EMachine *= markup * learning
	cost.ElectrifiedDriveline *= markup * learning

	if v.BatteryKWh > 0 {
		if cost.Battery, err = a.batteryCost(v, scope, markup); err != nil {
			return Cost{}, err
		}
	}

	if a.tracker != nil {
		a.tracker.Record(v, cost, markup, learning)
	}
	return cost, nil
}

// engineCost sums the cylinder/displacement base (turbo and diesel scaled),
// the flag-gated tech atoms and the aftertreatment system.
func (a *Assembler) engineCost(v *Vehicle, scope map[string]interface{}) (float64, error) {
	perCyl, err := a.table.EvalItem(v.Powertrain, itemDollarsPerCylinder, scope)
	if err != nil {
		return 0, err
	}
	perLiter, err := a.table.EvalItem(v.Powertrain, itemDollarsPerLiter, scope)
	if err != nil {
		return 0, err
	}
	base := perCyl*float64(v.EngineCylinders) + perLiter*v.EngineDisplacementLiters

	if v.Flags.Turb11 || v.Flags.Turb12 {
		turb, ok, err := a.table.constant(v.Powertrain, itemTurbScaler)
		if err != nil {
			return 0, err
		}
		if ok {
			base *= turb
		}
	}
	if v.IsDiesel() {
		scaler, ok, err := a.table.constant(v.Powertrain, itemDieselEngineScaler)
		if err != nil {
			return 0, err
		}
		if ok {
			base *= scaler
		}
	}

	total := base
	for _, fi := range engineFlagItems {
		if !fi.flag(v.Flags) {
			continue
		}
		atom, err := a.table.EvalItem(v.Powertrain, fi.item, scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}

	at, err := a.aftertreatmentCost(v, scope)
	if err != nil {
		return 0, err
	}
	return total + at, nil
}

// aftertreatmentCost prices the exhaust system: a three-way catalyst (and
// optionally a particulate filter) for gasoline, a single combined atom for
// diesel.
func (a *Assembler) aftertreatmentCost(v *Vehicle, scope map[string]interface{}) (float64, error) {
	if v.IsDiesel() {
		return a.table.EvalItem(v.Powertrain, itemDieselAT, scope)
	}
	total := 0.0
	for _, item := range []string{itemTWCSubstrate, itemTWCWashcoat, itemTWCCanning, itemTWCPGMs} {
		atom, err := a.table.EvalItem(v.Powertrain, item, scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}
	if a.withGPF {
		gpf, err := a.table.EvalItem(v.Powertrain, itemGPF, scope)
		if err != nil {
			return 0, err
		}
		total += gpf
	}
	return total, nil
}

// drivelineCost prices the conventional driveline: the single selected
// transmission plus the alternator and start-stop content.
func (a *Assembler) drivelineCost(v *Vehicle, scope map[string]interface{}) (float64, error) {
	trans, err := v.Flags.transmissionItem()
	if err != nil {
		return 0, err
	}
	total, err := a.table.EvalItem(v.Powertrain, trans, scope)
	if err != nil {
		return 0, err
	}
	if v.Flags.HighEffAlternator {
		atom, err := a.table.EvalItem(v.Powertrain, "high_eff_alternator", scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}
	if v.Flags.StartStop {
		atom, err := a.table.EvalItem(v.Powertrain, "start_stop", scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}
	return total, nil
}

// emachineCost prices the traction machines: one motor/inverter pair for
// single-motor layouts, a dual set plus induction machines otherwise.
func (a *Assembler) emachineCost(v *Vehicle, scope map[string]interface{}) (float64, error) {
	items := []string{itemMotorSingle, itemInverterSingle}
	if v.motorCount() == 2 {
		items = []string{itemMotorDual, itemInverterDual, itemInductionMotor, itemInductionInvert}
	}
	total := 0.0
	for _, item := range items {
		atom, err := a.table.EvalCounted(v.Powertrain, item, scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}
	return total, nil
}

// electrifiedDrivelineCost sums the non-battery electrified content. Each
// atom defines its own slope/intercept/quantity in the cost file.
func (a *Assembler) electrifiedDrivelineCost(v *Vehicle, scope map[string]interface{}) (float64, error) {
	items := []string{
		itemOBCAndDCDC,
		itemHVOrangeCables,
		itemLVBattery,
		itemCoolingLoop,
		itemPowerManagement,
		itemBrakeSensors,
	}
	if v.Powertrain == domain.PowertrainBEV {
		items = append(items, itemSingleSpeedGear, itemDCFastCharge)
	}
	if v.Powertrain.IsPlugIn() {
		items = append(items, itemChargingCordKit)
	}
	if v.DriveSystem == DriveAWD && v.motorCount() == 2 {
		items = append(items, itemExtraHalfShafts)
	}
	total := 0.0
	for _, item := range items {
		atom, err := a.table.EvalCounted(v.Powertrain, item, scope)
		if err != nil {
			return 0, err
		}
		total += atom
	}
	return total, nil
}

// batteryCost prices the pack with GWh volume learning and, when the session
// enables it, the statutory per-kWh offset applied after markup.
func (a *Assembler) batteryCost(v *Vehicle, scope map[string]interface{}, markup float64) (float64, error) {
	base, err := a.table.EvalItem(v.Powertrain, itemBattery, scope)
	if err != nil {
		return 0, err
	}
	gwhLearning, err := a.table.batteryLearningFactor(v, a.ledger)
	if err != nil {
		return 0, err
	}
	cost := base * gwhLearning * markup

	if a.withIRA {
		offset, err := a.table.batteryOffsetPerKWh(v)
		if err != nil {
			return 0, err
		}
		cost += offset * v.BatteryKWh
	}
	return cost, nil
}
