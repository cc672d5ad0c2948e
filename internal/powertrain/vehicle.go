package powertrain

import (
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Drive system tags.
const (
	Drive2WD = "2WD"
	DriveAWD = "AWD"
)

// TechFlags are the boolean technology content flags of a vehicle package.
// Exactly one transmission flag (trx10..trx22 or ecvt) must be set on
// conventional powertrains.
type TechFlags struct {
	HighEffAlternator bool
	StartStop         bool
	DeacPD            bool
	DeacFC            bool
	CEGR              bool
	ATK2              bool
	GDI               bool
	Turb11            bool
	Turb12            bool
	TRX10             bool
	TRX11             bool
	TRX12             bool
	TRX21             bool
	TRX22             bool
	ECVT              bool
	Diesel            bool
}

// transmissionItem returns the cost atom name selected by the single set
// transmission flag, or a ConfigurationError when zero or multiple flags are
// set.
func (tf TechFlags) transmissionItem() (string, error) {
	var item string
	count := 0
	set := []struct {
		on   bool
		item string
	}{
		{tf.TRX10, "trx10"},
		{tf.TRX11, "trx11"},
		{tf.TRX12, "trx12"},
		{tf.TRX21, "trx21"},
		{tf.TRX22, "trx22"},
		{tf.ECVT, "ecvt"},
	}
	for _, s := range set {
		if s.on {
			item = s.item
			count++
		}
	}
	if count != 1 {
		return "", &domain.ConfigurationError{Field: "transmission flags", Value: item}
	}
	return item, nil
}

// Vehicle is the descriptor the assembler prices: physical content, tech
// flags and the model year that drives learning.
type Vehicle struct {
	VehicleID                int
	ModelYear                int32
	RegClassID               domain.RegClassId
	MarketClassID            string
	BaseYearCertFuelID       string
	Powertrain               domain.PowertrainType
	DriveSystem              string
	CurbweightLbs            float64
	BatteryKWh               float64
	TotalEMachineKW          float64
	EngineCylinders          int
	EngineDisplacementLiters float64
	FootprintFt2             float64
	CostCurveClass           string
	RatedRangeMiles          float64
	Sales                    float64

	Flags TechFlags
}

// IsDiesel reports whether the vehicle certifies on diesel fuel.
func (v *Vehicle) IsDiesel() bool {
	return v.Flags.Diesel || v.BaseYearCertFuelID == "diesel"
}

// motorCount is single for HEVs and for non-hauling 2WD vehicles, dual
// otherwise.
func (v *Vehicle) motorCount() int {
	if v.Powertrain == domain.PowertrainHEV {
		return 1
	}
	if v.DriveSystem == Drive2WD && v.RegClassID != domain.RegClassMediumDuty {
		return 1
	}
	return 2
}

// onboardChargerKW returns the OBC power tier for the vehicle's battery size.
func (v *Vehicle) onboardChargerKW() float64 {
	switch v.Powertrain {
	case domain.PowertrainBEV:
		switch {
		case v.BatteryKWh < 70:
			return 7
		case v.BatteryKWh < 100:
			return 11
		default:
			return 19
		}
	case domain.PowertrainPHEV:
		switch {
		case v.BatteryKWh < 7:
			return 0.7
		case v.BatteryKWh < 10:
			return 1.1
		default:
			return 1.9
		}
	}
	return 0
}

// sizeClass buckets vehicles by footprint into the ordinal the cost
// expressions scale against.
func (v *Vehicle) sizeClass() float64 {
	switch {
	case v.FootprintFt2 < 45:
		return 0
	case v.FootprintFt2 < 52:
		return 1
	case v.FootprintFt2 < 60:
		return 2
	default:
		return 3
	}
}

func boolScope(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// scope builds the evaluation scope for cost expressions: precomputed
// scalars plus every tech flag as a 0/1 value.
func (v *Vehicle) scope() map[string]interface{} {
	return map[string]interface{}{
		"CYL":                 float64(v.EngineCylinders),
		"LITERS":              v.EngineDisplacementLiters,
		"KWH":                 v.BatteryKWh,
		"KW":                  v.TotalEMachineKW,
		"KW_OBC":              v.onboardChargerKW(),
		"CURBWEIGHT_LBS":      v.CurbweightLbs,
		"FOOTPRINT_FT2":       v.FootprintFt2,
		"VEHICLE_SIZE_CLASS":  v.sizeClass(),
		"MODEL_YEAR":          float64(v.ModelYear),
		"DRIVE_SYSTEM":        boolScope(v.DriveSystem == DriveAWD) + 1,
		"HIGH_EFF_ALTERNATOR": boolScope(v.Flags.HighEffAlternator),
		"START_STOP":          boolScope(v.Flags.StartStop),
		"DEAC_PD":             boolScope(v.Flags.DeacPD),
		"DEAC_FC":             boolScope(v.Flags.DeacFC),
		"CEGR":                boolScope(v.Flags.CEGR),
		"ATK2":                boolScope(v.Flags.ATK2),
		"GDI":                 boolScope(v.Flags.GDI),
		"TURB11":              boolScope(v.Flags.Turb11),
		"TURB12":              boolScope(v.Flags.Turb12),
	}
}
