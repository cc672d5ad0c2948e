package domain

// PowertrainType identifies a vehicle powertrain family. PEV and ALL are
// grouping tags used by the powertrain cost input file, never by annual data.
type PowertrainType string

const (
	PowertrainICE  PowertrainType = "ICE"
	PowertrainMHEV PowertrainType = "MHEV"
	PowertrainHEV  PowertrainType = "HEV"
	PowertrainPHEV PowertrainType = "PHEV"
	PowertrainBEV  PowertrainType = "BEV"
	PowertrainPEV  PowertrainType = "PEV"
	PowertrainALL  PowertrainType = "ALL"
)

// ParsePowertrainType validates a powertrain tag from an input file.
func ParsePowertrainType(s string) (PowertrainType, error) {
	switch PowertrainType(s) {
	case PowertrainICE, PowertrainMHEV, PowertrainHEV, PowertrainPHEV, PowertrainBEV, PowertrainPEV, PowertrainALL:
		return PowertrainType(s), nil
	}
	return "", &ConfigurationError{Field: "powertrain_type", Value: s}
}

// IsElectrified reports whether the powertrain carries a traction battery.
func (p PowertrainType) IsElectrified() bool {
	return p == PowertrainMHEV || p == PowertrainHEV || p == PowertrainPHEV || p == PowertrainBEV
}

// IsPlugIn reports whether the powertrain is in the PEV grouping.
func (p PowertrainType) IsPlugIn() bool {
	return p == PowertrainPHEV || p == PowertrainBEV
}

// RegClassId is a regulatory class tag. The same field doubles as a free
// source tag for criteria cost-factor lookups ("car pump gasoline", "egu",
// "refinery"), so it is deliberately not a closed enum; ParseRegClassId is
// only applied to vehicle records.
type RegClassId string

const (
	RegClassCar        RegClassId = "car"
	RegClassTruck      RegClassId = "truck"
	RegClassMediumDuty RegClassId = "mediumduty"
)

// ParseRegClassId validates a vehicle regulatory class.
func ParseRegClassId(s string) (RegClassId, error) {
	switch RegClassId(s) {
	case RegClassCar, RegClassTruck, RegClassMediumDuty:
		return RegClassId(s), nil
	}
	return "", &ConfigurationError{Field: "reg_class_id", Value: s}
}

// NoActionPolicy is the required baseline session policy label. Action
// policies are free-form strings; by convention they start with "action".
const NoActionPolicy = "no_action"

// DiscountSeries selects the within-year timing convention of a value stream.
type DiscountSeries string

const (
	SeriesEndOfYear DiscountSeries = "end-of-year"
	SeriesMidYear   DiscountSeries = "mid-year"
)

// Offset is the exponent shift applied to the first analysis year under the
// series convention: 1 for end-of-year flows, 0.5 for mid-year flows.
func (s DiscountSeries) Offset() float64 {
	if s == SeriesMidYear {
		return 0.5
	}
	return 1.0
}

// GHG pollutants priced by the social cost of carbon tables, and the discount
// rate variants those tables carry. Rate strings match input column spellings.
var (
	GHGPollutants = []string{"co2", "ch4", "n2o"}
	SCCRates      = []string{"5.0", "3.0", "2.5", "3.95"}
)

// Criteria pollutants with monetized health damages, their valuation study
// tags and discount rate variants.
var (
	CriteriaPollutants = []string{"pm25", "sox", "nox"}
	CriteriaStudies    = []string{"low", "high"}
	CriteriaRates      = []string{"3.0", "7.0"}
)

// SocialDiscountRates are applied to non-GHG monetized streams.
var SocialDiscountRates = []float64{0.03, 0.07}

// GallonsPerBarrel converts liquid fuel gallons to barrels of oil for the
// energy security calculation.
const GallonsPerBarrel = 42.0

// ElectricityFuelID is the in-use fuel name that routes consumption to kWh
// pricing and "egu" upstream criteria factors.
const ElectricityFuelID = "US electricity"
