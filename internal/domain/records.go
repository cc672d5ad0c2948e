package domain

// RecordKey identifies one vehicle-year under a session policy. Every table
// the engine emits carries this prefix.
type RecordKey struct {
	VehicleID     int
	CalendarYear  int32
	Age           int32
	SessionPolicy string
	SessionName   string
	ModelYear     int32
	RegClassID    RegClassId
	InUseFuelID   string
	FuelingClass  string
}

// Less orders records (vehicle_id, calendar_year, age) lexicographically,
// the emission order guaranteed within a session.
func (k RecordKey) Less(other RecordKey) bool {
	if k.VehicleID != other.VehicleID {
		return k.VehicleID < other.VehicleID
	}
	if k.CalendarYear != other.CalendarYear {
		return k.CalendarYear < other.CalendarYear
	}
	return k.Age < other.Age
}

// VehicleAnnualRecord is the physical activity of one vehicle in one calendar
// year as produced by the upstream simulator. Pollutant masses live in Masses
// keyed by column name ("co2_vehicle_metrictons", "pm25_total_ustons", ...)
// so toxics columns pass through without schema changes. Records are never
// mutated after emission.
type VehicleAnnualRecord struct {
	Key RecordKey

	VMT            float64
	VMTLiquidFuel  float64
	VMTElectricity float64
	VMTRebound     float64

	FuelConsumptionGallons float64
	FuelConsumptionKWh     float64
	BarrelsOfOil           float64
	BarrelsOfImportedOil   float64
	SessionFatalities      float64

	OdometerMidYear float64

	Masses map[string]float64
}

// Mass returns the named pollutant mass, zero when the column is absent.
func (r *VehicleAnnualRecord) Mass(column string) float64 {
	return r.Masses[column]
}

// GHGMassColumns lists the canonical metric-ton mass columns in output order.
func GHGMassColumns() []string {
	cols := make([]string, 0, len(GHGPollutants)*3)
	for _, p := range GHGPollutants {
		cols = append(cols, p+"_vehicle_metrictons", p+"_upstream_metrictons", p+"_total_metrictons")
	}
	return cols
}

// CriteriaMassColumns lists the canonical short-ton mass columns in output
// order. The list is wider than the priced criteria set; CO, NMOG and VOC are
// tracked but not monetized.
func CriteriaMassColumns() []string {
	pollutants := []string{"pm25", "nox", "sox", "co", "nmog", "voc"}
	cols := make([]string, 0, len(pollutants)*3)
	for _, p := range pollutants {
		cols = append(cols, p+"_vehicle_ustons", p+"_upstream_ustons", p+"_total_ustons")
	}
	return cols
}

// MonetizedEffects holds every monetized quantity computed for one record or
// aggregate, in analysis-basis dollars. GHGCosts is keyed like
// "co2_global_3.0" plus the per-rate "ghg_global_3.0" sums; CriteriaCosts is
// keyed like "pm25_vehicle_low_3.0" with combined "pm25_low_3.0" totals.
type MonetizedEffects struct {
	FuelRetailCost     float64
	FuelPretaxCost     float64
	EnergySecurityCost float64
	CongestionCost     float64
	NoiseCost          float64
	MaintenanceCost    float64
	RefuelingCost      float64
	DriveValueCost     float64

	GHGCosts      map[string]float64
	CriteriaCosts map[string]float64
}

// NewMonetizedEffects returns a zero-valued effects holder with allocated
// maps.
func NewMonetizedEffects() MonetizedEffects {
	return MonetizedEffects{
		GHGCosts:      make(map[string]float64),
		CriteriaCosts: make(map[string]float64),
	}
}

// Accumulate adds other into m, field by field and key by key.
func (m *MonetizedEffects) Accumulate(other MonetizedEffects) {
	m.FuelRetailCost += other.FuelRetailCost
	m.FuelPretaxCost += other.FuelPretaxCost
	m.EnergySecurityCost += other.EnergySecurityCost
	m.CongestionCost += other.CongestionCost
	m.NoiseCost += other.NoiseCost
	m.MaintenanceCost += other.MaintenanceCost
	m.RefuelingCost += other.RefuelingCost
	m.DriveValueCost += other.DriveValueCost
	for k, v := range other.GHGCosts {
		m.GHGCosts[k] += v
	}
	for k, v := range other.CriteriaCosts {
		m.CriteriaCosts[k] += v
	}
}

// GHGCostKeys lists the GHG cost map keys in output order: per pollutant per
// SCC rate, then the per-rate ghg sums.
func GHGCostKeys() []string {
	keys := make([]string, 0, (len(GHGPollutants)+1)*len(SCCRates))
	for _, p := range GHGPollutants {
		for _, rate := range SCCRates {
			keys = append(keys, p+"_global_"+rate)
		}
	}
	for _, rate := range SCCRates {
		keys = append(keys, "ghg_global_"+rate)
	}
	return keys
}

// CriteriaCostKeys lists the criteria cost map keys in output order: vehicle,
// upstream and combined entries per pollutant per study per rate.
func CriteriaCostKeys() []string {
	var keys []string
	for _, p := range CriteriaPollutants {
		for _, study := range CriteriaStudies {
			for _, rate := range CriteriaRates {
				keys = append(keys,
					p+"_vehicle_"+study+"_"+rate,
					p+"_upstream_"+study+"_"+rate,
					p+"_"+study+"_"+rate)
			}
		}
	}
	return keys
}

// CriteriaBenefitKeys lists the combined criteria keys only, the set carried
// on benefits records.
func CriteriaBenefitKeys() []string {
	var keys []string
	for _, p := range CriteriaPollutants {
		for _, study := range CriteriaStudies {
			for _, rate := range CriteriaRates {
				keys = append(keys, p+"_"+study+"_"+rate)
			}
		}
	}
	return keys
}

// CostEffectsRecord is the monetized counterpart of one VehicleAnnualRecord.
// DiscountRate is zero and Series/Periods describe the undiscounted stream
// until the discounter fans the record out.
type CostEffectsRecord struct {
	Key          RecordKey
	DiscountRate float64
	Series       DiscountSeries
	Periods      int

	MonetizedEffects
}

// AnnualKey identifies one aggregate row: all vehicle-years of one policy,
// calendar year, regulatory class and in-use fuel.
type AnnualKey struct {
	SessionPolicy string
	CalendarYear  int32
	RegClassID    RegClassId
	InUseFuelID   string
}

// JoinKey is the annual key without the policy, used to match action rows to
// their no-action baseline.
func (k AnnualKey) JoinKey() AnnualKey {
	k.SessionPolicy = ""
	return k
}

// Less orders aggregates (session_policy, calendar_year, reg_class_id,
// in_use_fuel_id), the benefits emission order.
func (k AnnualKey) Less(other AnnualKey) bool {
	if k.SessionPolicy != other.SessionPolicy {
		return k.SessionPolicy < other.SessionPolicy
	}
	if k.CalendarYear != other.CalendarYear {
		return k.CalendarYear < other.CalendarYear
	}
	if k.RegClassID != other.RegClassID {
		return k.RegClassID < other.RegClassID
	}
	return k.InUseFuelID < other.InUseFuelID
}

// AnnualPhysical aggregates physical quantities over an AnnualKey.
type AnnualPhysical struct {
	Key AnnualKey

	VMT                    float64
	VMTLiquidFuel          float64
	VMTElectricity         float64
	VMTRebound             float64
	FuelConsumptionGallons float64
	FuelConsumptionKWh     float64
	BarrelsOfOil           float64
	BarrelsOfImportedOil   float64
	SessionFatalities      float64

	Masses map[string]float64
}

// Accumulate adds one vehicle-year record into the aggregate.
func (a *AnnualPhysical) Accumulate(r *VehicleAnnualRecord) {
	a.VMT += r.VMT
	a.VMTLiquidFuel += r.VMTLiquidFuel
	a.VMTElectricity += r.VMTElectricity
	a.VMTRebound += r.VMTRebound
	a.FuelConsumptionGallons += r.FuelConsumptionGallons
	a.FuelConsumptionKWh += r.FuelConsumptionKWh
	a.BarrelsOfOil += r.BarrelsOfOil
	a.BarrelsOfImportedOil += r.BarrelsOfImportedOil
	a.SessionFatalities += r.SessionFatalities
	if a.Masses == nil {
		a.Masses = make(map[string]float64, len(r.Masses))
	}
	for col, mass := range r.Masses {
		a.Masses[col] += mass
	}
}

// AnnualCost aggregates monetized effects over an AnnualKey.
type AnnualCost struct {
	Key AnnualKey
	MonetizedEffects
}

// BenefitsRecord holds the monetized benefits of one action-policy aggregate
// relative to its no-action baseline. Benefit fields follow the
// no_action − action convention (positive = benefit); DriveValueBenefit and
// DeltaPhysical follow action − no_action per the output sign contract.
type BenefitsRecord struct {
	Key AnnualKey

	FuelPretaxSavings     float64
	EnergySecurityBenefit float64
	CongestionBenefit     float64
	NoiseBenefit          float64
	MaintenanceBenefit    float64
	RefuelingBenefit      float64
	DriveValueBenefit     float64

	GHGBenefits      map[string]float64
	CriteriaBenefits map[string]float64

	DeltaPhysical map[string]float64
}
