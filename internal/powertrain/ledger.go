package powertrain

// BatteryLedger tracks cumulative fleet battery volume by model year. The
// upstream producer writes it strictly before each year's cost evaluation
// begins; the assembler only reads it, so the year-by-year driver is the
// synchronization barrier.
type BatteryLedger struct {
	gwhByYear map[int32]float64
	total     float64
}

// NewBatteryLedger returns an empty ledger.
func NewBatteryLedger() *BatteryLedger {
	return &BatteryLedger{gwhByYear: make(map[int32]float64)}
}

// Add records GWh produced in one model year.
func (l *BatteryLedger) Add(modelYear int32, gwh float64) {
	l.gwhByYear[modelYear] += gwh
	l.total += gwh
}

// Total returns the all-years sentinel value.
func (l *BatteryLedger) Total() float64 { return l.total }

// Has reports whether any volume was recorded for a model year.
func (l *BatteryLedger) Has(modelYear int32) bool {
	_, ok := l.gwhByYear[modelYear]
	return ok
}

// CumulativeThrough returns total GWh across all model years at or before
// the given year. The map is monotonically non-decreasing in year by
// construction.
func (l *BatteryLedger) CumulativeThrough(modelYear int32) float64 {
	sum := 0.0
	for year, gwh := range l.gwhByYear {
		if year <= modelYear {
			sum += gwh
		}
	}
	return sum
}
