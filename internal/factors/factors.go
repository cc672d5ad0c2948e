// Package factors holds the frozen cost-factor tables: social cost of GHGs,
// criteria pollutant damages, energy security premia and congestion/noise
// externalities.
//
// All tables share the same lookup semantics: year-indexed rows are step
// functions that carry forward above the table's maximum year and fail with
// UndefinedCostYearError below the minimum; factor values are normalized to
// the analysis dollar basis exactly once at load. Lookups are hot, so every
// table memoizes (keys, factor names) results; caches are cleared only when a
// table is reloaded.
package factors

import (
	"sort"
	"strings"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Input template versions are checked against the file banner at load.
const TemplateVersion = "0.22"

// yearSeries is the shared year-keyed table core.
type yearSeries struct {
	tableName string
	years     []int32
	rows      map[int32]map[string]float64
	cache     map[string][]float64
}

func newYearSeries(tableName string) *yearSeries {
	return &yearSeries{
		tableName: tableName,
		rows:      make(map[int32]map[string]float64),
		cache:     make(map[string][]float64),
	}
}

func (t *yearSeries) addRow(year int32, values map[string]float64) {
	if _, ok := t.rows[year]; !ok {
		t.years = append(t.years, year)
	}
	t.rows[year] = values
}

func (t *yearSeries) freeze() {
	sort.Slice(t.years, func(i, j int) bool { return t.years[i] < t.years[j] })
}

// lookupYear resolves the carry-forward rule: the largest table year <= y.
func (t *yearSeries) lookupYear(y int32) (int32, error) {
	if len(t.years) == 0 || y < t.years[0] {
		var min int32
		if len(t.years) > 0 {
			min = t.years[0]
		}
		return 0, &domain.UndefinedCostYearError{Table: t.tableName, Year: y, MinYear: min}
	}
	idx := sort.Search(len(t.years), func(i int) bool { return t.years[i] > y })
	return t.years[idx-1], nil
}

func (t *yearSeries) get(y int32, names []string) ([]float64, error) {
	key := cacheKey(y, names)
	if vals, ok := t.cache[key]; ok {
		return vals, nil
	}
	rowYear, err := t.lookupYear(y)
	if err != nil {
		return nil, err
	}
	row := t.rows[rowYear]
	vals := make([]float64, len(names))
	for i, name := range names {
		vals[i] = row[name]
	}
	t.cache[key] = vals
	return vals, nil
}

func (t *yearSeries) clear() {
	t.cache = make(map[string][]float64)
}

func cacheKey(y int32, names []string) string {
	var b strings.Builder
	b.Grow(8 + 16*len(names))
	writeInt32(&b, y)
	for _, n := range names {
		b.WriteByte('|')
		b.WriteString(n)
	}
	return b.String()
}

func writeInt32(b *strings.Builder, v int32) {
	// years are small; manual conversion avoids strconv in the hot path
	if v < 0 {
		b.WriteByte('-')
		v = -v
	}
	var digits [12]byte
	i := len(digits)
	for {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
		if v == 0 {
			break
		}
	}
	b.Write(digits[i:])
}
