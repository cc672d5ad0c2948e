package output

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "", formatFloat(math.NaN()))
	assert.Equal(t, "0.5", formatFloat(0.5))
	assert.Equal(t, "1e-07", formatFloat(1e-7))
	assert.Equal(t, "-75", formatFloat(-75))
}

func TestWritePhysicalEffects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physical.csv")
	rows := []*domain.AnnualPhysical{
		{
			Key: domain.AnnualKey{
				SessionPolicy: domain.NoActionPolicy,
				CalendarYear:  2027,
				RegClassID:    domain.RegClassCar,
				InUseFuelID:   "{'pump gasoline': 1.0}",
			},
			VMT: 12000,
			Masses: map[string]float64{
				"co2_total_metrictons":    10,
				"acetaldehyde_vehicle_us": 0.001,
			},
		},
	}
	require.NoError(t, WritePhysicalEffects(path, rows))

	got := readCSV(t, path)
	require.Len(t, got, 2)

	header := got[0]
	assert.Equal(t, "session_policy", header[0])
	assert.Contains(t, header, "co2_total_metrictons")
	// non-canonical mass columns trail the canonical ones
	assert.Equal(t, "acetaldehyde_vehicle_us", header[len(header)-1])
	assert.Equal(t, "0.001", got[1][len(header)-1])

	// a mass column the row never carried comes out blank, not zero
	for i, col := range header {
		if col == "pm25_total_ustons" {
			assert.Equal(t, "", got[1][i])
		}
	}
}

func TestWriteCostEffectsColumnCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.csv")
	rec := &domain.CostEffectsRecord{
		Key:     domain.RecordKey{VehicleID: 1, CalendarYear: 2027, SessionPolicy: "action_1"},
		Series:  domain.SeriesEndOfYear,
		Periods: 1,
		MonetizedEffects: domain.MonetizedEffects{
			GHGCosts:      map[string]float64{"co2_global_3.0": 2000},
			CriteriaCosts: map[string]float64{},
		},
	}
	rec.FuelRetailCost = 1050
	require.NoError(t, WriteCostEffects(path, []*domain.CostEffectsRecord{rec}))

	got := readCSV(t, path)
	require.Len(t, got, 2)
	assert.Len(t, got[1], len(got[0]), "every row matches the header width")

	idx := map[string]int{}
	for i, col := range got[0] {
		idx[col] = i
	}
	assert.Equal(t, "1050", got[1][idx["fuel_retail_cost_dollars"]])
	assert.Equal(t, "2000", got[1][idx["co2_global_3.0_cost_dollars"]])
	assert.Equal(t, "end-of-year", got[1][idx["series"]])
}

func TestWriteBenefitsHealthEffectsGate(t *testing.T) {
	rows := []*domain.BenefitsRecord{
		{
			Key: domain.AnnualKey{
				SessionPolicy: "action_1",
				CalendarYear:  2027,
				RegClassID:    domain.RegClassCar,
				InUseFuelID:   "{'pump gasoline': 1.0}",
			},
			GHGBenefits:      map[string]float64{"ghg_global_3.0": 20000},
			CriteriaBenefits: map[string]float64{},
			DeltaPhysical:    map[string]float64{"vmt": -500},
		},
	}

	withPath := filepath.Join(t.TempDir(), "with.csv")
	require.NoError(t, WriteBenefits(withPath, rows, true))
	withHeader := readCSV(t, withPath)[0]

	withoutPath := filepath.Join(t.TempDir(), "without.csv")
	require.NoError(t, WriteBenefits(withoutPath, rows, false))
	withoutHeader := readCSV(t, withoutPath)[0]

	assert.Greater(t, len(withHeader), len(withoutHeader))
	// monetized criteria columns are gated; the physical delta masses are not
	for _, col := range withoutHeader {
		if strings.HasPrefix(col, "delta_") {
			continue
		}
		assert.NotContains(t, col, "pm25", "criteria benefit columns only appear with health effects on")
	}
	assert.Contains(t, withHeader, "pm25_low_3.0_benefit_dollars")
	assert.NotContains(t, withoutHeader, "pm25_low_3.0_benefit_dollars")
	assert.Contains(t, withoutHeader, "delta_pm25_total_ustons")
	assert.Contains(t, withHeader, "delta_vmt")
	assert.Contains(t, withoutHeader, "ghg_global_3.0_benefit_dollars")
}

func TestWritePresentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.csv")
	rows := []PresentValueRow{
		{
			SessionPolicy:          "action_1",
			Category:               "fuel_pretax_savings",
			DiscountRate:           0.03,
			Series:                 domain.SeriesEndOfYear,
			CalendarYear:           2027,
			Value:                  840,
			CumulativePresentValue: 815.53,
			PresentValue:           815.53,
			Annualized:             840,
		},
	}
	require.NoError(t, WritePresentValues(path, rows))

	got := readCSV(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "action_1", got[1][0])
	assert.Equal(t, "0.03", got[1][2])
}
