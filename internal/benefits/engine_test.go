package benefits

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/factors"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

func loadFixture(t *testing.T, name, body string) *tabular.File {
	t.Helper()
	content := "input_template_name:," + name + ",input_template_version:,0.22\n" + body
	path := filepath.Join(t.TempDir(), name+".csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := tabular.ReadTemplate(path, name, "0.22")
	require.NoError(t, err)
	return f
}

// testEngine prices GHG at a flat $200/t, criteria at zero (health effects
// off) and oil at $15/bbl.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	df := loadFixture(t, deflate.ImplicitPriceTemplateName,
		"calendar_year,price_deflator\n2020,100.0\n")
	deflators, err := deflate.LoadSeries(df, deflate.ImplicitPriceTemplateName, 2020)
	require.NoError(t, err)

	sccCols := factors.SCCColumns()
	fields := []string{"2025", "2020"}
	for range sccCols {
		fields = append(fields, "200")
	}
	sccFile := loadFixture(t, factors.SCCTemplateName,
		"calendar_year,dollar_basis,"+strings.Join(sccCols, ",")+"\n"+
			strings.Join(fields, ",")+"\n")
	scc, err := factors.LoadSCC(sccFile, deflators)
	require.NoError(t, err)

	critFile := loadFixture(t, factors.CriteriaTemplateName,
		"calendar_year,source_id,dollar_basis,"+strings.Join(factors.CriteriaColumns(), ",")+"\n")
	criteria, err := factors.LoadCriteria(critFile, deflators)
	require.NoError(t, err)

	esFile := loadFixture(t, factors.EnergySecurityTemplateName,
		"calendar_year,dollar_basis,dollars_per_bbl,"+factors.ColOilImportReduction+"\n"+
			"2025,2020,15.0,0.9\n")
	energySecurity, err := factors.LoadEnergySecurity(esFile, deflators)
	require.NoError(t, err)

	return &Engine{
		SCC:            scc,
		Criteria:       criteria,
		EnergySecurity: energySecurity,
		HealthEffects:  false,
		Log:            zerolog.Nop(),
	}
}

func key(policy string) domain.AnnualKey {
	return domain.AnnualKey{
		SessionPolicy: policy,
		CalendarYear:  2025,
		RegClassID:    domain.RegClassCar,
		InUseFuelID:   "{'pump gasoline': 1.0}",
	}
}

func physical(policy string, co2 float64, importedBarrels float64) *domain.AnnualPhysical {
	return &domain.AnnualPhysical{
		Key:                  key(policy),
		BarrelsOfImportedOil: importedBarrels,
		Masses:               map[string]float64{"co2_total_metrictons": co2},
	}
}

func cost(policy string, pretax, driveValue float64) *domain.AnnualCost {
	c := &domain.AnnualCost{Key: key(policy), MonetizedEffects: domain.NewMonetizedEffects()}
	c.FuelPretaxCost = pretax
	c.DriveValueCost = driveValue
	return c
}

func TestComputeBenefitSigns(t *testing.T) {
	engine := testEngine(t)

	phys := []*domain.AnnualPhysical{
		physical(domain.NoActionPolicy, 100, 12),
		physical("action_1", 0, 7),
	}
	costs := []*domain.AnnualCost{
		cost(domain.NoActionPolicy, 840, 30),
		cost("action_1", 0, 50),
	}

	rows, err := engine.Compute(phys, costs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rec := rows[0]

	assert.Equal(t, "action_1", rec.Key.SessionPolicy)

	// avoided 100 t CO2 at $200/t
	assert.InDelta(t, 20000.0, rec.GHGBenefits["co2_global_3.0"], 1e-9)
	assert.InDelta(t, 20000.0, rec.GHGBenefits["ghg_global_3.0"], 1e-9)

	// 5 avoided imported barrels at $15/bbl
	assert.InDelta(t, 75.0, rec.EnergySecurityBenefit, 1e-9)

	assert.InDelta(t, 840.0, rec.FuelPretaxSavings, 1e-9)

	// drive value flips sign: the action's extra consumer surplus counts
	assert.InDelta(t, 20.0, rec.DriveValueBenefit, 1e-9)

	// physical deltas are action − no_action, negative means avoided
	assert.InDelta(t, -100.0, rec.DeltaPhysical["co2_total_metrictons"], 1e-9)
	assert.InDelta(t, -5.0, rec.DeltaPhysical["barrels_of_imported_oil"], 1e-9)

	assert.Empty(t, rec.CriteriaBenefits, "health effects off")
}

func TestComputeBenefitSignTracksEmissionDelta(t *testing.T) {
	engine := testEngine(t)

	for _, tc := range []struct {
		name            string
		actionCO2       float64
		wantBenefitSign float64
	}{
		{"action avoids emissions", 40, 1},
		{"action equals baseline", 100, 0},
		{"action emits more", 150, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			phys := []*domain.AnnualPhysical{
				physical(domain.NoActionPolicy, 100, 0),
				physical("action_1", tc.actionCO2, 0),
			}
			costs := []*domain.AnnualCost{
				cost(domain.NoActionPolicy, 0, 0),
				cost("action_1", 0, 0),
			}
			rows, err := engine.Compute(phys, costs)
			require.NoError(t, err)
			require.Len(t, rows, 1)

			benefit := rows[0].GHGBenefits["ghg_global_3.0"]
			switch {
			case tc.wantBenefitSign > 0:
				assert.Positive(t, benefit)
			case tc.wantBenefitSign < 0:
				assert.Negative(t, benefit)
			default:
				assert.Zero(t, benefit)
			}
		})
	}
}

func TestComputeSkipsActionsWithoutBaseline(t *testing.T) {
	engine := testEngine(t)

	orphan := physical("action_1", 0, 0)
	orphan.Key.CalendarYear = 2030
	orphanCost := cost("action_1", 0, 0)
	orphanCost.Key.CalendarYear = 2030

	phys := []*domain.AnnualPhysical{
		physical(domain.NoActionPolicy, 100, 0),
		physical("action_1", 50, 0),
		orphan,
	}
	costs := []*domain.AnnualCost{
		cost(domain.NoActionPolicy, 0, 0),
		cost("action_1", 0, 0),
		orphanCost,
	}

	rows, err := engine.Compute(phys, costs)
	require.NoError(t, err)
	require.Len(t, rows, 1, "the 2030 action row has no baseline and is skipped")
	assert.Equal(t, int32(2025), rows[0].Key.CalendarYear)
}

func TestComputeEmitsKeyOrder(t *testing.T) {
	engine := testEngine(t)

	var phys []*domain.AnnualPhysical
	var costs []*domain.AnnualCost
	for _, policy := range []string{"action_2", domain.NoActionPolicy, "action_1"} {
		phys = append(phys, physical(policy, 10, 0))
		costs = append(costs, cost(policy, 0, 0))
	}

	rows, err := engine.Compute(phys, costs)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "action_1", rows[0].Key.SessionPolicy)
	assert.Equal(t, "action_2", rows[1].Key.SessionPolicy)
}
