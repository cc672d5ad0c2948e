package refueling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

func loadModel(t *testing.T, body string) *Model {
	t.Helper()
	content := "input_template_name:," + TemplateName + ",input_template_version:,0.22\n" +
		"item,x_squared_factor,x_factor,constant,dollar_basis\n" + body
	path := filepath.Join(t.TempDir(), "refueling.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := tabular.ReadTemplate(path, TemplateName, "0.22")
	require.NoError(t, err)

	dpath := filepath.Join(t.TempDir(), "deflators.csv")
	require.NoError(t, os.WriteFile(dpath, []byte(""+
		"input_template_name:,implicit_price_deflators,input_template_version:,0.22\n"+
		"calendar_year,price_deflator\n"+
		"2020,100.0\n"), 0o644))
	df, err := tabular.ReadTemplate(dpath, deflate.ImplicitPriceTemplateName, deflate.TemplateVersion)
	require.NoError(t, err)
	deflators, err := deflate.LoadSeries(df, deflate.ImplicitPriceTemplateName, 2020)
	require.NoError(t, err)

	m, err := Load(f, deflators)
	require.NoError(t, err)
	return m
}

func TestBEVCostPerMile(t *testing.T) {
	m := loadModel(t, ""+
		"bev_miles_to_mid_trip_charge,0,0,300,0\n"+
		"bev_share_of_miles_charged_mid_trip,0,0,0.1,0\n"+
		"bev_fixed_charging_minutes,0,0,10,0\n"+
		"bev_charge_rate_mph_under_threshold,0,0,30,0\n"+
		"bev_charge_rate_mph_over_threshold,0,0,60,0\n"+
		"bev_travel_value_dollars_per_hour,0,0,25,2020\n")

	// range 250 is over the 200-mile threshold, so the 60 mph rate applies:
	// ((10/60)/300 + 0.1/60) * 25
	cpm, err := m.BEVCostPerMile(250)
	require.NoError(t, err)
	assert.InDelta(t, 0.055555, cpm, 1e-5)

	// at or below the threshold the slow rate doubles the mid-trip term
	slow, err := m.BEVCostPerMile(150)
	require.NoError(t, err)
	assert.InDelta(t, ((10.0/60)/300+0.1/30)*25, slow, 1e-9)
}

func TestLiquidCostPerGallon(t *testing.T) {
	m := loadModel(t, ""+
		"car_tank_gallons,0,0,15,0\n"+
		"car_share_of_tank_refueled,0,0,0.85,0\n"+
		"car_fixed_refueling_minutes,0,0,5,0\n"+
		"car_refuel_rate_gallons_per_minute,0,0,7,0\n"+
		"car_travel_value_dollars_per_hour,0,0,25,2020\n"+
		"car_share_of_time_included,0,0,0.5,0\n")

	cpg, err := m.LiquidCostPerGallon(domain.RegClassCar)
	require.NoError(t, err)

	gallonsPerStop := 15 * 0.85
	want := (1 / gallonsPerStop) * ((5 + gallonsPerStop/7) / 60) * 25 * 0.5
	assert.InDelta(t, want, cpg, 1e-12)

	_, err = m.LiquidCostPerGallon(domain.RegClassTruck)
	assert.Error(t, err, "no truck parameters on file")
}

func TestLoadRequiresDollarBasisColumn(t *testing.T) {
	content := "input_template_name:," + TemplateName + ",input_template_version:,0.22\n" +
		"item,x_squared_factor,x_factor,constant\n" +
		"bev_travel_value_dollars_per_hour,0,0,25\n"
	path := filepath.Join(t.TempDir(), "refueling.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := tabular.ReadTemplate(path, TemplateName, "0.22")
	require.NoError(t, err)

	_, err = Load(f, nil)
	var merr *domain.MissingColumnError
	require.ErrorAs(t, err, &merr)
}
