package powertrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

func iceVehicle() *Vehicle {
	return &Vehicle{
		VehicleID:                1,
		ModelYear:                2030,
		RegClassID:               domain.RegClassCar,
		Powertrain:               domain.PowertrainICE,
		DriveSystem:              Drive2WD,
		EngineCylinders:          4,
		EngineDisplacementLiters: 2.0,
		FootprintFt2:             48,
		Flags:                    TechFlags{TRX12: true},
	}
}

func bevVehicle(kwh float64) *Vehicle {
	return &Vehicle{
		VehicleID:       2,
		ModelYear:       2030,
		RegClassID:      domain.RegClassCar,
		Powertrain:      domain.PowertrainBEV,
		DriveSystem:     Drive2WD,
		BatteryKWh:      kwh,
		TotalEMachineKW: 150,
		FootprintFt2:    48,
	}
}

func TestAssemblerICEEngineAndDriveline(t *testing.T) {
	table := loadCostTable(t,
		"ICE,dollars_per_cylinder,100,0,0\n"+
			"ICE,dollars_per_liter,50,0,0\n"+
			"ICE,trx12,300,0,0\n")
	a := NewAssembler(table, NewBatteryLedger(), false, false, nil)

	cost, err := a.CalcCost(iceVehicle())
	require.NoError(t, err)

	// 4 cyl * 100 + 2.0 L * 50
	assert.Equal(t, 500.0, cost.Engine)
	assert.Equal(t, 300.0, cost.Driveline)
	assert.Zero(t, cost.EMachine)
	assert.Zero(t, cost.Battery)
	assert.Zero(t, cost.ElectrifiedDriveline)
	assert.Equal(t, 800.0, cost.Total())
}

func TestAssemblerMarkupAppliesToNonBatteryComponents(t *testing.T) {
	table := loadCostTable(t,
		"ALL,markup,1.5,0,0\n"+
			"ICE,dollars_per_cylinder,100,0,0\n"+
			"ICE,trx12,300,0,0\n"+
			"BEV,battery,\"KWH * 100\",0,0\n"+
			"BEV,motor_single,\"KW * 8\",0,0\n")
	a := NewAssembler(table, NewBatteryLedger(), false, false, nil)

	iceCost, err := a.CalcCost(iceVehicle())
	require.NoError(t, err)
	assert.Equal(t, 400.0*1.5, iceCost.Engine)
	assert.Equal(t, 300.0*1.5, iceCost.Driveline)

	bevCost, err := a.CalcCost(bevVehicle(60))
	require.NoError(t, err)
	assert.Equal(t, 150.0*8*1.5, bevCost.EMachine)
	// battery markup is applied inside batteryCost, no learning curve on file
	assert.Equal(t, 60.0*100*1.5, bevCost.Battery)
}

func TestTransmissionFlagsMustBeExactlyOne(t *testing.T) {
	table := loadCostTable(t,
		"ICE,dollars_per_cylinder,100,0,0\n")
	a := NewAssembler(table, NewBatteryLedger(), false, false, nil)

	v := iceVehicle()
	v.Flags.TRX12 = false
	_, err := a.CalcCost(v)
	var cerr *domain.ConfigurationError
	require.ErrorAs(t, err, &cerr)

	v.Flags.TRX12 = true
	v.Flags.ECVT = true
	_, err = a.CalcCost(v)
	require.ErrorAs(t, err, &cerr)
}

func TestSalesLearningInvertsBeforeStart(t *testing.T) {
	table := loadCostTable(t,
		"ICE,learning_rate,-0.2,0,0\n"+
			"ICE,learning_start,2030,0,0\n"+
			"ICE,legacy_sales_learning_scaler,1000000,0,0\n"+
			"ICE,sales_scaler,500000,0,0\n")

	at, err := table.salesLearningFactor(domain.PowertrainICE, 2030)
	require.NoError(t, err)
	assert.Equal(t, 1.0, at, "no accumulated sales at learning start")

	after, err := table.salesLearningFactor(domain.PowertrainICE, 2034)
	require.NoError(t, err)
	assert.Less(t, after, 1.0, "learning cheapens later model years")

	before, err := table.salesLearningFactor(domain.PowertrainICE, 2026)
	require.NoError(t, err)
	assert.Greater(t, before, 1.0, "earlier model years cost more")
	assert.InDelta(t, 1.0/after, before, 1e-12, "symmetric years invert")
}

func TestBatteryLearningIsMonotoneInVolume(t *testing.T) {
	table := loadCostTable(t,
		"BEV,battery,\"KWH * 100\",0,0\n"+
			"BEV,battery_GWh_learning_curve,\"min(1.0, (100.0 / max(CUMULATIVE_GWH, 100.0)) ** 0.25)\",0,0\n")

	batteryAt := func(gwh float64) float64 {
		ledger := NewBatteryLedger()
		ledger.Add(2029, gwh)
		a := NewAssembler(table, ledger, false, false, nil)
		cost, err := a.CalcCost(bevVehicle(60))
		require.NoError(t, err)
		return cost.Battery
	}

	prev := batteryAt(50)
	for _, gwh := range []float64{100, 200, 400, 800} {
		cur := batteryAt(gwh)
		assert.LessOrEqual(t, cur, prev, "volume %v", gwh)
		prev = cur
	}
}

func TestBatteryOffsetWindow(t *testing.T) {
	table := loadCostTable(t,
		"BEV,battery,\"KWH * 100\",0,0\n"+
			"BEV,battery_offset,-35,0,0\n"+
			"BEV,battery_offset_start_year,2023,0,0\n"+
			"BEV,battery_offset_end_year,2032,0,0\n")
	ledger := NewBatteryLedger()

	withIRA := NewAssembler(table, ledger, true, false, nil)
	withoutIRA := NewAssembler(table, ledger, false, false, nil)

	v := bevVehicle(80)
	costIRA, err := withIRA.CalcCost(v)
	require.NoError(t, err)
	costPlain, err := withoutIRA.CalcCost(v)
	require.NoError(t, err)
	assert.InDelta(t, -35.0*80, costIRA.Battery-costPlain.Battery, 1e-9)

	// below the 7 kWh floor the offset does not apply
	small := bevVehicle(5)
	smallIRA, err := withIRA.CalcCost(small)
	require.NoError(t, err)
	smallPlain, err := withoutIRA.CalcCost(small)
	require.NoError(t, err)
	assert.Equal(t, smallPlain.Battery, smallIRA.Battery)

	// outside the model-year window the offset does not apply
	late := bevVehicle(80)
	late.ModelYear = 2035
	lateIRA, err := withIRA.CalcCost(late)
	require.NoError(t, err)
	latePlain, err := withoutIRA.CalcCost(late)
	require.NoError(t, err)
	assert.Equal(t, latePlain.Battery, lateIRA.Battery)
}

func TestBatteryLedgerCumulative(t *testing.T) {
	l := NewBatteryLedger()
	l.Add(2028, 10)
	l.Add(2029, 20)
	l.Add(2030, 40)

	assert.Equal(t, 70.0, l.Total())
	assert.Equal(t, 30.0, l.CumulativeThrough(2029))
	assert.Equal(t, 70.0, l.CumulativeThrough(2035))
	assert.Zero(t, l.CumulativeThrough(2027))
	assert.True(t, l.Has(2029))
	assert.False(t, l.Has(2031))
}
