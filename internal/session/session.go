// Package session wires the full pipeline: load inputs, cost every
// vehicle-year, aggregate, compute benefits, discount and write outputs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/benefits"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/deflate"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/effects"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/factors"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/maintenance"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/output"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/powertrain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/refueling"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

const templateVersion = "0.22"

// gWhPerKWh converts pack kWh to fleet GWh for the battery ledger.
const gWhPerKWh = 1e-6

// Runner executes one session end to end.
type Runner struct {
	settings *domain.SessionSettings
	log      zerolog.Logger
}

// NewRunner builds a runner for one validated settings record.
func NewRunner(settings *domain.SessionSettings, logger zerolog.Logger) *Runner {
	return &Runner{settings: settings, log: logger.With().Str("session", settings.SessionName).Logger()}
}

// tables holds every loaded input, frozen before the first record is costed.
type tables struct {
	implicit *deflate.Series
	cpi      *deflate.Series

	scc            *factors.SCCTable
	criteria       *factors.CriteriaTable
	energySecurity *factors.EnergySecurityTable
	congestion     *factors.CongestionNoiseTable
	fuelPrices     *factors.FuelPriceTable

	maintenance *maintenance.Curves
	refueling   *refueling.Model
	powertrain  *powertrain.Table
	vehicles    []*powertrain.Vehicle
	annual      []*domain.VehicleAnnualRecord
}

// Run executes the session. No output file lands unless every stage
// succeeds.
func (r *Runner) Run() error {
	started := time.Now()

	t, err := r.loadTables()
	if err != nil {
		return err
	}

	healthEffects := r.settings.CalcHealthEffects
	if healthEffects && t.criteria.Empty() {
		r.log.Warn().Msg("criteria cost factors empty, health effects disabled")
		healthEffects = false
	}

	vehicleCosts, tracker, err := r.costPowertrains(t)
	if err != nil {
		return err
	}

	engine := &effects.Engine{
		SCC:             t.scc,
		Criteria:        t.criteria,
		EnergySecurity:  t.energySecurity,
		CongestionNoise: t.congestion,
		FuelPrices:      t.fuelPrices,
		Maintenance:     t.maintenance,
		Refueling:       t.refueling,
		RatedRangeMiles: ratedRanges(t.vehicles),
		HealthEffects:   healthEffects,
	}

	costs := make([]*domain.CostEffectsRecord, 0, len(t.annual))
	for _, rec := range t.annual {
		c, err := engine.CostEffects(rec)
		if err != nil {
			return err
		}
		costs = append(costs, c)
	}
	r.log.Info().Int("records", len(costs)).Msg("cost effects computed")

	annualPhysical := effects.AggregatePhysical(t.annual)
	annualCost := effects.AggregateCosts(costs)

	benefitEngine := &benefits.Engine{
		SCC:            t.scc,
		Criteria:       t.criteria,
		EnergySecurity: t.energySecurity,
		HealthEffects:  healthEffects,
		Log:            r.log,
	}
	benefitRows, err := benefitEngine.Compute(annualPhysical, annualCost)
	if err != nil {
		return err
	}
	r.log.Info().Int("rows", len(benefitRows)).Msg("benefits computed")

	presentValues, err := r.discountBenefits(benefitRows, healthEffects)
	if err != nil {
		return err
	}

	if err := r.writeOutputs(annualPhysical, costs, benefitRows, presentValues, vehicleCosts, tracker, healthEffects); err != nil {
		return err
	}
	r.log.Info().Dur("elapsed", time.Since(started)).Msg("session complete")
	return nil
}

func (r *Runner) inputPath(name string) string {
	return filepath.Join(r.settings.InputDir, name+".csv")
}

func (r *Runner) outputPath(name string) string {
	return filepath.Join(r.settings.OutputDir, r.settings.SessionName+"_"+name+".csv")
}

func (r *Runner) readTemplate(name string) (*tabular.File, error) {
	return tabular.ReadTemplate(r.inputPath(name), name, templateVersion)
}

func (r *Runner) loadTables() (*tables, error) {
	t := &tables{}

	f, err := r.readTemplate(deflate.ImplicitPriceTemplateName)
	if err != nil {
		return nil, err
	}
	if t.implicit, err = deflate.LoadSeries(f, deflate.ImplicitPriceTemplateName, r.settings.AnalysisDollarBasis); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(deflate.CPITemplateName); err != nil {
		return nil, err
	}
	if t.cpi, err = deflate.LoadSeries(f, deflate.CPITemplateName, r.settings.AnalysisDollarBasis); err != nil {
		return nil, err
	}

	if f, err = r.readTemplate(factors.SCCTemplateName); err != nil {
		return nil, err
	}
	if t.scc, err = factors.LoadSCC(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(factors.CriteriaTemplateName); err != nil {
		return nil, err
	}
	if t.criteria, err = factors.LoadCriteria(f, t.cpi); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(factors.EnergySecurityTemplateName); err != nil {
		return nil, err
	}
	if t.energySecurity, err = factors.LoadEnergySecurity(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(factors.CongestionNoiseTemplateName); err != nil {
		return nil, err
	}
	if t.congestion, err = factors.LoadCongestionNoise(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(factors.FuelPricesTemplateName); err != nil {
		return nil, err
	}
	if t.fuelPrices, err = factors.LoadFuelPrices(f, t.implicit); err != nil {
		return nil, err
	}

	if f, err = r.readTemplate(maintenance.TemplateName); err != nil {
		return nil, err
	}
	if t.maintenance, err = maintenance.Load(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(refueling.TemplateName); err != nil {
		return nil, err
	}
	if t.refueling, err = refueling.Load(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(powertrain.TemplateName); err != nil {
		return nil, err
	}
	if t.powertrain, err = powertrain.LoadTable(f, t.implicit); err != nil {
		return nil, err
	}
	if f, err = r.readTemplate(powertrain.VehiclesTemplateName); err != nil {
		return nil, err
	}
	if t.vehicles, err = powertrain.LoadVehicles(f); err != nil {
		return nil, err
	}

	if f, err = r.readTemplate(effects.AnnualDataTemplateName); err != nil {
		return nil, err
	}
	annual, err := effects.LoadAnnualData(f)
	if err != nil {
		return nil, err
	}
	t.annual = r.filterAnalysisYears(annual)

	r.log.Info().
		Int("vehicles", len(t.vehicles)).
		Int("annual_records", len(t.annual)).
		Int32("dollar_basis", r.settings.AnalysisDollarBasis).
		Msg("inputs loaded")
	return t, nil
}

// filterAnalysisYears drops records outside the configured horizon.
func (r *Runner) filterAnalysisYears(records []*domain.VehicleAnnualRecord) []*domain.VehicleAnnualRecord {
	kept := records[:0]
	dropped := 0
	for _, rec := range records {
		if rec.Key.CalendarYear < r.settings.AnalysisInitialYear || rec.Key.CalendarYear > r.settings.AnalysisFinalYear {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	if dropped > 0 {
		r.log.Debug().Int("dropped", dropped).Msg("records outside analysis years")
	}
	return kept
}

// costPowertrains assembles powertrain costs for the fleet. The battery
// ledger is filled for every model year before the first vehicle is costed.
// Vehicles with invalid package configurations are skipped and reported.
func (r *Runner) costPowertrains(t *tables) ([]powertrain.VehicleCost, *powertrain.Tracker, error) {
	ledger := powertrain.NewBatteryLedger()
	for _, v := range t.vehicles {
		if v.BatteryKWh > 0 && v.Sales > 0 {
			ledger.Add(v.ModelYear, v.BatteryKWh*v.Sales*gWhPerKWh)
		}
	}

	var tracker *powertrain.Tracker
	if r.settings.PowertrainCostTracker {
		tracker = powertrain.NewTracker()
	}
	assembler := powertrain.NewAssembler(t.powertrain, ledger,
		r.settings.PowertrainCostWithIRA, r.settings.PowertrainCostWithGPF, tracker)

	costed := make([]powertrain.VehicleCost, 0, len(t.vehicles))
	skipped := 0
	for _, v := range t.vehicles {
		cost, err := assembler.CalcCost(v)
		if err != nil {
			var cfgErr *domain.ConfigurationError
			if !errors.As(err, &cfgErr) {
				return nil, nil, err
			}
			skipped++
			r.log.Warn().Int("vehicle_id", v.VehicleID).Err(err).Msg("vehicle package invalid, skipped")
			continue
		}
		costed = append(costed, powertrain.VehicleCost{
			VehicleID:  v.VehicleID,
			ModelYear:  v.ModelYear,
			Powertrain: v.Powertrain,
			Cost:       cost,
		})
	}
	if skipped > 0 {
		r.log.Warn().Int("skipped", skipped).Msg("vehicles skipped during powertrain costing")
	}
	r.log.Info().Int("vehicles", len(costed)).Msg("powertrain costs assembled")
	return costed, tracker, nil
}

func ratedRanges(vehicles []*powertrain.Vehicle) map[int]float64 {
	ranges := make(map[int]float64, len(vehicles))
	for _, v := range vehicles {
		if v.RatedRangeMiles > 0 {
			ranges[v.VehicleID] = v.RatedRangeMiles
		}
	}
	return ranges
}

func (r *Runner) writeOutputs(
	physical []*domain.AnnualPhysical,
	costs []*domain.CostEffectsRecord,
	benefitRows []*domain.BenefitsRecord,
	presentValues []output.PresentValueRow,
	vehicleCosts []powertrain.VehicleCost,
	tracker *powertrain.Tracker,
	healthEffects bool,
) error {
	if err := os.MkdirAll(r.settings.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := powertrain.WriteCosts(r.outputPath("powertrain_costs"), vehicleCosts); err != nil {
		return err
	}
	if tracker != nil {
		path := r.outputPath("powertrain_cost_tracker")
		if err := tracker.Write(path); err != nil {
			return err
		}
		r.log.Info().Str("path", path).Int("rows", tracker.Len()).Msg("powertrain cost tracker written")
	}
	if err := output.WritePhysicalEffects(r.outputPath("physical_effects"), physical); err != nil {
		return err
	}
	if err := output.WriteCostEffects(r.outputPath("cost_effects"), costs); err != nil {
		return err
	}
	if err := output.WriteBenefits(r.outputPath("benefits"), benefitRows, healthEffects); err != nil {
		return err
	}
	if err := output.WritePresentValues(r.outputPath("benefits_present_values"), presentValues); err != nil {
		return err
	}
	r.log.Info().Str("dir", r.settings.OutputDir).Msg("outputs written")
	return nil
}
