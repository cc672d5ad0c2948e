package domain

// SessionSettings is the single session-settings record controlling a run.
// Loaded from YAML by internal/config and validated there.
type SessionSettings struct {
	SessionName string `yaml:"session_name"`
	InputDir    string `yaml:"input_dir"`
	OutputDir   string `yaml:"output_dir"`

	AnalysisDollarBasis int32 `yaml:"analysis_dollar_basis"`
	AnalysisInitialYear int32 `yaml:"analysis_initial_year"`
	AnalysisFinalYear   int32 `yaml:"analysis_final_year"`

	CalcHealthEffects     bool `yaml:"calc_health_effects"`
	PowertrainCostWithIRA bool `yaml:"powertrain_cost_with_ira"`
	PowertrainCostWithGPF bool `yaml:"powertrain_cost_with_gpf"`
	PowertrainCostTracker bool `yaml:"powertrain_cost_tracker"`
}

// AnalysisYears returns the inclusive calendar-year horizon of the session.
func (s *SessionSettings) AnalysisYears() []int32 {
	if s.AnalysisFinalYear < s.AnalysisInitialYear {
		return nil
	}
	years := make([]int32, 0, s.AnalysisFinalYear-s.AnalysisInitialYear+1)
	for y := s.AnalysisInitialYear; y <= s.AnalysisFinalYear; y++ {
		years = append(years, y)
	}
	return years
}

// Periods is the horizon length N used by the equivalent-annualized-value
// annuity.
func (s *SessionSettings) Periods() int {
	return int(s.AnalysisFinalYear-s.AnalysisInitialYear) + 1
}
