// Package config loads and validates the session settings file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Parser loads session settings from YAML.
type Parser struct{}

// NewParser creates a settings parser.
func NewParser() *Parser {
	return &Parser{}
}

// LoadFromFile reads and validates a session settings YAML file.
func (p *Parser) LoadFromFile(path string) (*domain.SessionSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return p.Parse(data)
}

// Parse decodes and validates session settings from YAML bytes.
func (p *Parser) Parse(data []byte) (*domain.SessionSettings, error) {
	var settings domain.SessionSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}
	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks the settings record for internal consistency.
func Validate(s *domain.SessionSettings) error {
	if strings.TrimSpace(s.SessionName) == "" {
		return &domain.ConfigurationError{Field: "session_name", Value: s.SessionName}
	}
	if strings.TrimSpace(s.InputDir) == "" {
		return &domain.ConfigurationError{Field: "input_dir", Value: s.InputDir}
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		return &domain.ConfigurationError{Field: "output_dir", Value: s.OutputDir}
	}
	if s.AnalysisDollarBasis < 1900 || s.AnalysisDollarBasis > 2100 {
		return &domain.ConfigurationError{Field: "analysis_dollar_basis", Value: fmt.Sprint(s.AnalysisDollarBasis)}
	}
	if s.AnalysisInitialYear <= 0 || s.AnalysisFinalYear < s.AnalysisInitialYear {
		return &domain.ConfigurationError{
			Field: "analysis_final_year",
			Value: fmt.Sprintf("%d (initial %d)", s.AnalysisFinalYear, s.AnalysisInitialYear),
		}
	}
	return nil
}
