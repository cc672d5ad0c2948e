package domain

import "fmt"

// TemplateVersionError reports an input file whose two-line header banner does
// not carry the expected template name and version. Fatal at load.
type TemplateVersionError struct {
	File        string
	WantName    string
	WantVersion string
	GotName     string
	GotVersion  string
}

func (e *TemplateVersionError) Error() string {
	return fmt.Sprintf("%s: input template mismatch: want %s version %s, got %s version %s",
		e.File, e.WantName, e.WantVersion, e.GotName, e.GotVersion)
}

// MissingColumnError reports an input file lacking a column the loader
// expects. Fatal at load.
type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

// UndefinedCostYearError reports a cost-factor lookup below the table's
// minimum year. Years above the maximum carry forward instead.
type UndefinedCostYearError struct {
	Table   string
	Year    int32
	MinYear int32
}

func (e *UndefinedCostYearError) Error() string {
	return fmt.Sprintf("%s: no cost factors defined for year %d (table starts at %d)", e.Table, e.Year, e.MinYear)
}

// MissingDeflatorYearError reports a deflator series that lacks a year
// referenced by some table's dollar_basis column. Fatal at load.
type MissingDeflatorYearError struct {
	Series string
	Year   int32
}

func (e *MissingDeflatorYearError) Error() string {
	return fmt.Sprintf("%s deflator series has no entry for year %d", e.Series, e.Year)
}

// ConfigurationError reports an invalid enum value or an inconsistent vehicle
// package, e.g. zero or multiple transmission flags set.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// InvalidFuelIDError reports an in_use_fuel_id string that does not parse to
// a share mapping with values in [0,1] summing to 1.
type InvalidFuelIDError struct {
	FuelID string
	Reason string
}

func (e *InvalidFuelIDError) Error() string {
	return fmt.Sprintf("invalid in_use_fuel_id %q: %s", e.FuelID, e.Reason)
}
