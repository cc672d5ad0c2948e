// Package deflate normalizes monetary inputs to the analysis dollar basis.
//
// Two deflator series coexist: the implicit price deflators used for most
// cost factors and powertrain costs, and the CPI series used for criteria
// damage factors. Loaders pick the series that applies to their table and
// adjust every monetary column exactly once at ingress, so all downstream
// arithmetic shares one dollar basis.
package deflate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// Template names and versions of the deflator input files.
const (
	ImplicitPriceTemplateName = "implicit_price_deflators"
	CPITemplateName           = "cpi_price_deflators"
	TemplateVersion           = "0.22"
)

// Series is one year-indexed deflator series frozen at load. Ratios are
// computed in decimal so that normalizing twice, or normalizing through an
// intermediate basis, stays within float tolerance of the direct conversion.
type Series struct {
	name          string
	analysisBasis int32
	factors       map[int32]decimal.Decimal
}

// LoadSeries reads a deflator template. The file needs calendar_year and
// price_deflator columns.
func LoadSeries(f *tabular.File, name string, analysisBasis int32) (*Series, error) {
	if err := f.Require("calendar_year", "price_deflator"); err != nil {
		return nil, err
	}
	s := &Series{
		name:          name,
		analysisBasis: analysisBasis,
		factors:       make(map[int32]decimal.Decimal, f.Len()),
	}
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		year, err := row.Year("calendar_year")
		if err != nil {
			return nil, err
		}
		raw := row.String("price_deflator")
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: bad price_deflator %q for year %d: %w", f.Path, raw, year, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("%s: price_deflator for year %d must be positive", f.Path, year)
		}
		s.factors[year] = d
	}
	if _, ok := s.factors[analysisBasis]; !ok {
		return nil, &domain.MissingDeflatorYearError{Series: name, Year: analysisBasis}
	}
	return s, nil
}

// Name returns the series name used in diagnostics.
func (s *Series) Name() string { return s.name }

// AnalysisBasis returns the target dollar year of every adjustment.
func (s *Series) AnalysisBasis() int32 { return s.analysisBasis }

// AdjustmentFactor returns D(analysis_basis)/D(from_basis). An already
// normalized basis yields exactly 1, making repeated normalization the
// identity.
func (s *Series) AdjustmentFactor(fromBasis int32) (float64, error) {
	if fromBasis == s.analysisBasis {
		return 1.0, nil
	}
	from, ok := s.factors[fromBasis]
	if !ok {
		return 0, &domain.MissingDeflatorYearError{Series: s.name, Year: fromBasis}
	}
	return s.factors[s.analysisBasis].Div(from).InexactFloat64(), nil
}

// Adjust converts one dollar amount from fromBasis to the analysis basis.
// A zero fromBasis marks a non-dollar-denominated value and passes through
// untouched.
func (s *Series) Adjust(value float64, fromBasis int32) (float64, error) {
	if fromBasis == 0 {
		return value, nil
	}
	factor, err := s.AdjustmentFactor(fromBasis)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}
