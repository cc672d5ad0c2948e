// Package discount reduces annual value streams to present value,
// equivalent annualized value and cumulative present-value series.
package discount

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
)

// Stream is one annual value series at an implicit timing convention. Years
// and Values run in parallel and must be year-ascending.
type Stream struct {
	BaseYear int32
	Series   domain.DiscountSeries
	Years    []int32
	Values   []float64
}

// Result is one discounted rendering of a stream. Cumulative[i] is the
// running present value through Years[i].
type Result struct {
	Rate         float64
	PresentValue float64
	Annualized   float64
	Cumulative   []float64
}

// Factor returns the divisor applied to a value in calendar year y: (1+r)
// raised to (y − base + Δ), where Δ is 1 for end-of-year flows and 0.5 for
// mid-year flows.
func Factor(rate float64, year, baseYear int32, series domain.DiscountSeries) float64 {
	exponent := float64(year-baseYear) + series.Offset()
	return math.Pow(1+rate, exponent)
}

// Discount reduces one stream at one rate. A zero rate passes values through
// undiscounted with an annualized value equal to the arithmetic mean.
func Discount(s Stream, rate float64) (Result, error) {
	if len(s.Years) != len(s.Values) {
		return Result{}, fmt.Errorf("discount: %d years but %d values", len(s.Years), len(s.Values))
	}
	if !sort.SliceIsSorted(s.Years, func(i, j int) bool { return s.Years[i] < s.Years[j] }) {
		return Result{}, fmt.Errorf("discount: years out of order")
	}

	discounted := make([]float64, len(s.Values))
	for i, v := range s.Values {
		discounted[i] = v / Factor(rate, s.Years[i], s.BaseYear, s.Series)
	}

	r := Result{Rate: rate, PresentValue: floats.Sum(discounted)}
	r.Cumulative = make([]float64, len(discounted))
	floats.CumSum(r.Cumulative, discounted)
	r.Annualized = Annualize(r.PresentValue, rate, horizon(s.Years))
	return r, nil
}

// FanOut discounts the same stream at every requested rate, in the order
// given.
func FanOut(s Stream, rates []float64) ([]Result, error) {
	out := make([]Result, 0, len(rates))
	for _, rate := range rates {
		r, err := Discount(s, rate)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Annualize converts a present value to the equivalent constant annuity over
// an n-year horizon: PV × r(1+r)^n / ((1+r)^n − 1). At a zero rate the
// annuity degenerates to PV/n.
func Annualize(pv, rate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if rate == 0 {
		return pv / float64(n)
	}
	compound := math.Pow(1+rate, float64(n))
	return pv * rate * compound / (compound - 1)
}

// horizon is the inclusive calendar span of the stream.
func horizon(years []int32) int {
	if len(years) == 0 {
		return 0
	}
	return int(years[len(years)-1]-years[0]) + 1
}

// SCCRateValue converts an SCC rate column spelling ("3.0", "3.95") to its
// fractional rate.
func SCCRateValue(s string) (float64, error) {
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("discount: bad rate %q: %w", s, err)
	}
	return pct / 100, nil
}

// AllRates returns the union of the SCC rate variants and the social discount
// rates, deduplicated, ascending. Downstream consumers pick the pairing per
// category; the discounter prices every stream at every rate.
func AllRates() []float64 {
	seen := make(map[float64]bool)
	var rates []float64
	add := func(r float64) {
		if !seen[r] {
			seen[r] = true
			rates = append(rates, r)
		}
	}
	for _, s := range domain.SCCRates {
		r, err := SCCRateValue(s)
		if err != nil {
			continue
		}
		add(r)
	}
	for _, r := range domain.SocialDiscountRates {
		add(r)
	}
	sort.Float64s(rates)
	return rates
}
