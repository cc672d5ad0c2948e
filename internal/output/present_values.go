package output

import (
	"encoding/csv"
	"strconv"

	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/domain"
	"github.com/USEPA/EPA-OMEGA-Model-sub004/internal/tabular"
)

// PresentValueRow is one year of one discounted benefit stream. PresentValue
// and Annualized repeat on every row of the stream.
type PresentValueRow struct {
	SessionPolicy string
	Category      string
	DiscountRate  float64
	Series        domain.DiscountSeries
	CalendarYear  int32

	Value                  float64
	CumulativePresentValue float64
	PresentValue           float64
	Annualized             float64
}

// WritePresentValues emits the discounted benefit streams.
func WritePresentValues(path string, rows []PresentValueRow) error {
	return tabular.WriteAtomic(path, func(w *csv.Writer) error {
		header := []string{
			"session_policy", "category", "discount_rate", "series",
			"calendar_year", "value_dollars",
			"cumulative_present_value_dollars", "present_value_dollars",
			"annualized_value_dollars",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{
				r.SessionPolicy,
				r.Category,
				formatFloat(r.DiscountRate),
				string(r.Series),
				strconv.FormatInt(int64(r.CalendarYear), 10),
				formatFloat(r.Value),
				formatFloat(r.CumulativePresentValue),
				formatFloat(r.PresentValue),
				formatFloat(r.Annualized),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
