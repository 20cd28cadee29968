package service

import (
	"math"
	"time"

	appErrors "github.com/campushq/college-adp-api/pkg/errors"
)

// dateLayout is the wire format for all calendar dates.
const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return t, nil
}

// percentage returns present/total*100 rounded to two decimals, 0 when
// total is 0.
func percentage(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*100*100) / 100
}
