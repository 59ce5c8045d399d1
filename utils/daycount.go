package utils

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DayCount names a day count convention.
type DayCount string

const (
	Act360  DayCount = "ACT/360"
	Act365F DayCount = "ACT/365F"
	Thirty  DayCount = "30E/360"
)

// ErrUnknownDayCount is returned by ParseDayCount for unsupported names.
var ErrUnknownDayCount = errors.New("unknown day count convention")

// ParseDayCount accepts the usual spellings ("Actual365Fixed", "ACT/365F", ...).
func ParseDayCount(name string) (DayCount, error) {
	switch strings.ToUpper(strings.ReplaceAll(name, " ", "")) {
	case "ACT/360", "ACTUAL360", "A360":
		return Act360, nil
	case "ACT/365F", "ACT/365", "ACTUAL365FIXED", "A365F", "":
		return Act365F, nil
	case "30E/360", "30/360", "THIRTY360":
		return Thirty, nil
	}
	return "", errors.Wrapf(ErrUnknownDayCount, "%q", name)
}

// YearFraction computes year fraction between two dates using the given convention.
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, dc DayCount) float64 {
	switch dc {
	case Act360:
		return Days(start, end) / 360.0
	case Thirty:
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}
