package utils

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DateLayout is the ISO layout used by scenario files.
const DateLayout = "2006-01-02"

// SortDates sorts a slice of time.Time in ascending order.
func SortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}

// ParseDate converts YYYY-MM-DD to time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

// Days returns the number of calendar days between two dates.
func Days(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours()) / 24
}

// AddMonth behaves like Excel's EDATE, avoiding Go's month normalization surprises.
func AddMonth(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

var tenorPattern = regexp.MustCompile(`^(\d+)([DWMY])$`)

// AddTenor shifts t by a tenor string such as "3M" or "1Y".
func AddTenor(t time.Time, tenor string) (time.Time, error) {
	m := tenorPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(tenor)))
	if m == nil {
		return time.Time{}, errors.Errorf("invalid tenor %q", tenor)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "D":
		return t.AddDate(0, 0, n), nil
	case "W":
		return t.AddDate(0, 0, 7*n), nil
	case "M":
		return AddMonth(t, n), nil
	default:
		return AddMonth(t, 12*n), nil
	}
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
