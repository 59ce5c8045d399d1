package calendar

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NullCalendar treats every day as a business day.
	NullCalendar CalendarID = "NULL"
	// WeekendsOnly treats only Saturdays and Sundays as holidays.
	WeekendsOnly CalendarID = "WEEKENDS"
	TARGET       CalendarID = "TARGET"
)

// Convention is a business-day adjustment rule.
type Convention string

const (
	Unadjusted        Convention = "Unadjusted"
	Following         Convention = "Following"
	ModifiedFollowing Convention = "ModifiedFollowing"
	Preceding         Convention = "Preceding"
)

// Parse maps a calendar name to its ID.
func Parse(name string) (CalendarID, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NULL", "NULLCALENDAR":
		return NullCalendar, nil
	case "WEEKENDS", "WEEKENDSONLY":
		return WeekendsOnly, nil
	case "TARGET":
		return TARGET, nil
	}
	return "", errors.Errorf("unknown calendar %q", name)
}

// ParseConvention maps a convention name to its value.
func ParseConvention(name string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "unadjusted":
		return Unadjusted, nil
	case "following", "f":
		return Following, nil
	case "modifiedfollowing", "mf":
		return ModifiedFollowing, nil
	case "preceding", "p":
		return Preceding, nil
	}
	return "", errors.Errorf("unknown business day convention %q", name)
}

// easterMonday returns the day-of-year of Easter Monday (anonymous Gregorian algorithm).
func easterMonday(year int) int {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.YearDay() + 1
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func isTargetHoliday(t time.Time) bool {
	d, m, y := t.Day(), t.Month(), t.Year()
	em := easterMonday(y)
	dd := t.YearDay()
	switch {
	case d == 1 && m == time.January:
		return true
	case y >= 2000 && (dd == em-3 || dd == em):
		// Good Friday, Easter Monday
		return true
	case y >= 2000 && d == 1 && m == time.May:
		return true
	case d == 25 && m == time.December:
		return true
	case y >= 2000 && d == 26 && m == time.December:
		return true
	case y == 1999 && d == 31 && m == time.December:
		return true
	}
	return false
}

// IsBusinessDay reports whether t is a business day for cal.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	switch cal {
	case NullCalendar:
		return true
	case TARGET:
		return !isWeekend(t) && !isTargetHoliday(t)
	default:
		return !isWeekend(t)
	}
}

// Adjust rolls t onto a business day using the given convention.
func Adjust(cal CalendarID, t time.Time, conv Convention) time.Time {
	switch conv {
	case Following:
		return following(cal, t)
	case Preceding:
		return preceding(cal, t)
	case ModifiedFollowing:
		adj := following(cal, t)
		if adj.Month() != t.Month() {
			return preceding(cal, t)
		}
		return adj
	default:
		return t
	}
}

func following(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func preceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AddBusinessDays moves t by n business days.
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for n > 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n--
		}
	}
	return t
}
