// Package instrument describes the vanilla options priced by the engines.
package instrument

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/meenmo/hhwlib/calendar"
	"github.com/meenmo/hhwlib/utils"
)

// OptionType is +1 for calls and -1 for puts.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (o OptionType) String() string {
	if o == Put {
		return "Put"
	}
	return "Call"
}

// ParseOptionType accepts "call"/"put" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, errors.Errorf("unknown option type %q", s)
}

// Payoff is a plain vanilla payoff.
type Payoff struct {
	Type   OptionType
	Strike float64
}

// Value is max(w(s-K), 0).
func (p Payoff) Value(s float64) float64 {
	return math.Max(float64(p.Type)*(s-p.Strike), 0)
}

// ExerciseType enumerates the supported exercise styles.
type ExerciseType int

const (
	European ExerciseType = iota
	American
	Bermudan
)

func (e ExerciseType) String() string {
	switch e {
	case American:
		return "American"
	case Bermudan:
		return "Bermudan"
	default:
		return "European"
	}
}

// ParseExerciseType maps a name to an ExerciseType.
func ParseExerciseType(s string) (ExerciseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "european":
		return European, nil
	case "american":
		return American, nil
	case "bermudan":
		return Bermudan, nil
	}
	return 0, errors.Errorf("unknown exercise type %q", s)
}

// Exercise holds the exercise dates. European and American exercises carry
// only the expiry; Bermudan exercises list every date.
type Exercise struct {
	Type  ExerciseType
	Dates []time.Time
}

// NewEuropeanExercise exercises at expiry only.
func NewEuropeanExercise(expiry time.Time) Exercise {
	return Exercise{Type: European, Dates: []time.Time{expiry}}
}

// NewAmericanExercise exercises at any time up to expiry.
func NewAmericanExercise(expiry time.Time) Exercise {
	return Exercise{Type: American, Dates: []time.Time{expiry}}
}

// NewBermudanExercise sorts the dates; the last one is the expiry.
func NewBermudanExercise(dates []time.Time) Exercise {
	ds := make([]time.Time, len(dates))
	copy(ds, dates)
	utils.SortDates(ds)
	return Exercise{Type: Bermudan, Dates: ds}
}

// LastDate is the expiry.
func (e Exercise) LastDate() time.Time {
	if len(e.Dates) == 0 {
		return time.Time{}
	}
	return e.Dates[len(e.Dates)-1]
}

// VanillaOption pairs a payoff with an exercise.
type VanillaOption struct {
	Payoff   Payoff
	Exercise Exercise
}

// Validate checks the strike and exercise dates.
func (o VanillaOption) Validate() error {
	if o.Payoff.Type != Call && o.Payoff.Type != Put {
		return errors.Errorf("invalid option type %d", o.Payoff.Type)
	}
	if !(o.Payoff.Strike > 0) {
		return errors.Errorf("strike must be positive, got %v", o.Payoff.Strike)
	}
	if len(o.Exercise.Dates) == 0 {
		return errors.New("option has no exercise date")
	}
	return nil
}

// Dates converts the option's calendar dates into year fractions.
type Dates struct {
	Evaluation time.Time
	DayCount   utils.DayCount
}

// Time is the year fraction from the evaluation date to d.
func (c Dates) Time(d time.Time) float64 {
	return utils.YearFraction(c.Evaluation, d, c.DayCount)
}

// Maturity is the year fraction to expiry.
func (c Dates) Maturity(o VanillaOption) float64 {
	return c.Time(o.Exercise.LastDate())
}

// ExerciseTimes returns the Bermudan exercise times strictly inside (0, T].
func (c Dates) ExerciseTimes(o VanillaOption) []float64 {
	var ts []float64
	for _, d := range o.Exercise.Dates {
		if t := c.Time(d); t > 0 {
			ts = append(ts, t)
		}
	}
	return ts
}

// ExpiryAfter computes an adjusted expiry tenor after the evaluation date.
func ExpiryAfter(eval time.Time, tenor string, cal calendar.CalendarID, conv calendar.Convention) (time.Time, error) {
	d, err := utils.AddTenor(eval, tenor)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.Adjust(cal, d, conv), nil
}
