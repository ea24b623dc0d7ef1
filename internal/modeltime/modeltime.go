// Package modeltime maps between simulation periods and calendar years.
//
// The simulation is discretized into a fixed number of periods of equal
// length. Period 0 is the base year. All per-period state vectors in the
// engine are sized to MaxPeriods and indexed by period.
package modeltime

import "enershare/internal/errors"

// Default model horizon: 1975 base year, 15-year steps through 2095.
const (
	DefaultStartYear = 1975
	DefaultYearStep  = 15
	DefaultPeriods   = 9
)

// Modeltime converts between period indices and calendar years.
// It is immutable after construction and safe for concurrent reads.
type Modeltime struct {
	startYear int
	yearStep  int
	periods   int
}

// New creates a Modeltime with the given base year, step length in years,
// and number of periods.
func New(startYear, yearStep, periods int) (*Modeltime, error) {
	if yearStep <= 0 {
		return nil, errors.Validation("year_step", "must be positive", yearStep)
	}
	if periods < 1 {
		return nil, errors.Validation("periods", "at least one period is required", periods)
	}
	return &Modeltime{startYear: startYear, yearStep: yearStep, periods: periods}, nil
}

// Default returns the standard model horizon.
func Default() *Modeltime {
	mt, _ := New(DefaultStartYear, DefaultYearStep, DefaultPeriods)
	return mt
}

// MaxPeriods returns the number of simulated periods.
func (m *Modeltime) MaxPeriods() int { return m.periods }

// StartYear returns the base calendar year (period 0).
func (m *Modeltime) StartYear() int { return m.startYear }

// EndYear returns the calendar year of the final period.
func (m *Modeltime) EndYear() int {
	return m.startYear + (m.periods-1)*m.yearStep
}

// PeriodToYear returns the calendar year for a period index.
func (m *Modeltime) PeriodToYear(period int) int {
	return m.startYear + period*m.yearStep
}

// YearToPeriod returns the period containing the given calendar year.
// Years before the base year map to 0 and years beyond the horizon map to
// the final period, so callers can use configured years directly.
func (m *Modeltime) YearToPeriod(year int) int {
	if year <= m.startYear {
		return 0
	}
	period := (year - m.startYear) / m.yearStep
	if period >= m.periods {
		return m.periods - 1
	}
	return period
}

// ValidPeriod reports whether period is within the simulated horizon.
func (m *Modeltime) ValidPeriod(period int) bool {
	return period >= 0 && period < m.periods
}
