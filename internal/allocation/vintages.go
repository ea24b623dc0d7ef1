package allocation

import (
	"fmt"
	"log/slog"

	"enershare/internal/technology"
)

// VintageTable holds the technology rows of a subsector. Each row carries
// one vintage per simulated period and is identified by the technology
// name. Row order is insertion order and is part of the contract: callers
// cache row indices by name, so rows are never reordered. Removing a row
// rebuilds the whole name index, which is acceptable because removal only
// happens during configuration.
//
// After CompleteInit the structure is frozen: the simulation loop relies
// on stable row indices, so structural mutation attempts afterwards are
// rejected and reported.
type VintageTable struct {
	periods int
	logger  *slog.Logger
	rows    [][]technology.Vintage
	index   map[string]int
	frozen  bool
}

// NewVintageTable creates an empty table sized for the given number of
// periods.
func NewVintageTable(periods int, logger *slog.Logger) *VintageTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &VintageTable{
		periods: periods,
		logger:  logger,
		index:   make(map[string]int),
	}
}

// Len returns the number of technology rows.
func (t *VintageTable) Len() int { return len(t.rows) }

// Periods returns the number of period slots per row.
func (t *VintageTable) Periods() int { return t.periods }

// RowIndex returns the row index for a technology name.
func (t *VintageTable) RowIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Vintage returns the vintage at (row, period). It panics on an
// out-of-range index, which is a caller bug.
func (t *VintageTable) Vintage(row, period int) technology.Vintage {
	return t.rows[row][period]
}

// Set places a vintage for one period, creating the row on first use. A
// vintage already present for that period is superseded in place — the
// most recently configured definition wins, reported as a configuration
// anomaly at debug level.
func (t *VintageTable) Set(name string, period int, v technology.Vintage) {
	if t.frozen {
		t.logger.Error("vintage table is frozen, ignoring structural mutation",
			"technology", name, "period", period)
		return
	}
	if period < 0 || period >= t.periods {
		t.logger.Error("vintage period out of range, ignoring",
			"technology", name, "period", period, "periods", t.periods)
		return
	}
	row, ok := t.index[name]
	if !ok {
		row = len(t.rows)
		t.rows = append(t.rows, make([]technology.Vintage, t.periods))
		t.index[name] = row
	}
	if t.rows[row][period] != nil {
		t.logger.Debug("superseding duplicate technology definition",
			"technology", name, "period", period)
	}
	t.rows[row][period] = v
}

// Fillout clones the vintage at fromPeriod into every later period slot
// that has not been explicitly configured, stamping each clone with its
// period's calendar year.
func (t *VintageTable) Fillout(name string, fromPeriod int, periodYear func(period int) int) {
	if t.frozen {
		t.logger.Error("vintage table is frozen, ignoring fillout", "technology", name)
		return
	}
	row, ok := t.index[name]
	if !ok || t.rows[row][fromPeriod] == nil {
		t.logger.Error("fillout source vintage missing",
			"technology", name, "period", fromPeriod)
		return
	}
	src := t.rows[row][fromPeriod]
	for p := fromPeriod + 1; p < t.periods; p++ {
		if t.rows[row][p] != nil {
			t.logger.Debug("fillout skipping explicitly configured period",
				"technology", name, "period", p)
			continue
		}
		clone := src.Clone()
		clone.SetYear(periodYear(p))
		t.rows[row][p] = clone
	}
}

// Remove deletes an entire technology row and rebuilds the name index
// from scratch. Incremental index shifting is a classic source of
// off-by-one bugs and removal is rare, so the full rebuild is the simpler
// contract.
func (t *VintageTable) Remove(name string) bool {
	if t.frozen {
		t.logger.Error("vintage table is frozen, ignoring row removal", "technology", name)
		return false
	}
	row, ok := t.index[name]
	if !ok {
		return false
	}
	t.rows = append(t.rows[:row], t.rows[row+1:]...)
	t.index = make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		for _, v := range r {
			if v != nil {
				t.index[v.Name()] = i
				break
			}
		}
	}
	return true
}

// CompleteInit verifies every row has a vintage in every period slot,
// finalizes each vintage, and freezes the table. A hole in a row is a
// programming-contract violation and panics.
func (t *VintageTable) CompleteInit() {
	for row, r := range t.rows {
		for period, v := range r {
			if v == nil {
				panic(fmt.Sprintf("technology row %d has no vintage for period %d", row, period))
			}
			v.CompleteInit()
		}
	}
	t.frozen = true
}
