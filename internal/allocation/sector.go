package allocation

import (
	"log/slog"
	"math"

	"enershare/internal/demographics"
	"enershare/internal/modeltime"
)

// Sector owns a set of competing subsectors and enforces the per-period
// call ordering: shares, then capacity limits, then fixed-supply
// reconciliation, then calibration, then production. A sector instance is
// never shared across concurrent callers.
type Sector struct {
	name       string
	regionName string

	mt     *modeltime.Modeltime
	logger *slog.Logger

	subsectors []*Subsector
	index      map[string]int
}

// NewSector creates an empty sector.
func NewSector(name, regionName string, mt *modeltime.Modeltime, logger *slog.Logger) *Sector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sector{
		name:       name,
		regionName: regionName,
		mt:         mt,
		logger:     logger,
		index:      make(map[string]int),
	}
}

// Name returns the sector name.
func (s *Sector) Name() string { return s.name }

// Add appends a subsector. A duplicate name supersedes the previous
// definition in place, reported as a configuration anomaly.
func (s *Sector) Add(sub *Subsector) {
	if i, ok := s.index[sub.Name()]; ok {
		s.logger.Debug("superseding duplicate subsector definition",
			"subsector", sub.Name(), "sector", s.name)
		s.subsectors[i] = sub
		return
	}
	s.index[sub.Name()] = len(s.subsectors)
	s.subsectors = append(s.subsectors, sub)
}

// Subsector returns a subsector by name.
func (s *Sector) Subsector(name string) (*Subsector, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.subsectors[i], true
}

// Subsectors returns the subsectors in configuration order.
func (s *Sector) Subsectors() []*Subsector { return s.subsectors }

// CompleteInit finalizes every subsector. Must be called once after
// configuration.
func (s *Sector) CompleteInit() {
	for _, sub := range s.subsectors {
		sub.CompleteInit()
	}
}

// InitCalc runs the once-per-period initializations and publishes implied
// fixed input demand to the market store.
func (s *Sector) InitCalc(period int) {
	for _, sub := range s.subsectors {
		sub.InitCalc(period)
		sub.SetImpliedFixedInput(period)
	}
}

// CalcShares computes, normalizes and capacity-limits the subsector
// shares for a period.
func (s *Sector) CalcShares(gdp *demographics.GDP, period int) {
	sum := 0.0
	for _, sub := range s.subsectors {
		sub.SetCapLimitStatus(false, period)
		sub.CalcShare(gdp, period)
		sum += sub.Share(period)
	}
	for _, sub := range s.subsectors {
		sub.NormalizeShare(sum, period)
	}
	s.applyCapacityLimits(period)
}

// applyCapacityLimits repeatedly pegs over-limit subsectors at their
// smooth ceiling and redistributes the surrendered share across the
// remaining ones until no new subsector hits its limit. Each pass pegs at
// least one subsector, so the loop is bounded by the subsector count.
// The transform sits strictly below the input share whenever the limit is
// below 1, so every limited subsector pegs on the first pass; later passes
// only rescale the unlimited ones to absorb the surrendered share.
func (s *Sector) applyCapacityLimits(period int) {
	for pass := 0; pass <= len(s.subsectors); pass++ {
		cappedShare := 0.0
		uncappedShare := 0.0
		pending := false
		for _, sub := range s.subsectors {
			if sub.CapLimitStatus(period) {
				cappedShare += sub.Share(period)
				continue
			}
			uncappedShare += sub.Share(period)
			if sub.CapacityLimit(period) < 1 {
				pending = true
			}
		}
		multiplier := 1.0
		if uncappedShare > 0 {
			multiplier = (1 - cappedShare) / uncappedShare
		}
		if !pending && math.Abs(multiplier-1) < verySmallNumber {
			return
		}
		for _, sub := range s.subsectors {
			sub.LimitShares(multiplier, period)
		}
	}
}

// AdjustForFixedSupply reconciles shares with exogenously fixed supply.
// Fixed output takes the share it implies at the given demand; if total
// fixed supply exceeds demand it is scaled back proportionally; the
// remaining share is redistributed across variable subsectors in
// proportion to their computed shares.
func (s *Sector) AdjustForFixedSupply(demand float64, period int) {
	totalFixed := 0.0
	for _, sub := range s.subsectors {
		sub.ResetFixedOutput(period)
		totalFixed += sub.FixedOutput(period)
	}
	if totalFixed == 0 {
		return
	}

	if demand > 0 && totalFixed > demand {
		ratio := demand / totalFixed
		s.logger.Warn("fixed supply exceeds sector demand, scaling back",
			"sector", s.name, "region", s.regionName, "period", period,
			"fixed_output", totalFixed, "demand", demand, "ratio", ratio)
		for _, sub := range s.subsectors {
			sub.ScaleFixedOutput(ratio, period)
		}
		totalFixed = demand
	}

	fixedShareTotal := 0.0
	variableShare := 0.0
	for _, sub := range s.subsectors {
		if fixed := sub.FixedOutput(period); fixed > 0 {
			share := 0.0
			if demand > 0 {
				share = fixed / demand
			}
			sub.SetFixedShare(period, share)
			fixedShareTotal += share
			continue
		}
		sub.SetFixedShare(period, 0)
		variableShare += sub.Share(period)
	}

	shareRatio := 1.0
	if variableShare > 0 {
		shareRatio = (1 - fixedShareTotal) / variableShare
	}
	for _, sub := range s.subsectors {
		sub.AdjustShares(demand, shareRatio, totalFixed, period)
	}
}

// Calibrate rescales subsector share weights against calibration targets.
// Only subsectors flagged as calibrated in the period are adjusted; the
// sector-wide totals are computed over all of them.
func (s *Sector) Calibrate(demand float64, period int) {
	totalFixed := 0.0
	totalCal := 0.0
	allFixed := true
	for _, sub := range s.subsectors {
		totalFixed += sub.FixedOutput(period)
		totalCal += sub.TotalCalOutputs(period)
		if !sub.AllOutputFixed(period) {
			allFixed = false
		}
	}
	for _, sub := range s.subsectors {
		if sub.CalibrationStatus(period) {
			sub.AdjustForCalibration(demand, totalFixed, totalCal, allFixed, period)
		}
	}
}

// Production shares the demand out to subsectors and their technologies.
func (s *Sector) Production(demand float64, gdp *demographics.GDP, period int) {
	for _, sub := range s.subsectors {
		sub.Production(demand, gdp, period)
	}
}

// Price returns the share-weighted sector price.
func (s *Sector) Price(period int) float64 {
	price := 0.0
	for _, sub := range s.subsectors {
		price += sub.Share(period) * sub.Price(period)
	}
	return price
}

// Output sums subsector outputs.
func (s *Sector) Output(period int) float64 {
	total := 0.0
	for _, sub := range s.subsectors {
		total += sub.Output(period)
	}
	return total
}

// Input sums subsector inputs.
func (s *Sector) Input(period int) float64 {
	total := 0.0
	for _, sub := range s.subsectors {
		total += sub.Input(period)
	}
	return total
}

// WeightedFuelPrice aggregates the lag-share-weighted fuel price across
// subsectors.
func (s *Sector) WeightedFuelPrice(period int) float64 {
	total := 0.0
	for _, sub := range s.subsectors {
		total += sub.WeightedFuelPrice(period)
	}
	return total
}

// CalibrationStatus reports whether any subsector is calibrated in the
// period.
func (s *Sector) CalibrationStatus(period int) bool {
	for _, sub := range s.subsectors {
		if sub.CalibrationStatus(period) {
			return true
		}
	}
	return false
}
