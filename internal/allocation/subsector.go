package allocation

import (
	"log/slog"

	"enershare/internal/demographics"
	"enershare/internal/emissions"
	"enershare/internal/market"
	"enershare/internal/modeltime"
)

const (
	// DefaultLogitExponent is the subsector-level price elasticity applied
	// when none is configured.
	DefaultLogitExponent = -3

	// DefaultCalibrationBoundaryYear is the last historical year before
	// which post-calibration share-weight smoothing never runs.
	DefaultCalibrationBoundaryYear = 1990

	// DefaultFixedShareFloor is the floor applied when fixed output exists
	// but the computed fixed share is still 0 at period initialization.
	// This is a workaround for initialization ordering — the real share is
	// set once the sector computes shares — and the value is a tunable
	// default, not a calibrated constant.
	DefaultFixedShareFloor = 0.1

	// maxReasonableShareWeight flags runaway calibration feedback.
	maxReasonableShareWeight = 1e4

	smallNumber     = 1e-6
	verySmallNumber = 1e-10
)

// Options configures a Subsector at construction. Flags that the original
// system read from process-wide configuration are threaded through here so
// each instance is independently testable.
type Options struct {
	// CalibrationActive enables calibration adjustments and the
	// post-calibration share-weight interpolation.
	CalibrationActive bool
	// DebugChecking enables the more expensive diagnostic checks.
	DebugChecking bool
	// ScaleYear is the year through which post-calibration share-weight
	// interpolation is carried. Zero means the model end year.
	ScaleYear int
	// CalibrationBoundaryYear defaults to DefaultCalibrationBoundaryYear.
	CalibrationBoundaryYear int
	// FixedShareFloor defaults to DefaultFixedShareFloor.
	FixedShareFloor float64
	// BaseShareWeight seeds the base-period share.
	BaseShareWeight float64

	Logger    *slog.Logger
	Markets   *market.Info
	Emissions *emissions.Coefficients
}

// Subsector is one competing aggregate within a sector: a set of
// technology vintage rows plus the per-period numeric state the share,
// capacity and calibration passes operate on.
//
// All slices are indexed by period and sized to the model horizon at
// construction. After CompleteInit only the numeric per-period fields
// mutate; the vintage table structure is frozen.
type Subsector struct {
	name       string
	sectorName string
	regionName string

	mt        *modeltime.Modeltime
	logger    *slog.Logger
	markets   *market.Info
	emissions *emissions.Coefficients

	calibrationActive         bool
	debugChecking             bool
	scaleYear                 int
	calibrationBoundaryPeriod int
	fixedShareFloor           float64
	baseShareWeight           float64

	vintages *VintageTable

	share              []float64
	shareWeights       []float64
	logitExp           []float64
	fuelPrefElasticity []float64
	capLimit           []float64
	capLimited         []bool
	fixedShare         []float64
	calOutput          []float64
	doCalibration      []bool
	calibrationStatus  []bool
	price              []float64
	fuelPrice          []float64
	co2Factor          []float64
	input              []float64
	output             []float64
}

// New constructs a Subsector with default per-period state: share weight
// 1.0, logit exponent DefaultLogitExponent, capacity limit 1.0.
func New(name, sectorName, regionName string, mt *modeltime.Modeltime, opts Options) *Subsector {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Markets == nil {
		opts.Markets = market.NewInfo()
	}
	if opts.Emissions == nil {
		opts.Emissions = emissions.NewCoefficients()
	}
	if opts.ScaleYear == 0 {
		opts.ScaleYear = mt.EndYear()
	}
	if opts.CalibrationBoundaryYear == 0 {
		opts.CalibrationBoundaryYear = DefaultCalibrationBoundaryYear
	}
	if opts.FixedShareFloor == 0 {
		opts.FixedShareFloor = DefaultFixedShareFloor
	}

	periods := mt.MaxPeriods()
	s := &Subsector{
		name:       name,
		sectorName: sectorName,
		regionName: regionName,

		mt:        mt,
		logger:    opts.Logger,
		markets:   opts.Markets,
		emissions: opts.Emissions,

		calibrationActive:         opts.CalibrationActive,
		debugChecking:             opts.DebugChecking,
		scaleYear:                 opts.ScaleYear,
		calibrationBoundaryPeriod: mt.YearToPeriod(opts.CalibrationBoundaryYear),
		fixedShareFloor:           opts.FixedShareFloor,
		baseShareWeight:           opts.BaseShareWeight,

		vintages: NewVintageTable(periods, opts.Logger),

		share:              make([]float64, periods),
		shareWeights:       make([]float64, periods),
		logitExp:           make([]float64, periods),
		fuelPrefElasticity: make([]float64, periods),
		capLimit:           make([]float64, periods),
		capLimited:         make([]bool, periods),
		fixedShare:         make([]float64, periods),
		calOutput:          make([]float64, periods),
		doCalibration:      make([]bool, periods),
		calibrationStatus:  make([]bool, periods),
		price:              make([]float64, periods),
		fuelPrice:          make([]float64, periods),
		co2Factor:          make([]float64, periods),
		input:              make([]float64, periods),
		output:             make([]float64, periods),
	}
	for p := 0; p < periods; p++ {
		s.shareWeights[p] = 1.0
		s.logitExp[p] = DefaultLogitExponent
		s.capLimit[p] = 1.0
	}
	s.share[0] = opts.BaseShareWeight
	return s
}

// Name returns the subsector name.
func (s *Subsector) Name() string { return s.name }

// Vintages exposes the technology table for configuration.
func (s *Subsector) Vintages() *VintageTable { return s.vintages }

// SetShareWeight overrides the share weight for one period.
func (s *Subsector) SetShareWeight(period int, w float64) { s.shareWeights[period] = w }

// ShareWeight returns the share weight for a period.
func (s *Subsector) ShareWeight(period int) float64 { return s.shareWeights[period] }

// ScaleShareWeight multiplies a period's share weight; a zero scale is
// ignored.
func (s *Subsector) ScaleShareWeight(scale float64, period int) {
	if scale != 0 {
		s.shareWeights[period] *= scale
	}
}

// SetLogitExponent overrides the logit exponent for one period.
func (s *Subsector) SetLogitExponent(period int, exp float64) { s.logitExp[period] = exp }

// SetFuelPrefElasticity overrides the fuel-preference elasticity.
func (s *Subsector) SetFuelPrefElasticity(period int, e float64) { s.fuelPrefElasticity[period] = e }

// SetCapacityLimit overrides the capacity limit for one period.
func (s *Subsector) SetCapacityLimit(period int, limit float64) { s.capLimit[period] = limit }

// CapacityLimit returns the configured capacity limit for a period.
func (s *Subsector) CapacityLimit(period int) float64 { return s.capLimit[period] }

// SetCalOutput registers a subsector-level calibration target.
func (s *Subsector) SetCalOutput(period int, target float64) {
	s.calOutput[period] = target
	s.doCalibration[period] = true
}

// CompleteInit finalizes the vintage table and every vintage. Must be
// called exactly once, after configuration and before the first period is
// calculated.
func (s *Subsector) CompleteInit() {
	s.vintages.CompleteInit()
}

// InitCalc performs the once-per-period initializations: technology init,
// calibration-status derivation, share-weight interpolation, and the two
// initialization-ordering guards described in Options.
func (s *Subsector) InitCalc(period int) {
	for row := 0; row < s.vintages.Len(); row++ {
		s.vintages.Vintage(row, period).InitCalc(s.regionName, s.sectorName, period)
	}

	s.setCalibrationStatus(period)
	s.InterpolateShareWeights(period)
	s.fixedShare[period] = 0

	// Fixed capacity with no share yet: hold a placeholder share until the
	// sector computes real shares, so fixed supply is not invisible.
	if s.FixedOutput(period) > 0 && s.fixedShare[period] == 0 {
		s.fixedShare[period] = s.fixedShareFloor
	}

	// A capacity limit below 1 cannot coexist with a calibration target;
	// calibration would fight the cap every iteration.
	if s.TotalCalOutputs(period) > 0 && s.capLimit[period] < 1 {
		s.logger.Debug("calibration target present, lifting capacity limit",
			"subsector", s.name, "period", period, "cap_limit", s.capLimit[period])
		s.capLimit[period] = 1.0
	}

	if period > 0 {
		for row := 0; row < s.vintages.Len(); row++ {
			prev := s.vintages.Vintage(row, period-1)
			cur := s.vintages.Vintage(row, period)
			if prev.FuelName() != cur.FuelName() {
				s.logger.Warn("technology fuel changed between periods",
					"technology", cur.Name(), "subsector", s.name,
					"sector", s.sectorName, "region", s.regionName,
					"period", period, "previous_fuel", prev.FuelName(),
					"fuel", cur.FuelName())
			}
		}
	}
}

// setCalibrationStatus marks the period calibrated when either a
// subsector-level target or any technology-level target exists.
func (s *Subsector) setCalibrationStatus(period int) {
	if s.doCalibration[period] {
		s.calibrationStatus[period] = true
		return
	}
	for row := 0; row < s.vintages.Len(); row++ {
		if s.vintages.Vintage(row, period).CalibrationStatus() {
			s.calibrationStatus[period] = true
			return
		}
	}
}

// CalibrationStatus reports whether this subsector is calibrated in the
// period. Valid after InitCalc.
func (s *Subsector) CalibrationStatus(period int) bool { return s.calibrationStatus[period] }

// Share returns the (normalized, once the sector has normalized) share.
func (s *Subsector) Share(period int) float64 { return s.share[period] }

// setShare writes the share with the normalization sanity check: shares
// are only ever set where they are supposed to be normalized, so a value
// above 1 is an anomaly worth reporting.
func (s *Subsector) setShare(v float64, period int) {
	s.share[period] = v
	if v > 1+verySmallNumber {
		s.logger.Error("share set above 1",
			"subsector", s.name, "region", s.regionName, "period", period, "share", v)
	}
}

// NormalizeShare divides this subsector's share by the sector-wide sum. A
// zero sum zeroes the share.
func (s *Subsector) NormalizeShare(sum float64, period int) {
	if sum == 0 {
		s.share[period] = 0
		return
	}
	s.setShare(s.share[period]/sum, period)
}

// FixedOutput returns the total exogenously fixed technology output.
func (s *Subsector) FixedOutput(period int) float64 {
	total := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		total += s.vintages.Vintage(row, period).FixedOutput()
	}
	return total
}

// FixedShare returns the sector share supplied by fixed output, as saved
// by the sector via SetFixedShare.
func (s *Subsector) FixedShare(period int) float64 { return s.fixedShare[period] }

// SetFixedShare saves the fixed-supply share so it can be communicated to
// consumers that only see shares, not absolute fixed output.
func (s *Subsector) SetFixedShare(period int, share float64) {
	s.fixedShare[period] = share
	if share > 1 {
		s.logger.Warn("fixed share set above 1",
			"subsector", s.name, "period", period, "fixed_share", share)
	}
}

// SetShareToFixedValue pins the share to the saved fixed-supply share.
func (s *Subsector) SetShareToFixedValue(period int) {
	s.setShare(s.fixedShare[period], period)
}

// ResetFixedOutput restores every technology's configured fixed output,
// discarding down-scaling from earlier solver iterations.
func (s *Subsector) ResetFixedOutput(period int) {
	for row := 0; row < s.vintages.Len(); row++ {
		s.vintages.Vintage(row, period).ResetFixedOutput(period)
	}
}

// ScaleFixedOutput scales all fixed technology output and the saved fixed
// share, used when sector-wide fixed supply exceeds demand.
func (s *Subsector) ScaleFixedOutput(ratio float64, period int) {
	for row := 0; row < s.vintages.Len(); row++ {
		s.vintages.Vintage(row, period).ScaleFixedOutput(ratio)
	}
	s.SetFixedShare(period, s.fixedShare[period]*ratio)
}

// AdjustShares reconciles this subsector's share with fixed supply across
// the sector, then pushes the adjusted subsector demand down to the
// technologies. Fixed-supply subsectors are pinned to fixedOutput/demand;
// purely variable subsectors are scaled by shareRatio.
func (s *Subsector) AdjustShares(demand, shareRatio, totalFixedOutput float64, period int) {
	subsectorFixed := 0.0
	varShareTotal := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		fixed := v.FixedOutput()
		subsectorFixed += fixed
		if fixed == 0 {
			varShareTotal += v.Share()
		}
	}

	if totalFixedOutput > 0 {
		switch {
		case subsectorFixed > 0 && demand > 0:
			s.setShare(subsectorFixed/demand, period)
		case subsectorFixed > 0:
			s.share[period] = 0
		case demand > 0:
			s.setShare(s.share[period]*shareRatio, period)
		default:
			s.share[period] = 0
		}
	}

	subsectorDemand := s.share[period] * demand
	for row := 0; row < s.vintages.Len(); row++ {
		s.vintages.Vintage(row, period).AdjustShares(subsectorDemand, subsectorFixed, varShareTotal, period)
	}
}

// Production shares the sector demand out to the technologies and
// accumulates subsector input and output.
func (s *Subsector) Production(demand float64, gdp *demographics.GDP, period int) {
	s.input[period] = 0
	subsectorDemand := s.share[period] * demand

	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		v.Production(s.regionName, s.sectorName, subsectorDemand, gdp, period)
		s.input[period] += v.Input()
	}
	s.SumOutput(period)
}

// SumOutput recomputes the subsector output from technology outputs.
func (s *Subsector) SumOutput(period int) {
	s.output[period] = 0
	for row := 0; row < s.vintages.Len(); row++ {
		s.output[period] += s.vintages.Vintage(row, period).Output()
	}
}

// Output returns the subsector output, re-summed for consistency.
func (s *Subsector) Output(period int) float64 {
	s.SumOutput(period)
	return s.output[period]
}

// Input returns the total energy/material input for the period.
func (s *Subsector) Input(period int) float64 { return s.input[period] }

// Price returns the share-weighted aggregate price.
func (s *Subsector) Price(period int) float64 { return s.price[period] }

// FuelPrice returns the share-weighted aggregate fuel price.
func (s *Subsector) FuelPrice(period int) float64 { return s.fuelPrice[period] }

// WeightedFuelPrice returns the fuel price weighted by the base-period
// share in period 0 and by the previous period's share otherwise, for
// sector-level fuel cost aggregation before this period's shares exist.
func (s *Subsector) WeightedFuelPrice(period int) float64 {
	share := s.share[0]
	if period > 0 {
		share = s.share[period-1]
	}
	return share * s.fuelPrice[period]
}

// CO2EmFactor returns the share-weighted CO2 emissions factor.
func (s *Subsector) CO2EmFactor(period int) float64 { return s.co2Factor[period] }

// CapLimitStatus reports whether the capacity limit is binding this
// period.
func (s *Subsector) CapLimitStatus(period int) bool { return s.capLimited[period] }

// SetCapLimitStatus records whether the subsector is pegged at its
// capacity limit.
func (s *Subsector) SetCapLimitStatus(limited bool, period int) {
	s.capLimited[period] = limited
}
