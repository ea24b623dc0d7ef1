package technology

import (
	"log/slog"
	"math"

	"enershare/internal/demographics"
	"enershare/internal/market"
)

// DefaultTechLogitExponent is the price elasticity used for competition
// between sibling technologies when none is configured. It is steeper than
// the subsector-level default because technologies within a subsector are
// closer substitutes.
const DefaultTechLogitExponent = -6

// smallNumber guards divisions and degenerate powers throughout the
// technology implementations.
const smallNumber = 1e-6

// LogitConfig configures a standard logit technology vintage.
type LogitConfig struct {
	Name               string
	Year               int
	Fuel               string
	Efficiency         float64 // output per unit fuel input, must be > 0
	NonEnergyCost      float64 // cost per unit output on top of fuel cost
	ShareWeight        float64 // defaults to 1
	LogitExponent      float64 // defaults to DefaultTechLogitExponent
	FuelPrefElasticity float64
	FixedOutput        float64 // > 0 marks output as exogenously fixed
	CalOutput          float64 // calibration target output
	HasCalOutput       bool

	Markets *market.Info
	Logger  *slog.Logger
}

// LogitVintage is the standard technology: cost is fuel price over
// efficiency plus a non-energy adder, and the unnormalized share is a logit
// over that cost.
type LogitVintage struct {
	name               string
	year               int
	fuel               string
	efficiency         float64
	nonEnergyCost      float64
	shareWeight        float64
	logitExp           float64
	fuelPrefElasticity float64

	fixedOutput        float64 // configured
	workingFixedOutput float64 // after any down-scaling this iteration
	calOutput          float64
	hasCalOutput       bool

	markets *market.Info
	logger  *slog.Logger

	cost     float64
	fuelCost float64
	share    float64
	input    float64
	output   float64
}

// NewLogitVintage builds a logit vintage, applying defaults for omitted
// share weight and logit exponent.
func NewLogitVintage(cfg LogitConfig) *LogitVintage {
	if cfg.ShareWeight == 0 {
		cfg.ShareWeight = 1
	}
	if cfg.LogitExponent == 0 {
		cfg.LogitExponent = DefaultTechLogitExponent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LogitVintage{
		name:               cfg.Name,
		year:               cfg.Year,
		fuel:               cfg.Fuel,
		efficiency:         cfg.Efficiency,
		nonEnergyCost:      cfg.NonEnergyCost,
		shareWeight:        cfg.ShareWeight,
		logitExp:           cfg.LogitExponent,
		fuelPrefElasticity: cfg.FuelPrefElasticity,
		fixedOutput:        cfg.FixedOutput,
		workingFixedOutput: cfg.FixedOutput,
		calOutput:          cfg.CalOutput,
		hasCalOutput:       cfg.HasCalOutput,
		markets:            cfg.Markets,
		logger:             cfg.Logger,
	}
}

func (v *LogitVintage) Name() string          { return v.name }
func (v *LogitVintage) Year() int             { return v.year }
func (v *LogitVintage) SetYear(year int)      { v.year = year }
func (v *LogitVintage) FuelName() string      { return v.fuel }
func (v *LogitVintage) Efficiency() float64   { return v.efficiency }
func (v *LogitVintage) LogitExponent() float64 { return v.logitExp }

// Clone returns a copy for fillout into later periods. Working state is
// carried over as-is; the scenario layer resets the year.
func (v *LogitVintage) Clone() Vintage {
	clone := *v
	return &clone
}

// CompleteInit finalizes configuration. A non-positive efficiency is a
// configuration anomaly; it is forced to 1 so that cost and input math stay
// defined, and reported.
func (v *LogitVintage) CompleteInit() {
	if v.efficiency <= 0 {
		v.logger.Warn("technology efficiency not positive, forcing to 1",
			"technology", v.name, "efficiency", v.efficiency)
		v.efficiency = 1
	}
}

// InitCalc restores per-iteration working state at the top of a period.
func (v *LogitVintage) InitCalc(region, sector string, period int) {
	v.workingFixedOutput = v.fixedOutput
}

// CalcCost computes the total cost per unit output for the period: fuel
// price over efficiency plus the non-energy cost.
func (v *LogitVintage) CalcCost(region, sector string, period int) {
	fuelPrice := v.markets.Price(v.fuel, region, period)
	v.fuelCost = fuelPrice / v.efficiency
	v.cost = v.fuelCost + v.nonEnergyCost
	if v.cost < 0 {
		v.logger.Warn("negative technology cost",
			"technology", v.name, "region", region, "cost", v.cost)
	}
}

// CalcShare computes the unnormalized share. A zero cost forces the share
// to 0: raising 0 to a negative exponent is undefined.
func (v *LogitVintage) CalcShare(region string, gdp *demographics.GDP, period int) float64 {
	if v.cost == 0 {
		v.share = 0
		return 0
	}
	scaledGDP := gdp.ScaledGDPPerCapita(period)
	v.share = v.shareWeight * math.Pow(v.cost, v.logitExp) * math.Pow(scaledGDP, v.fuelPrefElasticity)
	return v.share
}

// NormalizeShare divides the share by the subsector-wide sum. A zero sum
// zeroes the share.
func (v *LogitVintage) NormalizeShare(sum float64) {
	if sum == 0 {
		v.share = 0
		return
	}
	v.share /= sum
}

func (v *LogitVintage) Share() float64    { return v.share }
func (v *LogitVintage) TechCost() float64 { return v.cost }
func (v *LogitVintage) FuelCost() float64 { return v.fuelCost }

// Production converts the subsector demand into this technology's output
// and fuel input. Fixed output takes precedence over the computed share.
func (v *LogitVintage) Production(region, sector string, subsectorDemand float64, gdp *demographics.GDP, period int) {
	if v.OutputFixed() {
		v.output = v.workingFixedOutput
	} else {
		v.output = v.share * subsectorDemand
	}
	v.input = v.output / v.efficiency
}

// AdjustShares reconciles this technology's share with fixed supply inside
// the subsector. Fixed technologies are pinned to fixedOutput/demand;
// variable technologies split the remaining share in proportion to their
// previous shares.
func (v *LogitVintage) AdjustShares(subsectorDemand, subsectorFixedOutput, varShareTotal float64, period int) {
	if subsectorFixedOutput <= 0 {
		return
	}
	if v.workingFixedOutput > 0 {
		if subsectorDemand > 0 {
			v.share = v.workingFixedOutput / subsectorDemand
		} else {
			v.share = 0
		}
		return
	}
	if varShareTotal > 0 && subsectorDemand > 0 {
		remaining := 1 - subsectorFixedOutput/subsectorDemand
		if remaining < 0 {
			remaining = 0
		}
		v.share = v.share / varShareTotal * remaining
	} else {
		v.share = 0
	}
}

func (v *LogitVintage) Output() float64 { return v.output }
func (v *LogitVintage) Input() float64  { return v.input }

func (v *LogitVintage) FixedOutput() float64 { return v.workingFixedOutput }
func (v *LogitVintage) OutputFixed() bool    { return v.fixedOutput != 0 }

// ScaleFixedOutput scales the working fixed output down when total fixed
// supply exceeds demand. The configured value is untouched and restored by
// ResetFixedOutput.
func (v *LogitVintage) ScaleFixedOutput(ratio float64) {
	v.workingFixedOutput *= ratio
}

// ResetFixedOutput restores the configured fixed output, discarding any
// down-scaling from earlier solver iterations.
func (v *LogitVintage) ResetFixedOutput(period int) {
	v.workingFixedOutput = v.fixedOutput
}

func (v *LogitVintage) CalibrationStatus() bool    { return v.hasCalOutput }
func (v *LogitVintage) CalibrationOutput() float64 { return v.calOutput }

// CalibrationInput returns the fuel input implied by the calibration
// target at this vintage's efficiency.
func (v *LogitVintage) CalibrationInput() float64 {
	return v.calOutput / v.efficiency
}

// ScaleCalibrationInput scales the calibration target, keeping input and
// output consistent through the fixed efficiency.
func (v *LogitVintage) ScaleCalibrationInput(scale float64) {
	v.calOutput *= scale
}

// AdjustForCalibration rescales the share weight so that this technology's
// slice of the subsector target reproduces its own calibration target.
func (v *LogitVintage) AdjustForCalibration(subsectorTarget float64) {
	if !v.hasCalOutput {
		return
	}
	techDemand := v.share * subsectorTarget
	if techDemand > 0 {
		v.shareWeight *= v.calOutput / techDemand
	}
	if v.shareWeight < 0 {
		v.logger.Warn("technology share weight negative after calibration, reset to 1",
			"technology", v.name, "share_weight", v.shareWeight)
		v.shareWeight = 1
	}
}

// Available reports whether this vintage competes: it exists and has a
// nonzero share weight.
func (v *LogitVintage) Available() bool { return v.shareWeight > 0 }

func (v *LogitVintage) ShareWeight() float64     { return v.shareWeight }
func (v *LogitVintage) SetShareWeight(w float64) { v.shareWeight = w }

// ScaleShareWeight multiplies the share weight. A zero scale is ignored so
// that normalization with a degenerate total cannot wipe weights out.
func (v *LogitVintage) ScaleShareWeight(scale float64) {
	if scale != 0 {
		v.shareWeight *= scale
	}
}
