package technology

import (
	"fmt"
	"log/slog"
	"math"

	"enershare/internal/demographics"
	"enershare/internal/market"
)

// Market-info keys used by crop vintages to pass calibrated facts forward
// between periods. The calibrated variable cost is keyed per technology and
// region because the product market may span regions.
const (
	InfoKeyCalPrice = "calPrice"

	calVarCostKeyFormat = "calVarCost-%s-%s" // technology name, region
)

// CropConfig configures a profit-based agricultural vintage.
type CropConfig struct {
	Name         string
	Year         int
	LandType     string
	VariableCost float64 // cost per unit output before calibration
	Yield        float64 // output per unit land, must be > 0
	CalLandUsed  float64 // < 0 when absent; >= 0 fixes output to land * yield
	AgProdChange float64 // fractional yield improvement per period
	ShareWeight  float64
	LogitExp     float64

	Markets *market.Info
	Logger  *slog.Logger
}

// CropVintage is a profit-based technology. Its output is driven by
// allocated land and yield rather than the logit competition, so from the
// share engine's point of view it is an exogenously fixed supplier. Its
// variable cost can be recalibrated from the observed product price, and
// the calibrated cost is passed forward to later periods through the
// market-info store.
type CropVintage struct {
	name         string
	year         int
	landType     string
	variableCost float64
	yield        float64
	calLandUsed  float64
	agProdChange float64
	shareWeight  float64
	logitExp     float64

	markets *market.Info
	logger  *slog.Logger

	workingFixedOutput float64
	cost               float64
	share              float64
	input              float64
	output             float64
}

// NewCropVintage builds a crop vintage. CalLandUsed defaults to absent
// (-1) when the zero value is passed with no land configured.
func NewCropVintage(cfg CropConfig) *CropVintage {
	if cfg.ShareWeight == 0 {
		cfg.ShareWeight = 1
	}
	if cfg.LogitExp == 0 {
		cfg.LogitExp = DefaultTechLogitExponent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CropVintage{
		name:         cfg.Name,
		year:         cfg.Year,
		landType:     cfg.LandType,
		variableCost: cfg.VariableCost,
		yield:        cfg.Yield,
		calLandUsed:  cfg.CalLandUsed,
		agProdChange: cfg.AgProdChange,
		shareWeight:  cfg.ShareWeight,
		logitExp:     cfg.LogitExp,
		markets:      cfg.Markets,
		logger:       cfg.Logger,
	}
}

func (v *CropVintage) Name() string           { return v.name }
func (v *CropVintage) Year() int              { return v.year }
func (v *CropVintage) SetYear(year int)       { v.year = year }
func (v *CropVintage) FuelName() string       { return v.landType }
func (v *CropVintage) Efficiency() float64    { return v.yield }
func (v *CropVintage) LogitExponent() float64 { return v.logitExp }

func (v *CropVintage) Clone() Vintage {
	clone := *v
	return &clone
}

func (v *CropVintage) CompleteInit() {
	if v.yield <= 0 {
		v.logger.Warn("crop yield not positive, forcing to 1",
			"technology", v.name, "yield", v.yield)
		v.yield = 1
	}
}

// InitCalc applies the per-period yield improvement and, when calibration
// land is present, derives the calibrated variable cost from the observed
// product price and records it for later periods.
func (v *CropVintage) InitCalc(region, sector string, period int) {
	if period > 0 {
		v.yield *= 1 + v.agProdChange
	}
	v.workingFixedOutput = v.configuredFixedOutput()

	calVarCostKey := fmt.Sprintf(calVarCostKeyFormat, v.name, region)

	if v.calLandUsed >= 0 {
		calPrice, ok := v.markets.Value(sector, region, period, InfoKeyCalPrice)
		if ok {
			// Back out the variable cost that makes the calibrated land
			// allocation break even at the observed price.
			calVarCost := calPrice - v.profitRatePerOutput(calPrice)
			if calVarCost > smallNumber {
				v.variableCost = calVarCost
				v.markets.SetValue(sector, region, period, calVarCostKey, calVarCost)
			} else {
				v.logger.Debug("calibrated variable cost too low, keeping configured cost",
					"technology", v.name, "region", region, "cal_var_cost", calVarCost)
			}
		}
		return
	}

	// Uncalibrated periods reuse the most recent calibrated cost if one was
	// recorded.
	for p := period - 1; p >= 0; p-- {
		if cost, ok := v.markets.Value(sector, region, p, calVarCostKey); ok {
			v.variableCost = cost
			return
		}
	}
}

// profitRatePerOutput is the margin per unit output implied by the product
// price at the current yield. Land rent is folded into the variable cost,
// so the margin is simply price-cost floored at zero.
func (v *CropVintage) profitRatePerOutput(price float64) float64 {
	margin := price - v.variableCost
	if margin < 0 {
		return 0
	}
	return margin
}

// ProfitRate returns the per-unit-land profit rate at the given product
// price. This is the contract land-allocation consumers rely on.
func (v *CropVintage) ProfitRate(price float64) float64 {
	return v.profitRatePerOutput(price) * v.yield
}

func (v *CropVintage) CalcCost(region, sector string, period int) {
	v.cost = v.variableCost
}

// CalcShare computes an unnormalized logit share over the variable cost.
// When output is land-fixed the share still participates in price
// aggregation but production ignores it.
func (v *CropVintage) CalcShare(region string, gdp *demographics.GDP, period int) float64 {
	if v.cost == 0 {
		v.share = 0
		return 0
	}
	v.share = v.shareWeight * math.Pow(v.cost, v.logitExp)
	return v.share
}

func (v *CropVintage) NormalizeShare(sum float64) {
	if sum == 0 {
		v.share = 0
		return
	}
	v.share /= sum
}

func (v *CropVintage) Share() float64    { return v.share }
func (v *CropVintage) TechCost() float64 { return v.cost }

// FuelCost is zero: the only input is land, which carries no fuel price.
func (v *CropVintage) FuelCost() float64 { return 0 }

func (v *CropVintage) Production(region, sector string, subsectorDemand float64, gdp *demographics.GDP, period int) {
	if v.OutputFixed() {
		v.output = v.workingFixedOutput
	} else {
		v.output = v.share * subsectorDemand
	}
	v.input = v.output / v.yield
}

func (v *CropVintage) AdjustShares(subsectorDemand, subsectorFixedOutput, varShareTotal float64, period int) {
	if subsectorFixedOutput <= 0 || !v.OutputFixed() {
		return
	}
	if subsectorDemand > 0 {
		v.share = v.workingFixedOutput / subsectorDemand
	} else {
		v.share = 0
	}
}

func (v *CropVintage) Output() float64 { return v.output }
func (v *CropVintage) Input() float64  { return v.input }

func (v *CropVintage) configuredFixedOutput() float64 {
	if v.calLandUsed < 0 {
		return 0
	}
	return v.calLandUsed * v.yield
}

func (v *CropVintage) FixedOutput() float64 { return v.workingFixedOutput }
func (v *CropVintage) OutputFixed() bool    { return v.calLandUsed >= 0 }

func (v *CropVintage) ScaleFixedOutput(ratio float64) {
	v.workingFixedOutput *= ratio
}

func (v *CropVintage) ResetFixedOutput(period int) {
	v.workingFixedOutput = v.configuredFixedOutput()
}

// Crop output is fixed by land allocation, not calibrated through the
// share-weight mechanism, so calibration status is always false.
func (v *CropVintage) CalibrationStatus() bool         { return false }
func (v *CropVintage) CalibrationOutput() float64      { return 0 }
func (v *CropVintage) CalibrationInput() float64       { return 0 }
func (v *CropVintage) ScaleCalibrationInput(_ float64) {}
func (v *CropVintage) AdjustForCalibration(_ float64)  {}

func (v *CropVintage) Available() bool       { return v.shareWeight > 0 }
func (v *CropVintage) ShareWeight() float64  { return v.shareWeight }
func (v *CropVintage) SetShareWeight(w float64) { v.shareWeight = w }

func (v *CropVintage) ScaleShareWeight(scale float64) {
	if scale != 0 {
		v.shareWeight *= scale
	}
}
