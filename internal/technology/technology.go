// Package technology defines the technology-vintage contract consumed by
// the share allocation engine, together with the standard logit-based
// implementation and a profit-based agricultural variant.
//
// A vintage is one year-specific instance of a named technology. The
// engine holds one vintage per (technology row, period) and drives each
// through the same sequence every period: CalcCost, CalcShare,
// NormalizeShare, then Production once the subsector demand is known.
// Calibration and fixed-output adjustments go through the narrower
// AdjustForCalibration / ScaleFixedOutput calls.
//
// Implementations carry no shared mutable state: each variant is an
// independent struct satisfying Vintage, and the engine never downcasts.
package technology

import "enershare/internal/demographics"

// Vintage is the fixed contract between the share engine and a single
// technology instance bound to one period.
type Vintage interface {
	// Identity and lifecycle.
	Name() string
	Year() int
	SetYear(year int)
	Clone() Vintage
	CompleteInit()
	InitCalc(region, sector string, period int)

	// Cost and share. CalcShare returns the unnormalized share and must be
	// preceded by CalcCost in the same period.
	CalcCost(region, sector string, period int)
	CalcShare(region string, gdp *demographics.GDP, period int) float64
	NormalizeShare(sum float64)
	Share() float64
	TechCost() float64
	FuelCost() float64
	FuelName() string
	Efficiency() float64
	LogitExponent() float64

	// Production accounting, valid after Production has run.
	Production(region, sector string, subsectorDemand float64, gdp *demographics.GDP, period int)
	AdjustShares(subsectorDemand, subsectorFixedOutput, varShareTotal float64, period int)
	Output() float64
	Input() float64

	// Exogenously fixed output. FixedOutput reflects any down-scaling
	// applied through ScaleFixedOutput until ResetFixedOutput restores the
	// configured value.
	FixedOutput() float64
	OutputFixed() bool
	ScaleFixedOutput(ratio float64)
	ResetFixedOutput(period int)

	// Calibration.
	CalibrationStatus() bool
	CalibrationOutput() float64
	CalibrationInput() float64
	ScaleCalibrationInput(scale float64)
	AdjustForCalibration(subsectorTarget float64)

	// Share weight.
	Available() bool
	ShareWeight() float64
	SetShareWeight(w float64)
	ScaleShareWeight(scale float64)
}
