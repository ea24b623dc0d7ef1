package allocation

import (
	"math"

	"enershare/internal/market"
)

// TotalCalOutputs returns the calibration target for the period: the
// subsector-level target when one is configured, otherwise the sum of
// calibrated technology outputs.
func (s *Subsector) TotalCalOutputs(period int) float64 {
	if s.doCalibration[period] {
		return s.calOutput[period]
	}
	total := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		if v.CalibrationStatus() {
			total += v.CalibrationOutput()
		}
	}
	return total
}

// CalAndFixedOutputs returns the sum of calibrated and exogenously fixed
// output for the period.
func (s *Subsector) CalAndFixedOutputs(period int) float64 {
	total := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		switch {
		case v.CalibrationStatus():
			total += v.CalibrationOutput()
		case v.OutputFixed():
			total += v.FixedOutput()
		}
	}
	return total
}

// CalAndFixedInputs returns the calibrated and fixed demand for one input
// good, converting fixed output back through efficiency.
func (s *Subsector) CalAndFixedInputs(goodName string, period int) float64 {
	total := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		if v.FuelName() != goodName {
			continue
		}
		switch {
		case v.CalibrationStatus():
			total += v.CalibrationInput()
		case v.OutputFixed() && v.Efficiency() > 0:
			total += v.FixedOutput() / v.Efficiency()
		}
	}
	return total
}

// AllOutputFixed reports whether every technology's output is pinned this
// period, either by calibration or by fixed output. A subsector-level
// calibration target pins everything by itself.
func (s *Subsector) AllOutputFixed(period int) bool {
	if s.doCalibration[period] {
		return true
	}
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		if !v.CalibrationStatus() && !v.OutputFixed() {
			return false
		}
	}
	return true
}

// InputsAllFixed reports whether every technology consuming goodName has
// fixed or calibrated output, so its input demand is fully determined.
func (s *Subsector) InputsAllFixed(goodName string, period int) bool {
	any := false
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		if v.FuelName() != goodName {
			continue
		}
		any = true
		if !v.CalibrationStatus() && !v.OutputFixed() {
			return false
		}
	}
	return any
}

// ScaleCalibratedValues scales the calibrated input of every technology
// consuming goodName, used to reconcile supply and demand targets across
// sectors before calibration runs.
func (s *Subsector) ScaleCalibratedValues(goodName string, scale float64, period int) {
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		if v.FuelName() == goodName {
			v.ScaleCalibrationInput(scale)
		}
	}
}

// SetImpliedFixedInput accumulates this subsector's fully determined
// input demand into the market information store, so upstream supply
// sectors can see the demand their calibration must meet.
func (s *Subsector) SetImpliedFixedInput(period int) {
	// One accumulation per fuel; CalAndFixedInputs already sums every row
	// consuming it.
	consumers := make(map[string]int)
	for row := 0; row < s.vintages.Len(); row++ {
		if fuel := s.vintages.Vintage(row, period).FuelName(); fuel != "" {
			consumers[fuel]++
		}
	}
	seen := make(map[string]bool)
	for row := 0; row < s.vintages.Len(); row++ {
		fuel := s.vintages.Vintage(row, period).FuelName()
		if fuel == "" || seen[fuel] {
			continue
		}
		seen[fuel] = true
		if !s.InputsAllFixed(fuel, period) {
			continue
		}
		if consumers[fuel] > 1 {
			s.logger.Warn("multiple technologies consume the same input good",
				"subsector", s.name, "region", s.regionName,
				"period", period, "fuel", fuel, "technologies", consumers[fuel])
		}
		s.markets.AddValue(fuel, s.regionName, period, market.InfoKeyCalDemand,
			s.CalAndFixedInputs(fuel, period))
	}
}

// availableTechCount returns the number of technologies still available
// for new investment this period.
func (s *Subsector) availableTechCount(period int) int {
	n := 0
	for row := 0; row < s.vintages.Len(); row++ {
		if s.vintages.Vintage(row, period).Available() {
			n++
		}
	}
	return n
}

// AdjustForCalibration rescales this subsector's share weight so that the
// share-implied output reproduces the calibration target, then delegates
// within the subsector when more than one technology competes.
//
// Targets are rescaled to the demand actually available after fixed
// supply, except when the sector-wide targets undershoot available demand
// and variable subsectors exist to absorb the remainder.
func (s *Subsector) AdjustForCalibration(sectorDemand, totalFixedOutput, totalCalOutputs float64, allFixedOutput bool, period int) {
	calOutputSubsect := s.calOutput[period]
	if !s.doCalibration[period] {
		calOutputSubsect = 0
		for row := 0; row < s.vintages.Len(); row++ {
			v := s.vintages.Vintage(row, period)
			if v.CalibrationStatus() {
				calOutputSubsect += v.CalibrationOutput()
			}
		}
	}

	// A zero weight would zero the share forever; calibration needs a
	// live weight to scale.
	if s.shareWeights[period] == 0 && calOutputSubsect > 0 {
		s.logger.Warn("zero share weight with calibration target, resetting to 1",
			"subsector", s.name, "region", s.regionName, "period", period)
		s.shareWeights[period] = 1.0
	}

	availableDemand := math.Max(sectorDemand-totalFixedOutput, 0)
	if totalCalOutputs > 0 && !(totalCalOutputs < availableDemand && !allFixedOutput) {
		calOutputSubsect *= availableDemand / totalCalOutputs
	}

	shareDemand := s.share[period] * sectorDemand
	if shareDemand > 0 {
		s.shareWeights[period] *= calOutputSubsect / shareDemand
	}

	if s.shareWeights[period] < 0 {
		s.logger.Error("negative share weight from calibration, clamping to 1",
			"subsector", s.name, "region", s.regionName, "period", period,
			"share_weight", s.shareWeights[period],
			"calibration_output", calOutputSubsect)
		s.shareWeights[period] = 1.0
	}
	if s.shareWeights[period] > maxReasonableShareWeight {
		s.logger.Warn("unreasonably large share weight from calibration",
			"subsector", s.name, "region", s.regionName, "period", period,
			"share_weight", s.shareWeights[period])
	}

	if s.availableTechCount(period) > 1 {
		for row := 0; row < s.vintages.Len(); row++ {
			v := s.vintages.Vintage(row, period)
			if v.CalibrationStatus() {
				v.AdjustForCalibration(calOutputSubsect)
			}
		}
	}
}
