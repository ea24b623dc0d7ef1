package allocation

// InterpolateShareWeights carries a just-calibrated share weight forward
// so the first projection period does not see a step change. It runs at
// the start of each period once the previous period has been calibrated,
// and only for periods past the last historical calibration year.
//
// The trajectory runs from the previous period to the period of the
// configured scale year. When the scale year is the previous period
// itself the calibrated weight is simply held constant through the end of
// the horizon.
func (s *Subsector) InterpolateShareWeights(period int) {
	if !s.calibrationActive ||
		period <= s.calibrationBoundaryPeriod ||
		!s.calibrationStatus[period-1] {
		return
	}

	begin := period - 1
	endPeriod := s.mt.YearToPeriod(s.scaleYear)
	if endPeriod < begin {
		return
	}

	if s.shareWeights[begin] < 0 {
		s.logger.Error("negative calibrated share weight, skipping interpolation",
			"subsector", s.name, "region", s.regionName,
			"period", begin, "share_weight", s.shareWeights[begin])
		return
	}

	s.logger.Debug("interpolating share weights from calibrated period",
		"subsector", s.name, "region", s.regionName,
		"begin_period", begin, "end_period", endPeriod,
		"share_weight", s.shareWeights[begin])
	s.shareWeightLinearInterp(begin, endPeriod)

	if s.vintages.Len() > 1 {
		s.NormalizeTechShareWeights(begin)
		s.TechShareWeightLinearInterp(begin, s.mt.MaxPeriods()-1)
	}
}

// shareWeightLinearInterp writes a linear share-weight trajectory between
// two periods, preserving the end-period value. When the two periods
// coincide, the begin value is held constant through the final period.
func (s *Subsector) shareWeightLinearInterp(beginPeriod, endPeriod int) {
	increment := 0.0
	loopPeriod := endPeriod
	if endPeriod > beginPeriod {
		increment = (s.shareWeights[endPeriod] - s.shareWeights[beginPeriod]) /
			float64(endPeriod-beginPeriod)
	} else {
		loopPeriod = s.mt.MaxPeriods() - 1
	}
	for p := beginPeriod + 1; p <= loopPeriod; p++ {
		s.shareWeights[p] = s.shareWeights[beginPeriod] + increment*float64(p-beginPeriod)
	}
}

// NormalizeTechShareWeights rescales technology share weights so they
// average 1 across the technologies with nonzero weight. Only relative
// technology weights matter within a subsector, so the normalization
// changes nothing about the solution while keeping calibrated weights in
// a recognizable range.
func (s *Subsector) NormalizeTechShareWeights(period int) {
	total := 0.0
	nonzero := 0
	for row := 0; row < s.vintages.Len(); row++ {
		w := s.vintages.Vintage(row, period).ShareWeight()
		total += w
		if w > 0 {
			nonzero++
		}
	}
	if total < verySmallNumber {
		s.logger.Error("cannot normalize technology share weights, total is zero",
			"subsector", s.name, "region", s.regionName, "period", period)
		return
	}
	scale := float64(nonzero) / total
	for row := 0; row < s.vintages.Len(); row++ {
		s.vintages.Vintage(row, period).ScaleShareWeight(scale)
	}
}

// TechShareWeightLinearInterp writes linear technology share-weight
// trajectories between two periods, holding constant through the horizon
// when the periods coincide. Rows with a zero begin weight are left
// untouched so a disabled technology stays disabled.
func (s *Subsector) TechShareWeightLinearInterp(beginPeriod, endPeriod int) {
	for row := 0; row < s.vintages.Len(); row++ {
		begin := s.vintages.Vintage(row, beginPeriod).ShareWeight()
		if begin <= 0 {
			continue
		}
		increment := 0.0
		loopPeriod := endPeriod
		if endPeriod > beginPeriod {
			end := s.vintages.Vintage(row, endPeriod).ShareWeight()
			increment = (end - begin) / float64(endPeriod-beginPeriod)
		} else {
			loopPeriod = s.mt.MaxPeriods() - 1
		}
		for p := beginPeriod + 1; p <= loopPeriod; p++ {
			s.vintages.Vintage(row, p).SetShareWeight(begin + increment*float64(p-beginPeriod))
		}
	}
}
