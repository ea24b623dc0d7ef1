package allocation

import (
	"math"

	"enershare/internal/demographics"
)

// calcTechShares computes and normalizes the technology shares within the
// subsector, aggregating the share-weighted subsector price, fuel price
// and CO2 emissions factor as it goes.
func (s *Subsector) calcTechShares(gdp *demographics.GDP, period int) {
	sum := 0.0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		v.CalcCost(s.regionName, s.sectorName, period)
		sum += v.CalcShare(s.regionName, gdp, period)

		if s.debugChecking && s.vintages.Len() > 1 && v.LogitExponent() >= 0 {
			s.logger.Warn("non-negative technology logit exponent",
				"technology", v.Name(), "subsector", s.name,
				"region", s.regionName, "exponent", v.LogitExponent())
		}
	}

	s.price[period] = 0
	s.fuelPrice[period] = 0
	s.co2Factor[period] = 0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		v.NormalizeShare(sum)
		s.price[period] += v.Share() * v.TechCost()
		s.fuelPrice[period] += v.Share() * v.FuelCost()
		s.co2Factor[period] += v.Share() * s.emissions.PrimaryFuelCO2(s.regionName, v.FuelName())
	}
}

// CalcPrice recomputes the aggregate subsector price from current
// technology costs and shares, without re-deriving the shares. Used by
// price-only solver sweeps.
func (s *Subsector) CalcPrice(period int) {
	s.price[period] = 0
	s.fuelPrice[period] = 0
	for row := 0; row < s.vintages.Len(); row++ {
		v := s.vintages.Vintage(row, period)
		v.CalcCost(s.regionName, s.sectorName, period)
		s.price[period] += v.Share() * v.TechCost()
		s.fuelPrice[period] += v.Share() * v.FuelCost()
	}
}

// CalcShare computes this subsector's unnormalized logit share:
//
//	shareWeight * price^logitExponent * scaledGDPperCap^fuelPrefElasticity
//
// Technology shares and the aggregate price are computed first. A
// non-positive aggregate price forces the share to 0 so a negative
// exponent never produces an infinite preference for a free good.
func (s *Subsector) CalcShare(gdp *demographics.GDP, period int) {
	s.calcTechShares(gdp, period)

	price := s.price[period]
	if price <= 0 {
		if price < 0 {
			s.logger.Error("negative subsector price",
				"subsector", s.name, "region", s.regionName,
				"period", period, "price", price)
		}
		s.share[period] = 0
		return
	}

	scaledGDP := gdp.ScaledGDPPerCapita(period)
	s.share[period] = s.shareWeights[period] *
		math.Pow(price, s.logitExp[period]) *
		math.Pow(scaledGDP, s.fuelPrefElasticity[period])

	if s.shareWeights[period] > maxReasonableShareWeight {
		s.logger.Warn("unreasonably large share weight",
			"subsector", s.name, "region", s.regionName,
			"period", period, "share_weight", s.shareWeights[period])
	}
	if s.share[period] < 0 {
		s.logger.Error("negative subsector share",
			"subsector", s.name, "region", s.regionName,
			"period", period, "share", s.share[period],
			"share_weight", s.shareWeights[period])
	}
}
