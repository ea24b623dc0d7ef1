// Package demographics supplies per-period demographic drivers for the
// share engine. The only driver the engine consumes is scaled per-capita
// GDP, which feeds the fuel-preference elasticity term of the logit share.
package demographics

// GDP holds a per-period series of per-capita GDP values scaled to the base
// period. A scaled value of 1.0 means base-period income; the subsector
// share formula raises this value to the fuel-preference elasticity.
type GDP struct {
	scaledPerCapita []float64
}

// NewGDP builds a GDP context from an absolute per-capita series, scaling
// every period by the base-period value. A nil or empty series yields a
// context that reports 1.0 for every period.
func NewGDP(perCapita []float64) *GDP {
	if len(perCapita) == 0 || perCapita[0] <= 0 {
		return &GDP{}
	}
	scaled := make([]float64, len(perCapita))
	for i, v := range perCapita {
		scaled[i] = v / perCapita[0]
	}
	return &GDP{scaledPerCapita: scaled}
}

// ScaledGDPPerCapita returns the per-capita GDP for the period relative to
// the base period. Periods outside the series return 1.0 so that a missing
// demographic input degrades to no preference shift rather than a crash.
func (g *GDP) ScaledGDPPerCapita(period int) float64 {
	if period < 0 || period >= len(g.scaledPerCapita) {
		return 1.0
	}
	return g.scaledPerCapita[period]
}
