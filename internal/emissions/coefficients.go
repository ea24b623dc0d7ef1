// Package emissions provides the per-region, per-fuel CO2 coefficient
// lookup consumed by the share engine when it aggregates a subsector
// emissions factor.
package emissions

// Coefficients maps (region, fuel) to a primary-fuel CO2 coefficient.
// Unknown combinations resolve to 0, matching the treatment of non-fossil
// fuels which simply carry no coefficient.
type Coefficients struct {
	byRegion map[string]map[string]float64
}

// NewCoefficients returns an empty coefficient table.
func NewCoefficients() *Coefficients {
	return &Coefficients{byRegion: make(map[string]map[string]float64)}
}

// Set records the CO2 coefficient for a fuel in a region, replacing any
// previous value.
func (c *Coefficients) Set(region, fuel string, coef float64) {
	fuels, ok := c.byRegion[region]
	if !ok {
		fuels = make(map[string]float64)
		c.byRegion[region] = fuels
	}
	fuels[fuel] = coef
}

// PrimaryFuelCO2 returns the coefficient for a fuel in a region, or 0 when
// none is registered.
func (c *Coefficients) PrimaryFuelCO2(region, fuel string) float64 {
	return c.byRegion[region][fuel]
}
