package allocation

import "math"

const (
	capLimitExponent   = 2.0
	capLimitMultiplier = 1.4
)

// CapLimitTransform maps an unconstrained share into an effective ceiling
// that approaches but never reaches the capacity limit, smoothly enough
// that the equilibrium solver sees continuous derivatives. A limit at or
// above 1 - smallNumber is treated as no limit at all and the cap itself
// is returned as the ceiling.
func CapLimitTransform(capLimit, orgShare float64) float64 {
	if capLimit >= 1-smallNumber {
		return capLimit
	}
	ratio := orgShare / capLimit
	factor := math.Exp(math.Pow(capLimitMultiplier*ratio, capLimitExponent))
	return orgShare * factor / (1 + ratio*factor)
}

// LimitShares pegs the share at its smooth capacity ceiling when it
// exceeds it, or scales it by the sector-supplied multiplier otherwise so
// the sector total stays normalized as capped subsectors give share back.
// A zero multiplier means the sector has no room and zeroes the share,
// pegged or not. Once pegged the subsector otherwise stays pegged for the
// rest of the solver passes this period; the flag resets when shares are
// recomputed.
func (s *Subsector) LimitShares(multiplier float64, period int) {
	if multiplier == 0 {
		s.share[period] = 0
		return
	}
	if s.capLimited[period] {
		return
	}
	ceiling := CapLimitTransform(s.capLimit[period], s.share[period])
	switch {
	case s.share[period] >= ceiling:
		s.setShare(ceiling, period)
		s.capLimited[period] = true
	case s.fixedShare[period] == 0:
		s.share[period] *= multiplier
	}
	// A fixed-share subsector below its ceiling keeps its pinned share.
}
