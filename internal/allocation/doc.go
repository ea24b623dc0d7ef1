// Package allocation implements the market-share allocation and
// calibration engine for a multi-region, multi-period energy/economy
// simulation.
//
// A Subsector is an aggregate of competing technology vintages. Each
// simulated period the engine:
//
//  1. Asks every vintage for its cost and unnormalized logit share,
//     normalizes across the subsector, and aggregates a share-weighted
//     price, fuel price and CO2 emissions factor (CalcShare).
//  2. Applies a smooth capacity-limit transform so a subsector cannot
//     exceed its configured share ceiling (LimitShares).
//  3. On calibration periods, rescales share weights so computed outputs
//     reproduce externally supplied historical targets, respecting
//     exogenously fixed supply (AdjustForCalibration).
//  4. Entering the next period, interpolates share-weight trajectories so
//     a calibration jump does not become a step function in projections
//     (InterpolateShareWeights).
//
// The package is deliberately forgiving: numeric anomalies are logged and
// corrected where a safe default exists, never fatal, because the host is
// an iterative equilibrium solver that re-runs the engine many times and
// is expected to self-correct. The one fatal condition is a structural
// precondition violation — a technology row with a missing vintage — which
// indicates a programming error, not bad user data.
//
// File layout:
//
//   - vintages.go: period-indexed technology table, frozen after init
//   - subsector.go: per-period state, lifecycle, production accounting
//   - share.go: logit share and price aggregation
//   - capacity.go: smooth capacity-limit transform
//   - calibration.go: share-weight reconciliation against targets
//   - interpolate.go: post-calibration share-weight smoothing
//   - sector.go: single-sector driver that owns the call ordering
package allocation
