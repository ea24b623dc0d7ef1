package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

func TestCapLimitTransformBoundedByLimit(t *testing.T) {
	for _, capLimit := range []float64{0.1, 0.25, 0.5, 0.9} {
		prev := 0.0
		for share := 0.0; share <= 2.0; share += 0.01 {
			got := CapLimitTransform(capLimit, share)
			assert.LessOrEqual(t, got, capLimit,
				"capLimit=%v share=%v", capLimit, share)
			assert.GreaterOrEqual(t, got+1e-12, prev,
				"monotonic in share at capLimit=%v share=%v", capLimit, share)
			prev = got
		}
	}
}

func TestCapLimitTransformApproachesLimit(t *testing.T) {
	got := CapLimitTransform(0.3, 5.0)
	assert.InDelta(t, 0.3, got, 0.01, "large shares push against the ceiling")
}

func TestCapLimitTransformInactiveLimitPassthrough(t *testing.T) {
	assert.Equal(t, 1.0, CapLimitTransform(1.0, 0.4))
	assert.Equal(t, 1.5, CapLimitTransform(1.5, 0.4))
}

func TestLimitSharesIdempotentOncePegged(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "wind", mt, Options{},
		technology.LogitConfig{Name: "wind", Fuel: "wind", Efficiency: 1},
	)
	sub.SetCapacityLimit(0, 0.4)
	sub.share[0] = 0.5

	sub.LimitShares(1.0, 0)
	require.True(t, sub.CapLimitStatus(0))
	pegged := sub.Share(0)
	assert.LessOrEqual(t, pegged, 0.4)

	sub.LimitShares(1.3, 0)
	assert.Equal(t, pegged, sub.Share(0), "second call must not re-transform")
}

func TestLimitSharesZeroMultiplierClampsToZero(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "wind", mt, Options{},
		technology.LogitConfig{Name: "wind", Fuel: "wind", Efficiency: 1},
	)
	sub.share[0] = 0.5
	sub.LimitShares(0, 0)
	assert.Equal(t, 0.0, sub.Share(0))
}

func TestLimitSharesZeroMultiplierOverridesPeg(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "wind", mt, Options{},
		technology.LogitConfig{Name: "wind", Fuel: "wind", Efficiency: 1},
	)
	sub.SetCapacityLimit(0, 0.4)
	sub.share[0] = 0.5

	sub.LimitShares(1.0, 0)
	require.True(t, sub.CapLimitStatus(0))

	sub.LimitShares(0, 0)
	assert.Equal(t, 0.0, sub.Share(0), "no sector room zeroes even a pegged share")
}

func TestLimitSharesScalesUnlimitedShare(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "gas", mt, Options{},
		technology.LogitConfig{Name: "gas", Fuel: "gas", Efficiency: 1},
	)
	sub.share[0] = 0.3
	sub.LimitShares(1.5, 0)
	assert.InDelta(t, 0.45, sub.Share(0), 1e-12)
	assert.False(t, sub.CapLimitStatus(0))
}

func TestLimitSharesFixedShareBelowLimitUnchanged(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "hydro", mt, Options{},
		technology.LogitConfig{Name: "hydro", Fuel: "water", Efficiency: 1},
	)
	sub.share[0] = 0.3
	sub.SetFixedShare(0, 0.3)
	sub.LimitShares(1.5, 0)
	assert.InDelta(t, 0.3, sub.Share(0), 1e-12, "fixed share is not rescaled")
}

func TestSectorCapacityLimitsRedistribute(t *testing.T) {
	mt := modeltime.Default()
	sector := NewSector("electricity", "usa", mt, nil)

	capped := newTestSubsector(t, "wind", mt, Options{},
		technology.LogitConfig{Name: "wind", Fuel: "wind", Efficiency: 1})
	capped.SetCapacityLimit(0, 0.2)
	free1 := newTestSubsector(t, "coal", mt, Options{},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1})
	free2 := newTestSubsector(t, "gas", mt, Options{},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1})
	sector.Add(capped)
	sector.Add(free1)
	sector.Add(free2)

	capped.share[0] = 0.5
	free1.share[0] = 0.3
	free2.share[0] = 0.2
	sector.applyCapacityLimits(0)

	assert.True(t, capped.CapLimitStatus(0))
	assert.LessOrEqual(t, capped.Share(0), 0.2)
	total := capped.Share(0) + free1.Share(0) + free2.Share(0)
	assert.InDelta(t, 1.0, total, 1e-9, "surrendered share is redistributed")
	// Redistribution preserves the relative weights of the free subsectors.
	assert.InDelta(t, 1.5, free1.Share(0)/free2.Share(0), 1e-9)
}
