package allocation

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enershare/internal/demographics"
	"enershare/internal/market"
	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

func TestCalcShareTechSharesSumToOne(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 2.0)
	markets.SetPrice("gas", "usa", 0, 3.0)

	sub := newTestSubsector(t, "thermal", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
	)
	sub.CalcShare(demographics.NewGDP(nil), 0)

	sum := 0.0
	for row := 0; row < sub.Vintages().Len(); row++ {
		sum += sub.Vintages().Vintage(row, 0).Share()
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestCalcShareCheaperTechnologyWinsLargerShare(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 10.0)
	markets.SetPrice("gas", "usa", 0, 20.0)

	sub := newTestSubsector(t, "thermal", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "cheap", Fuel: "coal", Efficiency: 1, ShareWeight: 1.0, LogitExponent: -3},
		technology.LogitConfig{Name: "dear", Fuel: "gas", Efficiency: 1, ShareWeight: 0.5, LogitExponent: -3},
	)
	sub.CalcShare(demographics.NewGDP(nil), 0)

	cheapRow, ok := sub.Vintages().RowIndex("cheap")
	require.True(t, ok)
	dearRow, ok := sub.Vintages().RowIndex("dear")
	require.True(t, ok)
	cheap := sub.Vintages().Vintage(cheapRow, 0).Share()
	dear := sub.Vintages().Vintage(dearRow, 0).Share()

	unnormCheap := 1.0 * math.Pow(10, -3)
	unnormDear := 0.5 * math.Pow(20, -3)
	assert.InDelta(t, 1.0, cheap+dear, 1e-12)
	assert.InDelta(t, unnormCheap/(unnormCheap+unnormDear), cheap, 1e-12)
	assert.Greater(t, cheap, dear)
}

func TestCalcShareSubsectorLogitForm(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 4.0)

	sub := newTestSubsector(t, "coal", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
	)
	sub.SetShareWeight(0, 0.5)
	sub.CalcShare(demographics.NewGDP(nil), 0)

	// One tech: subsector price equals tech cost 4.0.
	assert.InDelta(t, 4.0, sub.Price(0), 1e-12)
	assert.InDelta(t, 0.5*math.Pow(4.0, -3), sub.Share(0), 1e-12)
}

func TestCalcShareZeroPriceForcesZeroShare(t *testing.T) {
	mt := modeltime.Default()
	// No market price and no non-energy cost: aggregate price is 0.
	sub := newTestSubsector(t, "free", mt, Options{},
		technology.LogitConfig{Name: "free", Fuel: "air", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
	)
	sub.SetShareWeight(0, 100)
	sub.CalcShare(demographics.NewGDP(nil), 0)

	assert.Equal(t, 0.0, sub.Share(0))
	assert.False(t, math.IsNaN(sub.Share(0)))
	assert.False(t, math.IsInf(sub.Share(0), 0))
}

func TestCalcShareAggregatesFuelPriceAndCO2(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 2.0)
	markets.SetPrice("gas", "usa", 0, 2.0)

	sub := newTestSubsector(t, "thermal", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
	)
	sub.emissions.Set("usa", "coal", 25.0)
	sub.emissions.Set("usa", "gas", 14.0)
	sub.CalcShare(demographics.NewGDP(nil), 0)

	// Equal costs, equal weights: 50/50 technology split.
	assert.InDelta(t, 2.0, sub.FuelPrice(0), 1e-12)
	assert.InDelta(t, 0.5*25+0.5*14, sub.CO2EmFactor(0), 1e-12)
}

func TestCalcShareLogitExponentWarningNeedsCompetition(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 2.0)
	markets.SetPrice("gas", "usa", 0, 2.0)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// A lone technology does not compete on price, so a non-negative
	// exponent there is harmless.
	single := newTestSubsector(t, "coal", mt,
		Options{Markets: markets, DebugChecking: true, Logger: logger},
		technology.LogitConfig{Name: "only", Fuel: "coal", Efficiency: 1, ShareWeight: 1, LogitExponent: 1},
	)
	single.CalcShare(demographics.NewGDP(nil), 0)
	assert.NotContains(t, buf.String(), "non-negative technology logit exponent")

	buf.Reset()
	pair := newTestSubsector(t, "thermal", mt,
		Options{Markets: markets, DebugChecking: true, Logger: logger},
		technology.LogitConfig{Name: "a", Fuel: "coal", Efficiency: 1, ShareWeight: 1, LogitExponent: 1},
		technology.LogitConfig{Name: "b", Fuel: "gas", Efficiency: 1, ShareWeight: 1, LogitExponent: -3},
	)
	pair.CalcShare(demographics.NewGDP(nil), 0)
	assert.Contains(t, buf.String(), "non-negative technology logit exponent")
}

func TestNormalizeShareZeroSum(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "a", mt, Options{},
		technology.LogitConfig{Name: "a", Fuel: "coal", Efficiency: 1},
	)
	sub.share[0] = 0.4
	sub.NormalizeShare(0, 0)
	assert.Equal(t, 0.0, sub.Share(0))

	sub.share[0] = 0.4
	sub.NormalizeShare(0.8, 0)
	assert.InDelta(t, 0.5, sub.Share(0), 1e-12)
}
