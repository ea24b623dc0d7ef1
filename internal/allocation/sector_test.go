package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enershare/internal/demographics"
	"enershare/internal/market"
	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

func TestAdjustForFixedSupplyPinsFixedShare(t *testing.T) {
	mt := modeltime.Default()
	sector := NewSector("electricity", "usa", mt, nil)

	hydro := newTestSubsector(t, "hydro", mt, Options{},
		technology.LogitConfig{Name: "hydro", Fuel: "water", Efficiency: 1, FixedOutput: 30})
	gas := newTestSubsector(t, "gas", mt, Options{},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1})
	sector.Add(hydro)
	sector.Add(gas)

	hydro.share[0] = 0.4
	gas.share[0] = 0.6
	sector.AdjustForFixedSupply(100, 0)

	assert.InDelta(t, 0.3, hydro.Share(0), 1e-12, "fixed supply dictates the share")
	assert.InDelta(t, 0.3, hydro.FixedShare(0), 1e-12)
	assert.InDelta(t, 0.7, gas.Share(0), 1e-12, "variable share absorbs the rest")
	assert.InDelta(t, 1.0, hydro.Share(0)+gas.Share(0), 1e-12)
}

func TestAdjustForFixedSupplyScalesBackExcessFixed(t *testing.T) {
	mt := modeltime.Default()
	sector := NewSector("electricity", "usa", mt, nil)

	hydro := newTestSubsector(t, "hydro", mt, Options{},
		technology.LogitConfig{Name: "hydro", Fuel: "water", Efficiency: 1, FixedOutput: 150})
	gas := newTestSubsector(t, "gas", mt, Options{},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1})
	sector.Add(hydro)
	sector.Add(gas)

	hydro.share[0] = 0.4
	gas.share[0] = 0.6
	sector.AdjustForFixedSupply(100, 0)

	assert.InDelta(t, 100.0, hydro.FixedOutput(0), 1e-9, "fixed output scaled to demand")
	assert.InDelta(t, 1.0, hydro.Share(0), 1e-9)
	assert.InDelta(t, 0.0, gas.Share(0), 1e-12, "no demand left for variable supply")
}

func TestAdjustForFixedSupplyNoFixedIsNoOp(t *testing.T) {
	mt := modeltime.Default()
	sector := NewSector("electricity", "usa", mt, nil)
	gas := newTestSubsector(t, "gas", mt, Options{},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1})
	sector.Add(gas)

	gas.share[0] = 1.0
	sector.AdjustForFixedSupply(100, 0)
	assert.Equal(t, 1.0, gas.Share(0))
}

func TestSectorProductionSplitsDemand(t *testing.T) {
	mt := modeltime.Default()
	markets := market.NewInfo()
	markets.SetPrice("coal", "usa", 0, 1.0)
	markets.SetPrice("gas", "usa", 0, 2.0)
	gdp := demographics.NewGDP(nil)

	sector := NewSector("electricity", "usa", mt, nil)
	coal := newTestSubsector(t, "coal", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 0.5})
	gas := newTestSubsector(t, "gas", mt, Options{Markets: markets},
		technology.LogitConfig{Name: "gas-turbine", Fuel: "gas", Efficiency: 1})
	sector.Add(coal)
	sector.Add(gas)
	sector.CompleteInit()
	sector.InitCalc(0)

	const demand = 100.0
	sector.CalcShares(gdp, 0)
	sector.Production(demand, gdp, 0)

	assert.InDelta(t, demand, sector.Output(0), 1e-9, "shares sum to 1 so output meets demand")
	assert.InDelta(t, coal.Output(0)/0.5+gas.Output(0), sector.Input(0), 1e-9)
	assert.Greater(t, sector.Price(0), 0.0)
}

func TestSubsectorLookupAndDuplicates(t *testing.T) {
	mt := modeltime.Default()
	sector := NewSector("electricity", "usa", mt, nil)

	first := newTestSubsector(t, "coal", mt, Options{},
		technology.LogitConfig{Name: "a", Fuel: "coal", Efficiency: 1})
	second := newTestSubsector(t, "coal", mt, Options{},
		technology.LogitConfig{Name: "b", Fuel: "coal", Efficiency: 1})
	sector.Add(first)
	sector.Add(second)

	require.Len(t, sector.Subsectors(), 1)
	got, ok := sector.Subsector("coal")
	require.True(t, ok)
	assert.Same(t, second, got, "most recent definition wins")

	_, ok = sector.Subsector("missing")
	assert.False(t, ok)
}

func TestWeightedFuelPriceUsesLaggedShare(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "coal", mt, Options{BaseShareWeight: 0.25},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1})
	sub.fuelPrice[0] = 4.0
	sub.fuelPrice[1] = 6.0
	sub.share[0] = 0.25
	sub.share[1] = 0.9

	assert.InDelta(t, 0.25*4.0, sub.WeightedFuelPrice(0), 1e-12, "base period uses base share")
	assert.InDelta(t, 0.25*6.0, sub.WeightedFuelPrice(1), 1e-12, "later periods lag one period")
}

func TestInitCalcAppliesFixedShareFloor(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "hydro", mt, Options{},
		technology.LogitConfig{Name: "hydro", Fuel: "water", Efficiency: 1, FixedOutput: 10})
	sub.InitCalc(0)
	assert.InDelta(t, DefaultFixedShareFloor, sub.FixedShare(0), 1e-12)
}

func TestInitCalcLiftsCapLimitUnderCalibration(t *testing.T) {
	mt := modeltime.Default()
	sub := newTestSubsector(t, "coal", mt, Options{},
		technology.LogitConfig{Name: "coal-steam", Fuel: "coal", Efficiency: 1})
	sub.SetCapacityLimit(0, 0.5)
	sub.SetCalOutput(0, 10)

	sub.InitCalc(0)
	assert.Equal(t, 1.0, sub.CapacityLimit(0))
	assert.True(t, sub.CalibrationStatus(0))
}
