package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

func newVintage(name string) *technology.LogitVintage {
	return technology.NewLogitVintage(technology.LogitConfig{
		Name: name, Fuel: "coal", Efficiency: 1,
	})
}

func TestVintageTableFilloutClonesWithPeriodYears(t *testing.T) {
	mt := modeltime.Default()
	table := NewVintageTable(mt.MaxPeriods(), nil)

	v := newVintage("coal-steam")
	v.SetYear(mt.PeriodToYear(0))
	table.Set("coal-steam", 0, v)
	table.Fillout("coal-steam", 0, mt.PeriodToYear)

	require.Equal(t, 1, table.Len())
	for p := 0; p < mt.MaxPeriods(); p++ {
		got := table.Vintage(0, p)
		require.NotNil(t, got)
		assert.Equal(t, mt.PeriodToYear(p), got.Year())
	}
	// Clones are distinct instances.
	assert.NotSame(t, table.Vintage(0, 0), table.Vintage(0, 1))
}

func TestVintageTableFilloutSkipsConfiguredPeriods(t *testing.T) {
	mt := modeltime.Default()
	table := NewVintageTable(mt.MaxPeriods(), nil)

	table.Set("coal-steam", 0, newVintage("coal-steam"))
	explicit := newVintage("coal-steam")
	explicit.SetYear(2020)
	table.Set("coal-steam", 3, explicit)
	table.Fillout("coal-steam", 0, mt.PeriodToYear)

	assert.Same(t, explicit, table.Vintage(0, 3))
}

func TestVintageTableRemoveReindexes(t *testing.T) {
	table := NewVintageTable(2, nil)
	table.Set("a", 0, newVintage("a"))
	table.Set("b", 0, newVintage("b"))
	table.Set("c", 0, newVintage("c"))

	require.True(t, table.Remove("b"))
	assert.Equal(t, 2, table.Len())

	i, ok := table.RowIndex("c")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = table.RowIndex("b")
	assert.False(t, ok)

	assert.False(t, table.Remove("b"), "second removal is a no-op")
}

func TestVintageTableCompleteInitPanicsOnHole(t *testing.T) {
	table := NewVintageTable(3, nil)
	table.Set("a", 0, newVintage("a"))
	// Period slots 1 and 2 left empty.
	assert.Panics(t, func() { table.CompleteInit() })
}

func TestVintageTableFrozenAfterCompleteInit(t *testing.T) {
	mt := modeltime.Default()
	table := NewVintageTable(mt.MaxPeriods(), nil)
	table.Set("a", 0, newVintage("a"))
	table.Fillout("a", 0, mt.PeriodToYear)
	table.CompleteInit()

	table.Set("b", 0, newVintage("b"))
	assert.Equal(t, 1, table.Len(), "structural mutation rejected after freeze")
	assert.False(t, table.Remove("a"))
}
