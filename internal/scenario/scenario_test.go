package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: base
regions:
  - name: usa
    gdp_per_capita: [10000, 12000, 15000]
    fuel_prices:
      - fuel: coal
        prices: [2.0, 2.2]
      - fuel: gas
        prices: [1.0]
    co2_coefficients:
      coal: 25.0
      gas: 14.0
    sectors:
      - name: electricity
        demands: [100, 110, 120]
        subsectors:
          - name: coal
            cal_outputs:
              0: 30
            technologies:
              - name: coal-steam
                fuel: coal
                efficiency: 0.4
          - name: gas
            cal_outputs:
              0: 70
            technologies:
              - name: gas-turbine
                fuel: gas
                efficiency: 0.5
`

func TestParseValidScenario(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "base", s.Name)
	require.Len(t, s.Regions, 1)
	region := s.Regions[0]
	assert.Equal(t, "usa", region.Name)
	assert.Len(t, region.FuelPrices, 2)
	assert.InDelta(t, 25.0, region.CO2Coefficients["coal"], 1e-12)

	require.Len(t, region.Sectors, 1)
	sector := region.Sectors[0]
	require.Len(t, sector.Subsectors, 2)
	assert.InDelta(t, 30.0, sector.Subsectors[0].CalOutputs[0], 1e-12)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse([]byte(`
regions:
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors:
          - name: coal
            technologies:
              - name: coal-steam
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
name: base
bogus: true
regions:
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors:
          - name: coal
            technologies:
              - name: coal-steam
`))
	assert.Error(t, err)
}

func TestParseRejectsEmptySubsectors(t *testing.T) {
	_, err := Parse([]byte(`
name: base
regions:
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors: []
`))
	assert.Error(t, err)
}

func TestParseRejectsDuplicateRegions(t *testing.T) {
	_, err := Parse([]byte(`
name: base
regions:
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors:
          - name: coal
            technologies:
              - name: coal-steam
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors:
          - name: coal
            technologies:
              - name: coal-steam
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate region")
}

func TestParseRejectsBadTechnologyType(t *testing.T) {
	_, err := Parse([]byte(`
name: base
regions:
  - name: usa
    sectors:
      - name: electricity
        demands: [100]
        subsectors:
          - name: coal
            technologies:
              - name: coal-steam
                type: nuclear-fusion
`))
	assert.Error(t, err)
}
