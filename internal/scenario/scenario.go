// Package scenario loads a model scenario from YAML, builds the region,
// sector and technology object graph, and runs the simulation across all
// regions.
package scenario

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"enershare/internal/errors"
)

// Scenario is the root of a scenario file.
type Scenario struct {
	Name    string   `yaml:"name" validate:"required"`
	Regions []Region `yaml:"regions" validate:"required,min=1,dive"`
}

// Region defines one region's markets, demographics and sectors.
type Region struct {
	Name string `yaml:"name" validate:"required"`
	// GDPPerCapita is per-period; shares scale to the base period value.
	GDPPerCapita []float64 `yaml:"gdp_per_capita"`
	FuelPrices   []FuelPrice `yaml:"fuel_prices" validate:"dive"`
	// CO2Coefficients maps fuel name to emissions per unit input.
	CO2Coefficients map[string]float64 `yaml:"co2_coefficients"`
	Sectors         []Sector           `yaml:"sectors" validate:"required,min=1,dive"`
}

// FuelPrice is a per-period price series for one fuel.
type FuelPrice struct {
	Fuel   string    `yaml:"fuel" validate:"required"`
	Prices []float64 `yaml:"prices" validate:"required,min=1"`
}

// Sector defines one demand sector and its competing subsectors.
type Sector struct {
	Name       string      `yaml:"name" validate:"required"`
	Demands    []float64   `yaml:"demands" validate:"required,min=1"`
	Subsectors []Subsector `yaml:"subsectors" validate:"required,min=1,dive"`
}

// Subsector defines one competing aggregate. Sparse per-period overrides
// are keyed by period index.
type Subsector struct {
	Name               string          `yaml:"name" validate:"required"`
	LogitExponent      *float64        `yaml:"logit_exponent"`
	FuelPrefElasticity float64         `yaml:"fuel_pref_elasticity"`
	BaseShareWeight    float64         `yaml:"base_share_weight"`
	ShareWeights       map[int]float64 `yaml:"share_weights"`
	CapacityLimits     map[int]float64 `yaml:"capacity_limits"`
	CalOutputs         map[int]float64 `yaml:"cal_outputs"`
	Technologies       []Technology    `yaml:"technologies" validate:"required,min=1,dive"`
}

// Technology defines one technology row; the period-0 vintage is cloned
// across the horizon.
type Technology struct {
	Name          string   `yaml:"name" validate:"required"`
	Type          string   `yaml:"type" validate:"omitempty,oneof=logit crop"`
	Fuel          string   `yaml:"fuel"`
	Efficiency    float64  `yaml:"efficiency"`
	NonEnergyCost float64  `yaml:"non_energy_cost"`
	ShareWeight   float64  `yaml:"share_weight"`
	LogitExponent float64  `yaml:"logit_exponent"`
	FixedOutput   float64  `yaml:"fixed_output"`
	CalOutput     *float64 `yaml:"cal_output"`

	// Crop-only fields.
	LandType     string   `yaml:"land_type"`
	VariableCost float64  `yaml:"variable_cost"`
	Yield        float64  `yaml:"yield"`
	CalLandUsed  *float64 `yaml:"cal_land_used"`
	AgProdChange float64  `yaml:"ag_prod_change"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates scenario YAML.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	if err := s.checkNames(); err != nil {
		return nil, err
	}
	return &s, nil
}

// checkNames rejects duplicate identities that the YAML schema cannot
// express as constraints.
func (s *Scenario) checkNames() error {
	regions := map[string]bool{}
	for _, r := range s.Regions {
		if regions[r.Name] {
			return errors.New(errors.ErrTypeScenario,
				fmt.Sprintf("duplicate region %q", r.Name), nil)
		}
		regions[r.Name] = true
		sectors := map[string]bool{}
		for _, sec := range r.Sectors {
			if sectors[sec.Name] {
				return errors.New(errors.ErrTypeScenario,
					fmt.Sprintf("duplicate sector %q in region %q", sec.Name, r.Name), nil)
			}
			sectors[sec.Name] = true
		}
	}
	return nil
}
