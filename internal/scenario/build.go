package scenario

import (
	"log/slog"

	"enershare/internal/allocation"
	"enershare/internal/config"
	"enershare/internal/demographics"
	"enershare/internal/emissions"
	"enershare/internal/market"
	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

// RegionModel is one region's fully wired simulation state.
type RegionModel struct {
	Name    string
	GDP     *demographics.GDP
	Sectors []*allocation.Sector
	Demands map[string][]float64
}

// World is the built object graph for one scenario.
type World struct {
	Scenario  string
	Modeltime *modeltime.Modeltime
	Markets   *market.Info
	Regions   []*RegionModel
}

// Build wires the scenario into the simulation object graph. Market
// prices and CO2 coefficients are registered as part of building, so the
// returned world is ready to run.
func Build(s *Scenario, cfg config.SimulationConfig, logger *slog.Logger) (*World, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mt, err := modeltime.New(cfg.StartYear, cfg.YearStep, cfg.Periods)
	if err != nil {
		return nil, err
	}

	markets := market.NewInfo()
	co2 := emissions.NewCoefficients()

	world := &World{
		Scenario:  s.Name,
		Modeltime: mt,
		Markets:   markets,
	}

	for _, rd := range s.Regions {
		region := &RegionModel{
			Name:    rd.Name,
			GDP:     demographics.NewGDP(rd.GDPPerCapita),
			Demands: make(map[string][]float64, len(rd.Sectors)),
		}

		for _, fp := range rd.FuelPrices {
			for p := 0; p < mt.MaxPeriods(); p++ {
				price := fp.Prices[len(fp.Prices)-1]
				if p < len(fp.Prices) {
					price = fp.Prices[p]
				}
				markets.SetPrice(fp.Fuel, rd.Name, p, price)
			}
		}
		for fuel, coef := range rd.CO2Coefficients {
			co2.Set(rd.Name, fuel, coef)
		}

		for _, sd := range rd.Sectors {
			sector := allocation.NewSector(sd.Name, rd.Name, mt, logger)
			for _, subDef := range sd.Subsectors {
				sector.Add(buildSubsector(subDef, sd.Name, rd.Name, mt, cfg, logger, markets, co2))
			}
			sector.CompleteInit()
			region.Sectors = append(region.Sectors, sector)
			region.Demands[sd.Name] = demandSeries(sd.Demands, mt.MaxPeriods())
		}
		world.Regions = append(world.Regions, region)
	}
	return world, nil
}

func buildSubsector(def Subsector, sectorName, regionName string, mt *modeltime.Modeltime,
	cfg config.SimulationConfig, logger *slog.Logger,
	markets *market.Info, co2 *emissions.Coefficients) *allocation.Subsector {

	sub := allocation.New(def.Name, sectorName, regionName, mt, allocation.Options{
		CalibrationActive:       cfg.CalibrationActive,
		DebugChecking:           cfg.DebugChecking,
		ScaleYear:               cfg.ScaleYear,
		CalibrationBoundaryYear: cfg.CalibrationBoundaryYear,
		BaseShareWeight:         def.BaseShareWeight,
		Logger:                  logger,
		Markets:                 markets,
		Emissions:               co2,
	})

	for p := 0; p < mt.MaxPeriods(); p++ {
		if def.LogitExponent != nil {
			sub.SetLogitExponent(p, *def.LogitExponent)
		}
		if def.FuelPrefElasticity != 0 {
			sub.SetFuelPrefElasticity(p, def.FuelPrefElasticity)
		}
	}
	for p, w := range def.ShareWeights {
		sub.SetShareWeight(p, w)
	}
	for p, limit := range def.CapacityLimits {
		sub.SetCapacityLimit(p, limit)
	}
	for p, target := range def.CalOutputs {
		sub.SetCalOutput(p, target)
	}

	for _, td := range def.Technologies {
		v := buildVintage(td, mt, logger, markets)
		sub.Vintages().Set(td.Name, 0, v)
		sub.Vintages().Fillout(td.Name, 0, mt.PeriodToYear)
	}
	return sub
}

func buildVintage(td Technology, mt *modeltime.Modeltime, logger *slog.Logger, markets *market.Info) technology.Vintage {
	if td.Type == "crop" {
		calLand := -1.0
		if td.CalLandUsed != nil {
			calLand = *td.CalLandUsed
		}
		return technology.NewCropVintage(technology.CropConfig{
			Name:         td.Name,
			Year:         mt.PeriodToYear(0),
			LandType:     td.LandType,
			VariableCost: td.VariableCost,
			Yield:        td.Yield,
			CalLandUsed:  calLand,
			AgProdChange: td.AgProdChange,
			ShareWeight:  td.ShareWeight,
			LogitExp:     td.LogitExponent,
			Markets:      markets,
			Logger:       logger,
		})
	}
	cfg := technology.LogitConfig{
		Name:          td.Name,
		Year:          mt.PeriodToYear(0),
		Fuel:          td.Fuel,
		Efficiency:    td.Efficiency,
		NonEnergyCost: td.NonEnergyCost,
		ShareWeight:   td.ShareWeight,
		LogitExponent: td.LogitExponent,
		FixedOutput:   td.FixedOutput,
		Markets:       markets,
		Logger:        logger,
	}
	if td.CalOutput != nil {
		cfg.CalOutput = *td.CalOutput
		cfg.HasCalOutput = true
	}
	return technology.NewLogitVintage(cfg)
}

// demandSeries pads a demand series to the horizon by holding the last
// value constant.
func demandSeries(demands []float64, periods int) []float64 {
	out := make([]float64, periods)
	for p := 0; p < periods; p++ {
		if p < len(demands) {
			out[p] = demands[p]
		} else {
			out[p] = demands[len(demands)-1]
		}
	}
	return out
}
