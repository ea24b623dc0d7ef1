package scenario

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"enershare/internal/allocation"
	"enershare/internal/config"
	"enershare/internal/infrastructure"
	"enershare/internal/results"
)

// Result is one completed scenario run.
type Result struct {
	RunID    string
	Scenario string
	Records  []results.Record
}

// Run simulates every region of the world across the full horizon.
// Regions are independent given the pre-registered market prices, so they
// run concurrently; within a region periods run strictly in order because
// share-weight interpolation reads the previous period's calibration
// state.
func Run(ctx context.Context, world *World, cfg config.SimulationConfig, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(ctx, runID)
	logger = logger.With("run_id", runID, "scenario", world.Scenario)

	logger.Info("starting scenario run",
		"regions", len(world.Regions), "periods", world.Modeltime.MaxPeriods())

	regionRecords := make([][]results.Record, len(world.Regions))
	g, ctx := errgroup.WithContext(ctx)
	for i, region := range world.Regions {
		g.Go(func() error {
			records, err := runRegion(ctx, world, region, cfg, runID, logger)
			if err != nil {
				return err
			}
			regionRecords[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, Scenario: world.Scenario}
	for _, records := range regionRecords {
		result.Records = append(result.Records, records...)
	}
	logger.Info("scenario run complete", "records", len(result.Records))
	return result, nil
}

func runRegion(ctx context.Context, world *World, region *RegionModel,
	cfg config.SimulationConfig, runID string, logger *slog.Logger) ([]results.Record, error) {

	logger = logger.With("region", region.Name)
	var records []results.Record

	for p := 0; p < world.Modeltime.MaxPeriods(); p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, sector := range region.Sectors {
			demand := region.Demands[sector.Name()][p]

			sector.InitCalc(p)
			sector.CalcShares(region.GDP, p)
			sector.AdjustForFixedSupply(demand, p)

			if cfg.CalibrationActive && sector.CalibrationStatus(p) {
				sector.Calibrate(demand, p)
				sector.CalcShares(region.GDP, p)
				sector.AdjustForFixedSupply(demand, p)
				logger.Debug("calibrated sector",
					"sector", sector.Name(), "period", p, "demand", demand)
			}

			sector.Production(demand, region.GDP, p)
			records = append(records, collect(runID, region.Name, sector, world, p)...)
		}
	}
	return records, nil
}

func collect(runID, regionName string, sector *allocation.Sector, world *World, period int) []results.Record {
	records := make([]results.Record, 0, len(sector.Subsectors()))
	for _, sub := range sector.Subsectors() {
		records = append(records, results.Record{
			RunID:       runID,
			Region:      regionName,
			Sector:      sector.Name(),
			Subsector:   sub.Name(),
			Period:      period,
			Year:        world.Modeltime.PeriodToYear(period),
			Share:       sub.Share(period),
			ShareWeight: sub.ShareWeight(period),
			Output:      sub.Output(period),
			Input:       sub.Input(period),
			Price:       sub.Price(period),
			FuelPrice:   sub.FuelPrice(period),
			CO2Factor:   sub.CO2EmFactor(period),
		})
	}
	return records
}
