package allocation

import (
	"log/slog"
	"testing"

	"enershare/internal/market"
	"enershare/internal/modeltime"
	"enershare/internal/technology"
)

// newTestSubsector builds a subsector whose technology rows are filled
// out across the whole horizon from a period-0 definition.
func newTestSubsector(t *testing.T, name string, mt *modeltime.Modeltime, opts Options, cfgs ...technology.LogitConfig) *Subsector {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Markets == nil {
		opts.Markets = market.NewInfo()
	}
	sub := New(name, "electricity", "usa", mt, opts)
	for _, cfg := range cfgs {
		cfg.Markets = opts.Markets
		cfg.Logger = opts.Logger
		v := technology.NewLogitVintage(cfg)
		v.SetYear(mt.PeriodToYear(0))
		sub.Vintages().Set(cfg.Name, 0, v)
		sub.Vintages().Fillout(cfg.Name, 0, mt.PeriodToYear)
	}
	sub.CompleteInit()
	return sub
}
