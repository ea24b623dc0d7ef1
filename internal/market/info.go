// Package market provides the marketplace side-channel the share engine
// reads prices from and records per-good scalar facts into.
//
// Two kinds of state live here:
//
//   - Prices: the per-(good, region, period) price a technology pays for
//     its input fuel. In the full system these come from the outer
//     equilibrium solver; here they are set by the scenario layer.
//   - Info values: named scalars keyed by (good, region, period), such as
//     accumulated calibrated demand ("calDemand") or calibrated variable
//     cost hints passed forward between periods by profit-based
//     technologies.
//
// The read/write contract is deliberately explicit: every value is
// addressed by its full composite key plus a name, and accumulation is a
// distinct operation from replacement. The store is safe for concurrent
// use so independent regions can be simulated in parallel; keys always
// include the region, so concurrent regions never contend on a value.
package market

import "sync"

// InfoKeyCalDemand names the accumulated calibrated demand for an input
// good, built up as technologies tabulate their implied fixed inputs.
const InfoKeyCalDemand = "calDemand"

type key struct {
	good   string
	region string
	period int
}

// Info is the keyed store of market prices and named scalar values.
type Info struct {
	mu     sync.RWMutex
	prices map[key]float64
	values map[key]map[string]float64
}

// NewInfo returns an empty market store.
func NewInfo() *Info {
	return &Info{
		prices: make(map[key]float64),
		values: make(map[key]map[string]float64),
	}
}

// SetPrice records the price of a good in a region for a period.
func (i *Info) SetPrice(good, region string, period int, price float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.prices[key{good, region, period}] = price
}

// Price returns the price of a good in a region for a period, or 0 when no
// price has been set. A zero price is a meaningful degenerate input to the
// share engine, not an error.
func (i *Info) Price(good, region string, period int) float64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.prices[key{good, region, period}]
}

// SetValue records a named scalar for (good, region, period), replacing any
// previous value.
func (i *Info) SetValue(good, region string, period int, name string, v float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	k := key{good, region, period}
	m, ok := i.values[k]
	if !ok {
		m = make(map[string]float64)
		i.values[k] = m
	}
	m[name] = v
}

// AddValue accumulates into a named scalar for (good, region, period),
// treating a missing value as 0.
func (i *Info) AddValue(good, region string, period int, name string, delta float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	k := key{good, region, period}
	m, ok := i.values[k]
	if !ok {
		m = make(map[string]float64)
		i.values[k] = m
	}
	m[name] += delta
}

// Value returns a named scalar and whether it has been set.
func (i *Info) Value(good, region string, period int, name string) (float64, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.values[key{good, region, period}][name]
	return v, ok
}
