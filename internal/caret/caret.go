// Package caret finds the screen position of the text-insertion point in
// whatever foreign window currently holds input focus.
//
// No single native API covers legacy native controls, modern retained-mode
// frameworks, and web-rendering engines, so detection is a chain of probes
// ordered from cheapest and most precise to most approximate. The first
// probe that finds a position wins; exhausting the chain is the defined
// "no caret" result, never an error.
package caret

import (
	"github.com/rs/zerolog"
)

// Position is a screen-space caret location. CaretHeight is 0 when unknown.
// Positions are ephemeral: recomputed on every poll, never cached beyond
// flicker comparison.
type Position struct {
	X           int
	Y           int
	CaretHeight int
}

// Probe is a single caret-detection method.
type Probe interface {
	Name() string
	Locate() (Position, bool)
}

// Chain tries each probe in order and returns the first hit.
type Chain struct {
	probes []Probe
	log    zerolog.Logger
}

func NewChain(log zerolog.Logger, probes ...Probe) *Chain {
	return &Chain{probes: probes, log: log}
}

// Locate runs the probe chain. A probe that panics counts as a miss; the
// next probe is consulted.
func (c *Chain) Locate() (Position, bool) {
	for _, p := range c.probes {
		if pos, ok := c.run(p); ok {
			return pos, true
		}
	}
	return Position{}, false
}

func (c *Chain) run(p Probe) (pos Position, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Debug().Str("probe", p.Name()).Interface("panic", r).Msg("Caret probe panicked")
			ok = false
		}
	}()
	return p.Locate()
}
