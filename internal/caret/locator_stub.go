//go:build !windows

package caret

import (
	"time"

	"github.com/rs/zerolog"
)

// NewSystemLocator on non-Windows platforms has no probes to run; every
// call reports "no caret". The host APIs the chain depends on are
// Windows-only.
func NewSystemLocator(timeout time.Duration, log zerolog.Logger) *Locator {
	log.Warn().Msg("Caret detection is Windows-only on this build")
	return NewLocator(NewChain(log), timeout, log, nil)
}
