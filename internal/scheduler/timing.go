// internal/scheduler/timing.go
package scheduler

import (
    "math/rand"

    appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
)

// TimingConfig is everything the engines need to space a campaign out:
// the random per-message delay bounds plus the optional user-configured
// cooldown cadence (PauseAfterMessages = 0 disables it).
type TimingConfig struct {
    DelayMin           int
    DelayMax           int
    PauseAfterMessages int
    PauseSeconds       int
}

func (cfg TimingConfig) Validate() error {
    if cfg.DelayMin < 0 || cfg.DelayMax < 0 || cfg.DelayMin > cfg.DelayMax {
        return appErrors.NewInvalidTimingConfig(cfg.DelayMin, cfg.DelayMax)
    }
    return nil
}

// drawDelay picks a random spacing in [DelayMin, DelayMax], inclusive.
func drawDelay(cfg TimingConfig) int {
    if cfg.DelayMax <= cfg.DelayMin {
        return cfg.DelayMin
    }
    return cfg.DelayMin + rand.Intn(cfg.DelayMax-cfg.DelayMin+1)
}
