// internal/scheduler/countdown.go
package scheduler

import "time"

// Countdown derives remaining seconds from the two persisted timing
// fields. It is recomputed on every tick, never cached. The second
// return is false when the campaign has no clock baseline yet
// (started_at is null), in which case no countdown is displayed.
func Countdown(estimatedDuration int, startedAt *time.Time, now time.Time) (int, bool) {
    if startedAt == nil {
        return 0, false
    }
    elapsed := int(now.Sub(*startedAt).Seconds())
    if elapsed < 0 {
        // A baseline in the future (clock skew) counts as no time
        // served, not as extra time remaining.
        elapsed = 0
    }
    remaining := estimatedDuration - elapsed
    if remaining < 0 {
        remaining = 0
    }
    return remaining, true
}
