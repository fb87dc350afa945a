// internal/scheduler/recompute.go
package scheduler

// priorDelta recovers the spacing a message was originally assigned by
// differencing old cumulative offsets against the preceding entry in
// the new order. The first entry's prior offset is zero. A new message
// (no old offset) or a deleted-neighbor inversion yields <= 0, which
// the caller treats as "draw fresh".
func priorDelta(i int, old []ScheduledMessage) int {
    if i == 0 {
        return old[0].DelaySeconds
    }
    return old[i].DelaySeconds - old[i-1].DelaySeconds
}

// Recompute re-derives the full offset sequence after recipients were
// inserted or removed from a draft. Previously-drawn spacings are kept
// as personal deltas; only messages with no usable prior offset draw
// fresh randomness. Pause boundaries are re-derived from the current
// sequence length, so a message that used to sit after a boundary can
// fall back to its personal delta and vice versa.
func Recompute(existing []ScheduledMessage, cfg TimingConfig) ([]ScheduledMessage, int) {
    out := make([]ScheduledMessage, len(existing))
    total := 0
    bulkSeen := 0
    for i := range existing {
        delta, isPause := pauseDelta(i+1, &bulkSeen, cfg)
        if !isPause {
            delta = priorDelta(i, existing)
            if delta <= 0 {
                delta = drawDelay(cfg)
            }
        }
        total += delta
        out[i] = existing[i]
        out[i].OrderIndex = i + 1
        out[i].DelaySeconds = total
    }
    return out, total
}
