// internal/scheduler/assign.go
package scheduler

import (
    appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
)

// Recipient is one entry in the ordered send list, content already
// rendered upstream.
type Recipient struct {
    Phone   string
    Content string
}

// ScheduledMessage carries a recipient plus its assigned position and
// cumulative offset (seconds from campaign start).
type ScheduledMessage struct {
    OrderIndex   int
    Phone        string
    Content      string
    DelaySeconds int
}

// Every bulkPauseEvery messages the gateway needs a cooldown; the pause
// grows with each occurrence up to the last table entry, which repeats
// for occurrence 4 and beyond.
const bulkPauseEvery = 30

var bulkPauseTable = [...]int{1800, 3600, 5400}

func bulkPause(occurrence int) int {
    if occurrence > len(bulkPauseTable) {
        occurrence = len(bulkPauseTable)
    }
    return bulkPauseTable[occurrence-1]
}

// pauseDelta reports the cooldown owed at 1-indexed position i, if any.
// A cooldown materializes as the spacing of the message that follows a
// boundary, which is also why a boundary at the end of the sequence
// never produces a trailing pause. When a custom boundary coincides
// with a bulk one, the bulk pause wins.
func pauseDelta(i int, bulkSeen *int, cfg TimingConfig) (int, bool) {
    if i <= 1 {
        return 0, false
    }
    if (i-1)%bulkPauseEvery == 0 {
        *bulkSeen++
        return bulkPause(*bulkSeen), true
    }
    if cfg.PauseAfterMessages > 0 && (i-1)%cfg.PauseAfterMessages == 0 {
        return cfg.PauseSeconds, true
    }
    return 0, false
}

// Assign walks the recipients in input order, fixing order_index, and
// gives every message a cumulative offset: a random spacing in
// [DelayMin, DelayMax] or, directly after a pause boundary, the
// cooldown itself. The returned total always equals the last offset.
func Assign(recipients []Recipient, cfg TimingConfig) ([]ScheduledMessage, int, error) {
    if err := cfg.Validate(); err != nil {
        return nil, 0, err
    }
    if len(recipients) == 0 {
        return nil, 0, appErrors.NewEmptyRecipientSet()
    }

    msgs := make([]ScheduledMessage, len(recipients))
    total := 0
    bulkSeen := 0
    for i, r := range recipients {
        delta, isPause := pauseDelta(i+1, &bulkSeen, cfg)
        if !isPause {
            delta = drawDelay(cfg)
        }
        total += delta
        msgs[i] = ScheduledMessage{
            OrderIndex:   i + 1,
            Phone:        r.Phone,
            Content:      r.Content,
            DelaySeconds: total,
        }
    }
    return msgs, total, nil
}
