// internal/scheduler/estimate.go
package scheduler

import (
    "fmt"
    "strings"
)

// Gateway accounts tolerate ~90 sends per device per day; each extra
// message variation buys another 10.
const (
    baseDailyCapPerDevice = 90
    variationCapBonus     = 10
)

type Estimate struct {
    DaysNeeded    int    `json:"days_needed"`
    MessagesToday int    `json:"messages_today"`
    Duration      string `json:"duration"`
}

// EstimateCapacity projects how long a campaign takes under the daily
// per-device cap. When a precomputed schedule exists, today's finish
// time is read straight off it (the randomness is already realized);
// otherwise it is approximated from the average delay plus the pauses
// of fully completed 30-message bulks.
func EstimateCapacity(totalMessages, variationCount, deviceCount int, schedule []ScheduledMessage, fallback TimingConfig) Estimate {
    perDeviceCap := baseDailyCapPerDevice
    if variationCount > 1 {
        perDeviceCap += variationCapBonus * (variationCount - 1)
    }
    if deviceCount < 1 {
        deviceCount = 1
    }
    dailyCap := perDeviceCap * deviceCount

    if totalMessages <= 0 {
        return Estimate{Duration: "less than a minute"}
    }

    days := (totalMessages + dailyCap - 1) / dailyCap
    today := totalMessages
    if today > dailyCap {
        today = dailyCap
    }

    var seconds int
    if len(schedule) >= today {
        seconds = schedule[today-1].DelaySeconds
    } else {
        avgDelay := (fallback.DelayMin + fallback.DelayMax) / 2
        seconds = today * avgDelay
        // Completed bulks only: a boundary at or past the last counted
        // message contributes no pause.
        for occ := 1; occ*bulkPauseEvery < today; occ++ {
            seconds += bulkPause(occ)
        }
    }

    est := Estimate{DaysNeeded: days, MessagesToday: today}
    if days > 1 {
        est.Duration = fmt.Sprintf("~%d days (%d today, remainder tomorrow)", days, today)
    } else {
        est.Duration = FormatDuration(seconds)
    }
    return est
}

// FormatDuration renders seconds as "2h 5m 30s", dropping zero
// components, with a floor of "less than a minute".
func FormatDuration(seconds int) string {
    if seconds < 60 {
        return "less than a minute"
    }
    h := seconds / 3600
    m := (seconds % 3600) / 60
    s := seconds % 60

    parts := []string{}
    if h > 0 {
        parts = append(parts, fmt.Sprintf("%dh", h))
    }
    if m > 0 {
        parts = append(parts, fmt.Sprintf("%dm", m))
    }
    if s > 0 {
        parts = append(parts, fmt.Sprintf("%ds", s))
    }
    return strings.Join(parts, " ")
}
