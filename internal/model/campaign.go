// internal/model/campaign.go
package model

import (
    "time"

    "github.com/lib/pq"
)

type Campaign struct {
    ID                    int            `db:"id" json:"id"`
    Name                  string         `db:"name" json:"name"`
    Status                CampaignStatus `db:"status" json:"status"`
    DelayMin              int            `db:"delay_min" json:"delay_min"`
    DelayMax              int            `db:"delay_max" json:"delay_max"`
    PauseAfterMessages    int            `db:"pause_after_messages" json:"pause_after_messages"`
    PauseSeconds          int            `db:"pause_seconds" json:"pause_seconds"`
    DeviceIDs             pq.StringArray `db:"device_ids" json:"device_ids"`
    MultiDevice           bool           `db:"multi_device" json:"multi_device"`
    MessageVariationCount int            `db:"message_variation_count" json:"message_variation_count"`
    EstimatedDuration     int            `db:"estimated_duration" json:"estimated_duration"`
    TotalRecipients       int            `db:"total_recipients" json:"total_recipients"`
    ScheduledAt           *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
    StartedAt             *time.Time     `db:"started_at" json:"started_at,omitempty"`
    PausedAt              *time.Time     `db:"paused_at" json:"paused_at,omitempty"`
    CreatedAt             time.Time      `db:"created_at" json:"created_at"`
    UpdatedAt             *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// DeviceCount never reports zero: a campaign sends from at least one
// device even when device_ids was left empty.
func (c *Campaign) DeviceCount() int {
    if !c.MultiDevice || len(c.DeviceIDs) == 0 {
        return 1
    }
    return len(c.DeviceIDs)
}
