// internal/model/message.go
package model

import "time"

// Message is one recipient entry in a campaign's send sequence. Content
// arrives already rendered; the scheduler only owns order_index and
// scheduled_delay_seconds. sent_at/failed_at are written by the dispatch
// worker and read back here for resume math.
type Message struct {
    ID                    int           `db:"id" json:"id"`
    CampaignID            int           `db:"campaign_id" json:"campaign_id"`
    OrderIndex            int           `db:"order_index" json:"order_index"`
    Phone                 string        `db:"phone" json:"phone"`
    Content               string        `db:"content" json:"content"`
    Status                MessageStatus `db:"status" json:"status"`
    ScheduledDelaySeconds int           `db:"scheduled_delay_seconds" json:"scheduled_delay_seconds"`
    SentAt                *time.Time    `db:"sent_at" json:"sent_at,omitempty"`
    FailedAt              *time.Time    `db:"failed_at" json:"failed_at,omitempty"`
    CreatedAt             time.Time     `db:"created_at" json:"created_at"`
}
