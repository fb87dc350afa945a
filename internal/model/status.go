// internal/model/status.go
package model

// CampaignStatus represents the lifecycle state of a campaign
type CampaignStatus string

const (
    CampaignStatusDraft     CampaignStatus = "draft"
    CampaignStatusScheduled CampaignStatus = "scheduled"
    CampaignStatusRunning   CampaignStatus = "running"
    CampaignStatusPaused    CampaignStatus = "paused"
    CampaignStatusCompleted CampaignStatus = "completed"
    CampaignStatusFailed    CampaignStatus = "failed"
    CampaignStatusCancelled CampaignStatus = "cancelled"
)

// MessageStatus represents the delivery state of a single message
type MessageStatus string

const (
    MessageStatusPending   MessageStatus = "pending"
    MessageStatusSent      MessageStatus = "sent"
    MessageStatusDelivered MessageStatus = "delivered"
    MessageStatusRead      MessageStatus = "read"
    MessageStatusReplied   MessageStatus = "replied"
    MessageStatusFailed    MessageStatus = "failed"
    MessageStatusCancelled MessageStatus = "cancelled"
)

// campaignTransitions is the full transition table. Terminal states
// (completed, failed, cancelled) have no outgoing edges.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
    CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusRunning, CampaignStatusCancelled},
    CampaignStatusScheduled: {CampaignStatusRunning, CampaignStatusCancelled},
    CampaignStatusRunning:   {CampaignStatusPaused, CampaignStatusCompleted, CampaignStatusFailed, CampaignStatusCancelled},
    CampaignStatusPaused:    {CampaignStatusRunning, CampaignStatusCancelled},
}

// CanTransition reports whether a campaign in status from may move to
// status to.
func CanTransition(from, to CampaignStatus) bool {
    for _, allowed := range campaignTransitions[from] {
        if allowed == to {
            return true
        }
    }
    return false
}

// IsTerminal reports whether no further lifecycle actions apply.
func (s CampaignStatus) IsTerminal() bool {
    return len(campaignTransitions[s]) == 0
}
