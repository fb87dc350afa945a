// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

// ErrEmptyRecipientSet rejects any operation that would leave a campaign
// with zero messages.
type ErrEmptyRecipientSet struct{}

func (e *ErrEmptyRecipientSet) Error() string {
    return "campaign has no recipients"
}

func NewEmptyRecipientSet() error {
    return &ErrEmptyRecipientSet{}
}

// ErrInvalidTimingConfig carries the offending bounds so the caller can
// surface them.
type ErrInvalidTimingConfig struct {
    DelayMin int
    DelayMax int
}

func (e *ErrInvalidTimingConfig) Error() string {
    return fmt.Sprintf("invalid timing config: delay_min %d, delay_max %d", e.DelayMin, e.DelayMax)
}

func NewInvalidTimingConfig(min, max int) error {
    return &ErrInvalidTimingConfig{DelayMin: min, DelayMax: max}
}

// ErrInvalidTransition is returned when a lifecycle action does not match
// the campaign's current status. Nothing is mutated in that case.
type ErrInvalidTransition struct {
    From      string
    Attempted string
}

func (e *ErrInvalidTransition) Error() string {
    return fmt.Sprintf("cannot %s a campaign in status %q", e.Attempted, e.From)
}

func NewInvalidTransition(from, attempted string) error {
    return &ErrInvalidTransition{From: from, Attempted: attempted}
}

// ErrConcurrentModification means the optimistic status predicate matched
// zero rows: someone else moved the campaign between our read and write.
type ErrConcurrentModification struct {
    CampaignID int
    Expected   string
}

func (e *ErrConcurrentModification) Error() string {
    return fmt.Sprintf("campaign %d is no longer in status %q", e.CampaignID, e.Expected)
}

func NewConcurrentModification(id int, expected string) error {
    return &ErrConcurrentModification{CampaignID: id, Expected: expected}
}
