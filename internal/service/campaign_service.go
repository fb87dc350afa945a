// internal/service/campaign_service.go
package service

import (
    "log"
    "time"

    appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
    "github.com/bulkwave/bulkwave-backend/internal/model"
    "github.com/bulkwave/bulkwave-backend/internal/queue"
    "github.com/bulkwave/bulkwave-backend/internal/repository"
    "github.com/bulkwave/bulkwave-backend/internal/scheduler"
)

type CampaignService struct {
    CampaignRepo repository.CampaignRepositoryInterface
    MessageRepo  repository.MessageRepositoryInterface
    Dispatcher   queue.Dispatcher

    // Now is swappable in tests; defaults to time.Now.
    Now func() time.Time
}

func (s *CampaignService) now() time.Time {
    if s.Now != nil {
        return s.Now()
    }
    return time.Now()
}

// RecipientInput is one entry of a (re)submitted recipient list. ID
// refers to an existing message so its already-drawn spacing survives
// the edit; 0 marks a brand-new recipient.
type RecipientInput struct {
    ID      int    `json:"id,omitempty"`
    Phone   string `json:"phone"`
    Content string `json:"content"`
}

type CreateCampaignInput struct {
    Name                  string
    DelayMin              int
    DelayMax              int
    PauseAfterMessages    int
    PauseSeconds          int
    DeviceIDs             []string
    MultiDevice           bool
    MessageVariationCount int
    Recipients            []RecipientInput
}

type CampaignDetails struct {
    model.Campaign
    Stats            map[string]int     `json:"stats"`
    Estimate         scheduler.Estimate `json:"estimate"`
    RemainingSeconds *int               `json:"remaining_seconds,omitempty"`
}

// timingConfig maps the persisted fields onto the engine config. The
// custom cadence only counts when both halves are set.
func timingConfig(c *model.Campaign) scheduler.TimingConfig {
    cfg := scheduler.TimingConfig{DelayMin: c.DelayMin, DelayMax: c.DelayMax}
    if c.PauseAfterMessages > 0 && c.PauseSeconds > 0 {
        cfg.PauseAfterMessages = c.PauseAfterMessages
        cfg.PauseSeconds = c.PauseSeconds
    }
    return cfg
}

func toModelMessages(scheduled []scheduler.ScheduledMessage) []model.Message {
    msgs := make([]model.Message, len(scheduled))
    for i, m := range scheduled {
        msgs[i] = model.Message{
            OrderIndex:            m.OrderIndex,
            Phone:                 m.Phone,
            Content:               m.Content,
            Status:                model.MessageStatusPending,
            ScheduledDelaySeconds: m.DelaySeconds,
        }
    }
    return msgs
}

// ====================== Creation & editing ======================

// CreateCampaign creates a draft and bulk-creates its messages with
// offsets assigned. A zero-recipient campaign is never created.
func (s *CampaignService) CreateCampaign(input CreateCampaignInput) (*model.Campaign, []model.Message, error) {
    if input.MessageVariationCount < 1 {
        input.MessageVariationCount = 1
    }

    c := &model.Campaign{
        Name:                  input.Name,
        Status:                model.CampaignStatusDraft,
        DelayMin:              input.DelayMin,
        DelayMax:              input.DelayMax,
        PauseAfterMessages:    input.PauseAfterMessages,
        PauseSeconds:          input.PauseSeconds,
        DeviceIDs:             input.DeviceIDs,
        MultiDevice:           input.MultiDevice,
        MessageVariationCount: input.MessageVariationCount,
    }

    recipients := make([]scheduler.Recipient, len(input.Recipients))
    for i, r := range input.Recipients {
        recipients[i] = scheduler.Recipient{Phone: r.Phone, Content: r.Content}
    }

    scheduled, total, err := scheduler.Assign(recipients, timingConfig(c))
    if err != nil {
        return nil, nil, err
    }

    c.EstimatedDuration = total
    c.TotalRecipients = len(scheduled)

    msgs, err := s.CampaignRepo.CreateWithSchedule(c, toModelMessages(scheduled))
    if err != nil {
        return nil, nil, err
    }

    return c, msgs, nil
}

// ReplaceRecipients is the edit API: a full replacement list for a draft
// campaign. Entries carrying an existing message ID keep the spacing
// that message had already been assigned; new entries draw fresh. The
// recomputed offsets, estimated_duration and total_recipients are
// persisted as one atomic write.
func (s *CampaignService) ReplaceRecipients(campaignID int, inputs []RecipientInput) ([]model.Message, int, error) {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, 0, err
    }
    if c.Status != model.CampaignStatusDraft {
        return nil, 0, appErrors.NewInvalidTransition(string(c.Status), "edit_recipients")
    }
    if len(inputs) == 0 {
        return nil, 0, appErrors.NewEmptyRecipientSet()
    }

    cfg := timingConfig(c)
    if err := cfg.Validate(); err != nil {
        return nil, 0, err
    }

    existing, err := s.MessageRepo.ListByCampaign(campaignID)
    if err != nil {
        return nil, 0, err
    }
    oldOffsets := make(map[int]int, len(existing))
    for _, m := range existing {
        oldOffsets[m.ID] = m.ScheduledDelaySeconds
    }

    seq := make([]scheduler.ScheduledMessage, len(inputs))
    for i, in := range inputs {
        seq[i] = scheduler.ScheduledMessage{
            Phone:        in.Phone,
            Content:      in.Content,
            DelaySeconds: oldOffsets[in.ID], // 0 for new recipients
        }
    }

    recomputed, total := scheduler.Recompute(seq, cfg)
    msgs, err := s.MessageRepo.ReplaceSchedule(campaignID, model.CampaignStatusDraft, toModelMessages(recomputed), total, len(recomputed))
    if err != nil {
        return nil, 0, err
    }
    return msgs, total, nil
}

// ====================== Lifecycle actions ======================

// Reject-before-mutate: each action validates against the freshly read
// status and returns ErrInvalidTransition without side effects when it
// doesn't match. The repository write then re-checks the same status so
// two racing actions cannot both win.

func (s *CampaignService) Schedule(campaignID int, at time.Time) error {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }
    if c.Status != model.CampaignStatusDraft {
        return appErrors.NewInvalidTransition(string(c.Status), "schedule")
    }
    return s.CampaignRepo.MarkScheduled(campaignID, at)
}

func (s *CampaignService) Launch(campaignID int) error {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }
    if c.Status != model.CampaignStatusDraft && c.Status != model.CampaignStatusScheduled {
        return appErrors.NewInvalidTransition(string(c.Status), "launch")
    }

    if err := s.CampaignRepo.MarkRunning(campaignID, c.Status, s.now()); err != nil {
        return err
    }

    if err := s.Dispatcher.Signal(campaignID, queue.ReasonLaunch); err != nil {
        // Fire-and-forget boundary: the campaign is running either way,
        // callers own retry policy for the broker.
        log.Println("⚠️ failed to signal dispatch worker for launch:", err)
    }
    return nil
}

func (s *CampaignService) Pause(campaignID int) error {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }
    if c.Status != model.CampaignStatusRunning {
        return appErrors.NewInvalidTransition(string(c.Status), "pause")
    }
    return s.CampaignRepo.MarkPaused(campaignID, s.now())
}

// Resume re-derives the remaining window from what the dispatch worker
// already got through: the furthest pending offset minus the furthest
// sent-or-failed offset, clamped at zero. The clock baseline restarts.
func (s *CampaignService) Resume(campaignID int) error {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }
    if c.Status != model.CampaignStatusPaused {
        return appErrors.NewInvalidTransition(string(c.Status), "resume")
    }

    lastPending, err := s.MessageRepo.LastPendingDelay(campaignID)
    if err != nil {
        return err
    }
    lastDone, err := s.MessageRepo.LastCompletedDelay(campaignID)
    if err != nil {
        return err
    }

    remaining := lastPending - lastDone
    if remaining < 0 {
        remaining = 0
    }

    if err := s.CampaignRepo.MarkResumed(campaignID, s.now(), remaining); err != nil {
        return err
    }

    if err := s.Dispatcher.Signal(campaignID, queue.ReasonResume); err != nil {
        log.Println("⚠️ failed to signal dispatch worker for resume:", err)
    }
    return nil
}

func (s *CampaignService) Cancel(campaignID int) error {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return err
    }
    if !model.CanTransition(c.Status, model.CampaignStatusCancelled) {
        return appErrors.NewInvalidTransition(string(c.Status), "cancel")
    }
    return s.CampaignRepo.MarkCancelled(campaignID, c.Status)
}

// ====================== Read side ======================

func (s *CampaignService) GetCampaignDetails(campaignID int) (*CampaignDetails, error) {
    c, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }

    stats, err := s.MessageRepo.GetStats(campaignID)
    if err != nil {
        return nil, err
    }

    msgs, err := s.MessageRepo.ListByCampaign(campaignID)
    if err != nil {
        return nil, err
    }
    schedule := make([]scheduler.ScheduledMessage, len(msgs))
    for i, m := range msgs {
        schedule[i] = scheduler.ScheduledMessage{
            OrderIndex:   m.OrderIndex,
            DelaySeconds: m.ScheduledDelaySeconds,
        }
    }

    details := &CampaignDetails{
        Campaign: *c,
        Stats:    stats,
        Estimate: scheduler.EstimateCapacity(len(msgs), c.MessageVariationCount, c.DeviceCount(), schedule, timingConfig(c)),
    }

    if remaining, ok := scheduler.Countdown(c.EstimatedDuration, c.StartedAt, s.now()); ok {
        details.RemainingSeconds = &remaining
    }
    return details, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }
    if pageSize > 100 {
        pageSize = 100
    }
    offset := (page - 1) * pageSize

    ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
    if err != nil {
        return nil, nil, err
    }

    campaigns := make([]model.Campaign, len(ptrs))
    for i, c := range ptrs {
        campaigns[i] = *c
    }

    totalPages := (total + pageSize - 1) / pageSize
    pagination := map[string]int{
        "page":        page,
        "page_size":   pageSize,
        "total_count": total,
        "total_pages": totalPages,
    }

    return campaigns, pagination, nil
}
