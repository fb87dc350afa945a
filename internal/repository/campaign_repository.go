package repository

import (
    "database/sql"
    "fmt"
    "time"

    appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
    "github.com/bulkwave/bulkwave-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    CreateWithSchedule(c *model.Campaign, msgs []model.Message) ([]model.Message, error)
    GetByID(id int) (*model.Campaign, error)
    ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)

    // Lifecycle writes. Every one of them re-checks the expected status
    // inside the UPDATE itself; zero rows affected means someone else
    // transitioned the campaign first (ErrConcurrentModification).
    MarkScheduled(campaignID int, scheduledAt time.Time) error
    MarkRunning(campaignID int, from model.CampaignStatus, startedAt time.Time) error
    MarkPaused(campaignID int, pausedAt time.Time) error
    MarkResumed(campaignID int, startedAt time.Time, estimatedDuration int) error
    MarkCancelled(campaignID int, from model.CampaignStatus) error
    MarkCompleted(campaignID int) error
}

type CampaignRepository struct {
    DB *sql.DB
}

const campaignColumns = `id, name, status, delay_min, delay_max, pause_after_messages, pause_seconds,
        device_ids, multi_device, message_variation_count, estimated_duration, total_recipients,
        scheduled_at, started_at, paused_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
    var c model.Campaign
    err := row.Scan(
        &c.ID, &c.Name, &c.Status, &c.DelayMin, &c.DelayMax, &c.PauseAfterMessages, &c.PauseSeconds,
        &c.DeviceIDs, &c.MultiDevice, &c.MessageVariationCount, &c.EstimatedDuration, &c.TotalRecipients,
        &c.ScheduledAt, &c.StartedAt, &c.PausedAt, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// ====================== Campaign CRUD ======================

// CreateWithSchedule persists the campaign row and its bulk-created
// messages in one transaction. A campaign claiming N recipients can
// never exist without its N message rows.
func (r *CampaignRepository) CreateWithSchedule(c *model.Campaign, msgs []model.Message) ([]model.Message, error) {
    c.CreatedAt = time.Now()
    if c.Status == "" {
        c.Status = model.CampaignStatusDraft
    }

    tx, err := r.DB.Begin()
    if err != nil {
        return nil, err
    }
    defer tx.Rollback()

    query := `
        INSERT INTO campaigns (name, status, delay_min, delay_max, pause_after_messages, pause_seconds,
            device_ids, multi_device, message_variation_count, estimated_duration, total_recipients, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id
    `
    err = tx.QueryRow(query,
        c.Name, c.Status, c.DelayMin, c.DelayMax, c.PauseAfterMessages, c.PauseSeconds,
        c.DeviceIDs, c.MultiDevice, c.MessageVariationCount, c.EstimatedDuration, c.TotalRecipients, c.CreatedAt,
    ).Scan(&c.ID)
    if err != nil {
        return nil, err
    }

    insert := `
        INSERT INTO campaign_messages (campaign_id, order_index, phone, content, status, scheduled_delay_seconds, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
    out := make([]model.Message, len(msgs))
    for i, m := range msgs {
        m.CampaignID = c.ID
        if m.Status == "" {
            m.Status = model.MessageStatusPending
        }
        m.CreatedAt = c.CreatedAt
        if err := tx.QueryRow(insert, c.ID, m.OrderIndex, m.Phone, m.Content, m.Status, m.ScheduledDelaySeconds, m.CreatedAt).Scan(&m.ID); err != nil {
            return nil, err
        }
        out[i] = m
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return out, nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
    query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
    c, err := scanCampaign(r.DB.QueryRow(query, id))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
    campaigns := []*model.Campaign{}
    query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
    args := []interface{}{}
    argPos := 1

    if status != "" {
        query += fmt.Sprintf(" AND status=$%d", argPos)
        args = append(args, status)
        argPos++
    }

    query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
    args = append(args, limit, offset)

    rows, err := r.DB.Query(query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    for rows.Next() {
        c, err := scanCampaign(rows)
        if err != nil {
            return nil, 0, err
        }
        campaigns = append(campaigns, c)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }

    countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
    argsCount := []interface{}{}
    if status != "" {
        countQuery += " AND status=$1"
        argsCount = append(argsCount, status)
    }

    var total int
    if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
        return nil, 0, err
    }

    return campaigns, total, nil
}

// ====================== Lifecycle transitions ======================

// transition runs a conditional status update and maps "no rows" to the
// optimistic-lock failure.
func (r *CampaignRepository) transition(campaignID int, expected model.CampaignStatus, query string, args ...interface{}) error {
    res, err := r.DB.Exec(query, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return appErrors.NewConcurrentModification(campaignID, string(expected))
    }
    return nil
}

func (r *CampaignRepository) MarkScheduled(campaignID int, scheduledAt time.Time) error {
    query := `UPDATE campaigns SET status='scheduled', scheduled_at=$1, updated_at=NOW()
              WHERE id=$2 AND status='draft'`
    return r.transition(campaignID, model.CampaignStatusDraft, query, scheduledAt, campaignID)
}

func (r *CampaignRepository) MarkRunning(campaignID int, from model.CampaignStatus, startedAt time.Time) error {
    query := `UPDATE campaigns SET status='running', started_at=$1, paused_at=NULL, updated_at=NOW()
              WHERE id=$2 AND status=$3`
    return r.transition(campaignID, from, query, startedAt, campaignID, from)
}

func (r *CampaignRepository) MarkPaused(campaignID int, pausedAt time.Time) error {
    query := `UPDATE campaigns SET status='paused', paused_at=$1, updated_at=NOW()
              WHERE id=$2 AND status='running'`
    return r.transition(campaignID, model.CampaignStatusRunning, query, pausedAt, campaignID)
}

// MarkResumed restarts the clock baseline: estimated_duration has been
// recomputed to the remaining window and started_at moves to now.
func (r *CampaignRepository) MarkResumed(campaignID int, startedAt time.Time, estimatedDuration int) error {
    query := `UPDATE campaigns SET status='running', started_at=$1, paused_at=NULL, estimated_duration=$2, updated_at=NOW()
              WHERE id=$3 AND status='paused'`
    return r.transition(campaignID, model.CampaignStatusPaused, query, startedAt, estimatedDuration, campaignID)
}

// MarkCancelled flips the campaign and all its still-pending messages in
// one transaction, so a crash can never leave the two halves disagreeing.
func (r *CampaignRepository) MarkCancelled(campaignID int, from model.CampaignStatus) error {
    tx, err := r.DB.Begin()
    if err != nil {
        return err
    }
    defer tx.Rollback()

    res, err := tx.Exec(`UPDATE campaigns SET status='cancelled', updated_at=NOW() WHERE id=$1 AND status=$2`,
        campaignID, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return appErrors.NewConcurrentModification(campaignID, string(from))
    }

    _, err = tx.Exec(`UPDATE campaign_messages SET status='cancelled' WHERE campaign_id=$1 AND status='pending'`,
        campaignID)
    if err != nil {
        return err
    }

    return tx.Commit()
}

func (r *CampaignRepository) MarkCompleted(campaignID int) error {
    query := `UPDATE campaigns SET status='completed', updated_at=NOW() WHERE id=$1 AND status='running'`
    return r.transition(campaignID, model.CampaignStatusRunning, query, campaignID)
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
