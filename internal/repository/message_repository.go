package repository

import (
	"database/sql"
	"time"

	appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
	"github.com/bulkwave/bulkwave-backend/internal/model"
)

type MessageRepositoryInterface interface {
	ListByCampaign(campaignID int) ([]model.Message, error)
	ReplaceSchedule(campaignID int, expected model.CampaignStatus, msgs []model.Message, estimatedDuration, totalRecipients int) ([]model.Message, error)
	LastPendingDelay(campaignID int) (int, error)
	LastCompletedDelay(campaignID int) (int, error)
	GetStats(campaignID int) (map[string]int, error)
}

type MessageRepository struct {
	DB *sql.DB
}

const messageColumns = `id, campaign_id, order_index, phone, content, status, scheduled_delay_seconds, sent_at, failed_at, created_at`

// ListByCampaign returns the full send sequence in order_index order.
func (r *MessageRepository) ListByCampaign(campaignID int) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM campaign_messages WHERE campaign_id=$1 ORDER BY order_index ASC`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.ID, &m.CampaignID, &m.OrderIndex, &m.Phone, &m.Content, &m.Status,
			&m.ScheduledDelaySeconds, &m.SentAt, &m.FailedAt, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ReplaceSchedule rewrites the campaign's entire message set together
// with its estimated_duration and total_recipients in one transaction.
// The offset column is never patched row by row; a recompute either
// lands completely or not at all. The campaign update re-checks the
// expected status before anything is deleted, so a launch racing an
// edit aborts the whole transaction instead of erasing a running
// campaign's rows.
func (r *MessageRepository) ReplaceSchedule(campaignID int, expected model.CampaignStatus, msgs []model.Message, estimatedDuration, totalRecipients int) ([]model.Message, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE campaigns SET estimated_duration=$1, total_recipients=$2, updated_at=NOW()
              WHERE id=$3 AND status=$4`,
		estimatedDuration, totalRecipients, campaignID, expected)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, appErrors.NewConcurrentModification(campaignID, string(expected))
	}

	if _, err := tx.Exec(`DELETE FROM campaign_messages WHERE campaign_id=$1`, campaignID); err != nil {
		return nil, err
	}

	now := time.Now()
	insert := `
        INSERT INTO campaign_messages (campaign_id, order_index, phone, content, status, scheduled_delay_seconds, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	out := make([]model.Message, len(msgs))
	for i, m := range msgs {
		m.CampaignID = campaignID
		if m.Status == "" {
			m.Status = model.MessageStatusPending
		}
		m.CreatedAt = now
		if err := tx.QueryRow(insert, campaignID, m.OrderIndex, m.Phone, m.Content, m.Status, m.ScheduledDelaySeconds, now).Scan(&m.ID); err != nil {
			return nil, err
		}
		out[i] = m
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// LastPendingDelay is the offset of the furthest message still waiting
// to be sent, 0 when nothing is pending.
func (r *MessageRepository) LastPendingDelay(campaignID int) (int, error) {
	return r.lastDelay(campaignID, `status='pending'`)
}

// LastCompletedDelay is the offset of the furthest message the dispatch
// worker has already dealt with (sent, failed, or any later delivery
// state), 0 when none have gone out yet.
func (r *MessageRepository) LastCompletedDelay(campaignID int) (int, error) {
	return r.lastDelay(campaignID, `status NOT IN ('pending', 'cancelled')`)
}

func (r *MessageRepository) lastDelay(campaignID int, predicate string) (int, error) {
	query := `SELECT scheduled_delay_seconds FROM campaign_messages
              WHERE campaign_id=$1 AND ` + predicate + `
              ORDER BY order_index DESC LIMIT 1`
	var delay int
	err := r.DB.QueryRow(query, campaignID).Scan(&delay)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return delay, nil
}

func (r *MessageRepository) GetStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM campaign_messages WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		"total":     0,
		"pending":   0,
		"sent":      0,
		"delivered": 0,
		"read":      0,
		"replied":   0,
		"failed":    0,
		"cancelled": 0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		if _, ok := stats[status]; ok {
			stats[status] = count
		}
		stats["total"] += count
	}
	return stats, rows.Err()
}

// ====================== Dispatch worker writes ======================

// MarkSent records a successful transmission; the scheduler core only
// ever reads these fields back.
func (r *MessageRepository) MarkSent(id int, at time.Time) error {
	query := `UPDATE campaign_messages SET status='sent', sent_at=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, at, id)
	return err
}

func (r *MessageRepository) MarkFailed(id int, at time.Time) error {
	query := `UPDATE campaign_messages SET status='failed', failed_at=$1 WHERE id=$2`
	_, err := r.DB.Exec(query, at, id)
	return err
}

// ListPending returns the not-yet-sent tail of the sequence in send order.
func (r *MessageRepository) ListPending(campaignID int) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM campaign_messages
              WHERE campaign_id=$1 AND status='pending' ORDER BY order_index ASC`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(
			&m.ID, &m.CampaignID, &m.OrderIndex, &m.Phone, &m.Content, &m.Status,
			&m.ScheduledDelaySeconds, &m.SentAt, &m.FailedAt, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
