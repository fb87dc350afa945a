package main

import (
	"testing"
	"time"

	"github.com/bulkwave/bulkwave-backend/internal/model"
)

type mockCampaignReader struct {
	statuses  []model.CampaignStatus // consumed per GetByID call, last repeats
	reads     int
	completed int
}

func (m *mockCampaignReader) GetByID(id int) (*model.Campaign, error) {
	idx := m.reads
	if idx >= len(m.statuses) {
		idx = len(m.statuses) - 1
	}
	m.reads++
	return &model.Campaign{ID: id, Status: m.statuses[idx]}, nil
}

func (m *mockCampaignReader) MarkCompleted(id int) error {
	m.completed++
	return nil
}

type mockMessageStore struct {
	pending  []model.Message
	lastDone int
	sent     []int
	failed   []int
}

func (m *mockMessageStore) ListPending(campaignID int) ([]model.Message, error) {
	remaining := []model.Message{}
	for _, msg := range m.pending {
		if msg.Status == model.MessageStatusPending {
			remaining = append(remaining, msg)
		}
	}
	return remaining, nil
}

func (m *mockMessageStore) LastCompletedDelay(campaignID int) (int, error) {
	return m.lastDone, nil
}

func (m *mockMessageStore) MarkSent(id int, at time.Time) error {
	m.sent = append(m.sent, id)
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Status = model.MessageStatusSent
		}
	}
	return nil
}

func (m *mockMessageStore) MarkFailed(id int, at time.Time) error {
	m.failed = append(m.failed, id)
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Status = model.MessageStatusFailed
		}
	}
	return nil
}

func TestRunCampaignHonorsOffsets(t *testing.T) {
	campaigns := &mockCampaignReader{statuses: []model.CampaignStatus{model.CampaignStatusRunning}}
	messages := &mockMessageStore{
		pending: []model.Message{
			{ID: 1, OrderIndex: 1, Status: model.MessageStatusPending, ScheduledDelaySeconds: 10},
			{ID: 2, OrderIndex: 2, Status: model.MessageStatusPending, ScheduledDelaySeconds: 20},
			{ID: 3, OrderIndex: 3, Status: model.MessageStatusPending, ScheduledDelaySeconds: 1820},
		},
	}

	var waits []time.Duration
	sleep := func(d time.Duration) { waits = append(waits, d) }

	err := runCampaign(campaigns, messages, func(model.Message) bool { return true }, sleep, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantWaits := []time.Duration{10 * time.Second, 10 * time.Second, 1800 * time.Second}
	if len(waits) != len(wantWaits) {
		t.Fatalf("expected %d waits, got %d", len(wantWaits), len(waits))
	}
	for i, w := range wantWaits {
		if waits[i] != w {
			t.Errorf("wait %d: expected %v, got %v", i, w, waits[i])
		}
	}

	if len(messages.sent) != 3 {
		t.Errorf("expected 3 sent, got %d", len(messages.sent))
	}
	if campaigns.completed != 1 {
		t.Errorf("expected campaign marked completed once, got %d", campaigns.completed)
	}
}

// After a resume the clock is seeded from the last handled offset, not
// from zero, so already-served waiting time is not repeated.
func TestRunCampaignResumesFromLastDelay(t *testing.T) {
	campaigns := &mockCampaignReader{statuses: []model.CampaignStatus{model.CampaignStatusRunning}}
	messages := &mockMessageStore{
		lastDone: 2390,
		pending: []model.Message{
			{ID: 61, OrderIndex: 61, Status: model.MessageStatusPending, ScheduledDelaySeconds: 5990},
		},
	}

	var waits []time.Duration
	sleep := func(d time.Duration) { waits = append(waits, d) }

	if err := runCampaign(campaigns, messages, func(model.Message) bool { return true }, sleep, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waits) != 1 || waits[0] != 3600*time.Second {
		t.Errorf("expected one 3600s wait, got %v", waits)
	}
}

func TestRunCampaignStopsWhenPaused(t *testing.T) {
	campaigns := &mockCampaignReader{statuses: []model.CampaignStatus{
		model.CampaignStatusRunning,
		model.CampaignStatusPaused,
	}}
	messages := &mockMessageStore{
		pending: []model.Message{
			{ID: 1, OrderIndex: 1, Status: model.MessageStatusPending, ScheduledDelaySeconds: 10},
			{ID: 2, OrderIndex: 2, Status: model.MessageStatusPending, ScheduledDelaySeconds: 20},
		},
	}

	err := runCampaign(campaigns, messages, func(model.Message) bool { return true }, func(time.Duration) {}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages.sent) != 1 {
		t.Errorf("expected 1 sent before pause took effect, got %d", len(messages.sent))
	}
	if campaigns.completed != 0 {
		t.Error("a paused campaign must not be marked completed")
	}
}

func TestRunCampaignRecordsFailures(t *testing.T) {
	campaigns := &mockCampaignReader{statuses: []model.CampaignStatus{model.CampaignStatusRunning}}
	messages := &mockMessageStore{
		pending: []model.Message{
			{ID: 1, OrderIndex: 1, Status: model.MessageStatusPending, ScheduledDelaySeconds: 5},
		},
	}

	err := runCampaign(campaigns, messages, func(model.Message) bool { return false }, func(time.Duration) {}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages.failed) != 1 {
		t.Errorf("expected 1 failure recorded, got %d", len(messages.failed))
	}
}
