package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
	"github.com/bulkwave/bulkwave-backend/internal/controller"
	"github.com/bulkwave/bulkwave-backend/internal/model"
	"github.com/bulkwave/bulkwave-backend/internal/queue"
	"github.com/bulkwave/bulkwave-backend/internal/service"
)

// --- Mock repositories ---

type MockCampaignRepo struct {
	campaigns []*model.Campaign
	forcedErr error
}

func (m *MockCampaignRepo) CreateWithSchedule(c *model.Campaign, msgs []model.Message) ([]model.Message, error) {
	c.ID = len(m.campaigns) + 1
	c.CreatedAt = time.Now()
	m.campaigns = append(m.campaigns, c)
	for i := range msgs {
		msgs[i].ID = i + 1
		msgs[i].CampaignID = c.ID
	}
	return msgs, nil
}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	var filtered []*model.Campaign
	for _, c := range m.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		filtered = append(filtered, c)
	}
	total := len(filtered)

	start := offset
	end := offset + limit
	if start > total {
		return []*model.Campaign{}, total, nil
	}
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *MockCampaignRepo) MarkScheduled(id int, at time.Time) error { return m.forcedErr }
func (m *MockCampaignRepo) MarkRunning(id int, from model.CampaignStatus, startedAt time.Time) error {
	return m.forcedErr
}
func (m *MockCampaignRepo) MarkPaused(id int, pausedAt time.Time) error { return m.forcedErr }
func (m *MockCampaignRepo) MarkResumed(id int, startedAt time.Time, estimatedDuration int) error {
	return m.forcedErr
}
func (m *MockCampaignRepo) MarkCancelled(id int, from model.CampaignStatus) error {
	return m.forcedErr
}
func (m *MockCampaignRepo) MarkCompleted(id int) error { return m.forcedErr }

type MockMessageRepo struct {
	msgs []model.Message
}

func (m *MockMessageRepo) ListByCampaign(campaignID int) ([]model.Message, error) {
	return m.msgs, nil
}

func (m *MockMessageRepo) ReplaceSchedule(campaignID int, expected model.CampaignStatus, msgs []model.Message, estimatedDuration, totalRecipients int) ([]model.Message, error) {
	for i := range msgs {
		msgs[i].ID = i + 1
		msgs[i].CampaignID = campaignID
	}
	m.msgs = msgs
	return msgs, nil
}

func (m *MockMessageRepo) LastPendingDelay(campaignID int) (int, error)   { return 0, nil }
func (m *MockMessageRepo) LastCompletedDelay(campaignID int) (int, error) { return 0, nil }
func (m *MockMessageRepo) GetStats(campaignID int) (map[string]int, error) {
	return map[string]int{"total": len(m.msgs), "pending": len(m.msgs)}, nil
}

func newRouter(campaignRepo *MockCampaignRepo, messageRepo *MockMessageRepo) *chi.Mux {
	svc := &service.CampaignService{
		CampaignRepo: campaignRepo,
		MessageRepo:  messageRepo,
		Dispatcher:   queue.NewInMemoryDispatcher(),
	}
	ctrl := &controller.CampaignController{CampaignService: svc}

	r := chi.NewRouter()
	r.Post("/campaigns", ctrl.CreateCampaign)
	r.Get("/campaigns", ctrl.ListCampaigns)
	r.Get("/campaigns/{id}", ctrl.GetCampaignDetails)
	r.Put("/campaigns/{id}/recipients", ctrl.ReplaceRecipients)
	r.Post("/campaigns/{id}/launch", ctrl.LaunchCampaign)
	r.Post("/campaigns/{id}/pause", ctrl.PauseCampaign)
	r.Post("/campaigns/{id}/resume", ctrl.ResumeCampaign)
	r.Post("/campaigns/{id}/cancel", ctrl.CancelCampaign)
	return r
}

func TestCreateCampaignEndpoint(t *testing.T) {
	router := newRouter(&MockCampaignRepo{}, &MockMessageRepo{})

	body := map[string]interface{}{
		"name":      "Promo",
		"delay_min": 10,
		"delay_max": 10,
		"recipients": []map[string]string{
			{"phone": "+254700000001", "content": "a"},
			{"phone": "+254700000002", "content": "b"},
			{"phone": "+254700000003", "content": "c"},
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest("POST", "/campaigns", bytes.NewReader(b))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res struct {
		Campaign model.Campaign  `json:"campaign"`
		Messages []model.Message `json:"messages"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if res.Campaign.Status != model.CampaignStatusDraft {
		t.Errorf("expected draft, got %s", res.Campaign.Status)
	}
	if res.Campaign.EstimatedDuration != 30 {
		t.Errorf("expected estimated duration 30, got %d", res.Campaign.EstimatedDuration)
	}
	want := []int{10, 20, 30}
	for i, m := range res.Messages {
		if m.ScheduledDelaySeconds != want[i] {
			t.Errorf("message %d: expected offset %d, got %d", i+1, want[i], m.ScheduledDelaySeconds)
		}
	}
}

func TestCreateCampaignRejectsNoRecipients(t *testing.T) {
	router := newRouter(&MockCampaignRepo{}, &MockMessageRepo{})

	b, _ := json.Marshal(map[string]interface{}{"name": "Promo", "delay_min": 5, "delay_max": 10})
	req := httptest.NewRequest("POST", "/campaigns", bytes.NewReader(b))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestPauseDraftReturnsConflict(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{
		{ID: 1, Status: model.CampaignStatusDraft, DelayMin: 10, DelayMax: 10},
	}}
	router := newRouter(repo, &MockMessageRepo{})

	req := httptest.NewRequest("POST", "/campaigns/1/pause", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLifecycleConflictOnConcurrentModification(t *testing.T) {
	repo := &MockCampaignRepo{
		campaigns: []*model.Campaign{
			{ID: 1, Status: model.CampaignStatusRunning, DelayMin: 10, DelayMax: 10},
		},
		forcedErr: appErrors.NewConcurrentModification(1, "running"),
	}
	router := newRouter(repo, &MockMessageRepo{})

	req := httptest.NewRequest("POST", "/campaigns/1/pause", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	router := newRouter(&MockCampaignRepo{}, &MockMessageRepo{})

	req := httptest.NewRequest("GET", "/campaigns/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestReplaceRecipientsEndpoint(t *testing.T) {
	repo := &MockCampaignRepo{campaigns: []*model.Campaign{
		{ID: 1, Status: model.CampaignStatusDraft, DelayMin: 10, DelayMax: 10},
	}}
	messageRepo := &MockMessageRepo{msgs: []model.Message{
		{ID: 1, OrderIndex: 1, ScheduledDelaySeconds: 10, Status: model.MessageStatusPending},
		{ID: 2, OrderIndex: 2, ScheduledDelaySeconds: 20, Status: model.MessageStatusPending},
	}}
	router := newRouter(repo, messageRepo)

	body := map[string]interface{}{
		"recipients": []map[string]interface{}{
			{"id": 1, "phone": "+254700000001", "content": "a"},
			{"id": 2, "phone": "+254700000002", "content": "b"},
			{"phone": "+254700000003", "content": "new"},
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest("PUT", "/campaigns/1/recipients", bytes.NewReader(b))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res struct {
		TotalDuration int             `json:"total_duration"`
		Messages      []model.Message `json:"messages"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.TotalDuration != 30 {
		t.Errorf("expected total 30, got %d", res.TotalDuration)
	}
	if len(res.Messages) != 3 {
		t.Errorf("expected 3 messages, got %d", len(res.Messages))
	}
}

func TestListCampaignsPagination(t *testing.T) {
	repo := &MockCampaignRepo{}
	totalCampaigns := 25
	for i := 1; i <= totalCampaigns; i++ {
		repo.campaigns = append(repo.campaigns, &model.Campaign{
			ID:     i,
			Name:   "Campaign " + strconv.Itoa(i),
			Status: model.CampaignStatusDraft,
		})
	}
	router := newRouter(repo, &MockMessageRepo{})

	pageSize := 10
	seen := map[int]bool{}
	totalPages := (totalCampaigns + pageSize - 1) / pageSize

	for page := 1; page <= totalPages; page++ {
		req := httptest.NewRequest(
			"GET",
			"/campaigns?page="+strconv.Itoa(page)+
				"&page_size="+strconv.Itoa(pageSize)+
				"&status=draft",
			nil,
		)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var res struct {
			Data       []model.Campaign `json:"data"`
			Pagination struct {
				Page       int `json:"page"`
				PageSize   int `json:"page_size"`
				TotalCount int `json:"total_count"`
			} `json:"pagination"`
		}
		if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if res.Pagination.Page != page {
			t.Errorf("expected page %d, got %d", page, res.Pagination.Page)
		}
		if res.Pagination.TotalCount != totalCampaigns {
			t.Errorf("expected total count %d, got %d", totalCampaigns, res.Pagination.TotalCount)
		}

		for _, c := range res.Data {
			if seen[c.ID] {
				t.Errorf("duplicate campaign ID %d across pages", c.ID)
			}
			seen[c.ID] = true
			if c.Status != model.CampaignStatusDraft {
				t.Errorf("expected status draft, got %s", c.Status)
			}
		}
	}

	if len(seen) != totalCampaigns {
		t.Errorf("expected %d unique campaigns, got %d", totalCampaigns, len(seen))
	}
}
