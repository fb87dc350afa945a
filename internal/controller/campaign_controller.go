// internal/controller/campaign_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/bulkwave/bulkwave-backend/internal/errors"
    "github.com/bulkwave/bulkwave-backend/internal/service"
)

type CampaignController struct {
    CampaignService *service.CampaignService
}

// writeError maps the typed scheduler rejections onto HTTP statuses so
// the UI can tell a stale button (409) from a bad form (422).
func writeError(w http.ResponseWriter, err error) {
    var notFound *appErrors.ErrCampaignNotFound
    var invalidTransition *appErrors.ErrInvalidTransition
    var conflict *appErrors.ErrConcurrentModification
    var emptySet *appErrors.ErrEmptyRecipientSet
    var badTiming *appErrors.ErrInvalidTimingConfig

    switch {
    case errors.As(err, &notFound):
        http.Error(w, err.Error(), http.StatusNotFound)
    case errors.As(err, &invalidTransition), errors.As(err, &conflict):
        http.Error(w, err.Error(), http.StatusConflict)
    case errors.As(err, &emptySet), errors.As(err, &badTiming):
        http.Error(w, err.Error(), http.StatusUnprocessableEntity)
    default:
        http.Error(w, err.Error(), http.StatusInternalServerError)
    }
}

func campaignID(r *http.Request) (int, error) {
    return strconv.Atoi(chi.URLParam(r, "id"))
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Name                  string                   `json:"name"`
        DelayMin              int                      `json:"delay_min"`
        DelayMax              int                      `json:"delay_max"`
        PauseAfterMessages    int                      `json:"pause_after_messages"`
        PauseSeconds          int                      `json:"pause_seconds"`
        DeviceIDs             []string                 `json:"device_ids"`
        MultiDevice           bool                     `json:"multi_device"`
        MessageVariationCount int                      `json:"message_variation_count"`
        Recipients            []service.RecipientInput `json:"recipients"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    campaign, msgs, err := c.CampaignService.CreateCampaign(service.CreateCampaignInput{
        Name:                  body.Name,
        DelayMin:              body.DelayMin,
        DelayMax:              body.DelayMax,
        PauseAfterMessages:    body.PauseAfterMessages,
        PauseSeconds:          body.PauseSeconds,
        DeviceIDs:             body.DeviceIDs,
        MultiDevice:           body.MultiDevice,
        MessageVariationCount: body.MessageVariationCount,
        Recipients:            body.Recipients,
    })
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "campaign": campaign,
        "messages": msgs,
    })
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
    status := r.URL.Query().Get("status")

    if page < 1 {
        page = 1
    }
    if pageSize < 1 {
        pageSize = 20
    }

    campaigns, pagination, err := c.CampaignService.ListCampaigns(page, pageSize, status)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "data":       campaigns,
        "pagination": pagination,
    })
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
    id, err := campaignID(r)
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }

    details, err := c.CampaignService.GetCampaignDetails(id)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(details)
}

// ReplaceRecipients is the edit API: the draft's full recipient list is
// replaced and the response carries the recomputed offsets.
func (c *CampaignController) ReplaceRecipients(w http.ResponseWriter, r *http.Request) {
    id, err := campaignID(r)
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }

    var body struct {
        Recipients []service.RecipientInput `json:"recipients"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    msgs, total, err := c.CampaignService.ReplaceRecipients(id, body.Recipients)
    if err != nil {
        writeError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "total_duration": total,
        "messages":       msgs,
    })
}

func (c *CampaignController) ScheduleCampaign(w http.ResponseWriter, r *http.Request) {
    id, err := campaignID(r)
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }

    var body struct {
        ScheduledAt string `json:"scheduled_at"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }
    at, err := time.Parse(time.RFC3339, body.ScheduledAt)
    if err != nil {
        http.Error(w, "invalid scheduled_at: "+err.Error(), http.StatusBadRequest)
        return
    }

    if err := c.CampaignService.Schedule(id, at); err != nil {
        writeError(w, err)
        return
    }
    c.writeStatus(w, id, "scheduled")
}

func (c *CampaignController) LaunchCampaign(w http.ResponseWriter, r *http.Request) {
    c.lifecycleAction(w, r, c.CampaignService.Launch, "running")
}

func (c *CampaignController) PauseCampaign(w http.ResponseWriter, r *http.Request) {
    c.lifecycleAction(w, r, c.CampaignService.Pause, "paused")
}

func (c *CampaignController) ResumeCampaign(w http.ResponseWriter, r *http.Request) {
    c.lifecycleAction(w, r, c.CampaignService.Resume, "running")
}

func (c *CampaignController) CancelCampaign(w http.ResponseWriter, r *http.Request) {
    c.lifecycleAction(w, r, c.CampaignService.Cancel, "cancelled")
}

func (c *CampaignController) lifecycleAction(w http.ResponseWriter, r *http.Request, action func(int) error, resulting string) {
    id, err := campaignID(r)
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }
    if err := action(id); err != nil {
        writeError(w, err)
        return
    }
    c.writeStatus(w, id, resulting)
}

func (c *CampaignController) writeStatus(w http.ResponseWriter, id int, status string) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "campaign_id": id,
        "status":      status,
    })
}
