package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/ratelimit"
	"github.com/mira/workspace-hub/internal/service"
)

type QuotaHandler struct {
	quotaService      *service.QuotaService
	permissionService *service.PermissionService
	adjustmentLimiter *ratelimit.Limiter
}

func NewQuotaHandler(
	quotaService *service.QuotaService,
	permissionService *service.PermissionService,
	adjustmentLimiter *ratelimit.Limiter,
) *QuotaHandler {
	return &QuotaHandler{
		quotaService:      quotaService,
		permissionService: permissionService,
		adjustmentLimiter: adjustmentLimiter,
	}
}

type createAdjustmentRequest struct {
	UserID  string `json:"userId"`
	Minutes int    `json:"minutes"`
	Reason  string `json:"reason"`
}

func (h *QuotaHandler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req createAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	subjectID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.Can(r.Context(), actorID, workspaceID, domain.CapManageActivity); err != nil {
		writeError(w, err)
		return
	}

	if !h.adjustmentLimiter.Allow(actorID.String()) {
		http.Error(w, "Too many adjustments, slow down", http.StatusTooManyRequests)
		return
	}

	adjustment, err := h.quotaService.CreateAdjustment(r.Context(), service.CreateAdjustmentInput{
		UserID:      subjectID,
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Minutes:     req.Minutes,
		Reason:      req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, adjustment)
}

type effectiveMinutesResponse struct {
	UserID  string        `json:"userId"`
	Period  domain.Period `json:"period"`
	Minutes int           `json:"minutes"`
}

func (h *QuotaHandler) EffectiveMinutes(w http.ResponseWriter, r *http.Request) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	subjectID := actorID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		subjectID = parsed
	}
	if subjectID != actorID {
		if err := h.permissionService.Can(r.Context(), actorID, workspaceID, domain.CapViewReports); err != nil {
			writeError(w, err)
			return
		}
	}

	period, err := h.quotaService.CurrentPeriod(r.Context(), workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	minutes, err := h.quotaService.EffectiveMinutes(r.Context(), subjectID, workspaceID, period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, effectiveMinutesResponse{
		UserID:  subjectID.String(),
		Period:  period,
		Minutes: minutes,
	})
}

func (h *QuotaHandler) Report(w http.ResponseWriter, r *http.Request) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	subjectID := actorID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		subjectID = parsed
	}
	if subjectID != actorID {
		if err := h.permissionService.Can(r.Context(), actorID, workspaceID, domain.CapViewReports); err != nil {
			writeError(w, err)
			return
		}
	}

	standings, err := h.quotaService.MemberQuotaReport(r.Context(), subjectID, workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// ClosePeriod snapshots the current period and starts the next one. Meant to
// be hit by an operator or an external cron.
func (h *QuotaHandler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	if err := h.permissionService.CanAny(r.Context(), actorID, workspaceID,
		domain.CapManageActivity, domain.CapAdmin); err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.quotaService.ClosePeriod(r.Context(), workspaceID, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
