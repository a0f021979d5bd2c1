package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/service"
)

type ActivityHandler struct {
	activityService   *service.ActivityService
	permissionService *service.PermissionService
}

func NewActivityHandler(activityService *service.ActivityService, permissionService *service.PermissionService) *ActivityHandler {
	return &ActivityHandler{
		activityService:   activityService,
		permissionService: permissionService,
	}
}

type openActivityRequest struct {
	UserID string `json:"userId"`
}

func (h *ActivityHandler) Open(w http.ResponseWriter, r *http.Request) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req openActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Tracking someone else's presence needs the activity permission;
	// opening your own does not.
	subjectID := actorID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusBadRequest)
			return
		}
		subjectID = parsed
	}
	if subjectID != actorID {
		if err := h.permissionService.Can(r.Context(), actorID, workspaceID, domain.CapManageActivity); err != nil {
			writeError(w, err)
			return
		}
	}

	session, err := h.activityService.OpenActivity(r.Context(), subjectID, workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *ActivityHandler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorizeSessionAccess(w, r)
	if !ok {
		return
	}

	session, err := h.activityService.CloseActivity(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *ActivityHandler) Message(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.authorizeSessionAccess(w, r)
	if !ok {
		return
	}

	if err := h.activityService.RecordMessage(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeSessionAccess resolves the activity session from the URL and lets
// the call through when the actor owns the session or may manage activity.
func (h *ActivityHandler) authorizeSessionAccess(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actorID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return uuid.Nil, false
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		http.Error(w, "Invalid activity session ID", http.StatusBadRequest)
		return uuid.Nil, false
	}

	session, err := h.activityService.GetActivity(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return uuid.Nil, false
	}
	if session.UserID != actorID {
		if err := h.permissionService.Can(r.Context(), actorID, workspaceID, domain.CapManageActivity); err != nil {
			writeError(w, err)
			return uuid.Nil, false
		}
	}
	return sessionID, true
}

// Overlaps surfaces other sessions in the workspace whose interval
// intersects the probe window, one per user.
func (h *ActivityHandler) Overlaps(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "activityID"))
	if err != nil {
		http.Error(w, "Invalid activity session ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.CanAny(r.Context(), userID, workspaceID,
		domain.CapViewReports, domain.CapManageActivity); err != nil {
		writeError(w, err)
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid start time", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "Invalid end time", http.StatusBadRequest)
		return
	}

	overlaps, err := h.activityService.FindOverlapping(r.Context(), sessionID, start, end, workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overlaps)
}
