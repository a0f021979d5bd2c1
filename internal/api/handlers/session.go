package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mira/workspace-hub/internal/api/middleware"
	"github.com/mira/workspace-hub/internal/domain"
	"github.com/mira/workspace-hub/internal/service"
)

type SessionHandler struct {
	scheduleService   *service.ScheduleService
	slotService       *service.SlotService
	permissionService *service.PermissionService
}

func NewSessionHandler(
	scheduleService *service.ScheduleService,
	slotService *service.SlotService,
	permissionService *service.PermissionService,
) *SessionHandler {
	return &SessionHandler{
		scheduleService:   scheduleService,
		slotService:       slotService,
		permissionService: permissionService,
	}
}

type slotSpecRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type scheduleSpecRequest struct {
	Days   []int `json:"days"`
	Hour   int   `json:"hour"`
	Minute int   `json:"minute"`
}

type createSessionTypeRequest struct {
	Name      string                `json:"name"`
	Slots     []slotSpecRequest     `json:"slots"`
	Schedules []scheduleSpecRequest `json:"schedules"`
}

func (h *SessionHandler) CreateSessionType(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req createSessionTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Session type name is required", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.Can(r.Context(), userID, workspaceID, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	slots := make([]service.SlotSpec, 0, len(req.Slots))
	for _, s := range req.Slots {
		slots = append(slots, service.SlotSpec{Name: s.Name, Capacity: s.Capacity})
	}
	schedules := make([]service.ScheduleSpec, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		schedules = append(schedules, service.ScheduleSpec{Days: s.Days, Hour: s.Hour, Minute: s.Minute})
	}

	sessionType, err := h.scheduleService.CreateSessionType(r.Context(), workspaceID, req.Name, slots, schedules, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionType)
}

func (h *SessionHandler) ListSessionTypes(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	types, err := h.scheduleService.ListSessionTypes(r.Context(), userID, workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *SessionHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	scheduleID, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	var req scheduleSpecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.Can(r.Context(), userID, workspaceID, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(r.Context(), scheduleID,
		service.ScheduleSpec{Days: req.Days, Hour: req.Hour, Minute: req.Minute}, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *SessionHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	scheduleID, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.Can(r.Context(), userID, workspaceID, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	if err := h.scheduleService.DeleteSchedule(r.Context(), scheduleID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type materializeRequest struct {
	ProbeMillis   int64 `json:"probeMillis"`
	OffsetMinutes int   `json:"offsetMinutes"`
}

// Materialize expands a schedule occurrence for the probe date and returns
// the (possibly freshly created) session instance.
func (h *SessionHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	scheduleID, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		http.Error(w, "Invalid schedule ID", http.StatusBadRequest)
		return
	}

	var req materializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.CanAny(r.Context(), userID, workspaceID,
		domain.CapHostSessions, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	instant, err := h.scheduleService.ExpandOccurrence(r.Context(), scheduleID, req.ProbeMillis, req.OffsetMinutes)
	if err != nil {
		writeError(w, err)
		return
	}

	session, err := h.scheduleService.GetOrCreateSession(r.Context(), scheduleID, instant)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type createSessionRequest struct {
	SessionTypeID string    `json:"sessionTypeId"`
	Date          time.Time `json:"date"`
}

func (h *SessionHandler) CreateUnscheduled(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sessionTypeID, err := uuid.Parse(req.SessionTypeID)
	if err != nil {
		http.Error(w, "Invalid session type ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.Can(r.Context(), userID, workspaceID, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.scheduleService.CreateUnscheduledSession(r.Context(), sessionTypeID, req.Date, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

type claimSlotRequest struct {
	RoleSlotID string `json:"roleSlotId"`
	SlotIndex  int    `json:"slotIndex"`
	MemberID   string `json:"memberId"`
}

func (h *SessionHandler) ClaimSlot(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var req claimSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	roleSlotID, err := uuid.Parse(req.RoleSlotID)
	if err != nil {
		http.Error(w, "Invalid role slot ID", http.StatusBadRequest)
		return
	}
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.CanAny(r.Context(), userID, workspaceID,
		domain.CapHostSessions, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	assignments, err := h.slotService.AssignSlot(r.Context(), sessionID, roleSlotID, req.SlotIndex, memberID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

type releaseSlotRequest struct {
	RoleSlotID string `json:"roleSlotId"`
	SlotIndex  int    `json:"slotIndex"`
}

func (h *SessionHandler) ReleaseSlot(w http.ResponseWriter, r *http.Request) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	var req releaseSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	roleSlotID, err := uuid.Parse(req.RoleSlotID)
	if err != nil {
		http.Error(w, "Invalid role slot ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.CanAny(r.Context(), userID, workspaceID,
		domain.CapHostSessions, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	assignments, err := h.slotService.UnassignSlot(r.Context(), sessionID, roleSlotID, req.SlotIndex)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, assignments)
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, sessionID, memberID uuid.UUID) (*domain.SessionInstance, error) {
		return h.scheduleService.StartSession(r.Context(), sessionID, memberID)
	})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(r *http.Request, sessionID, _ uuid.UUID) (*domain.SessionInstance, error) {
		return h.scheduleService.EndSession(r.Context(), sessionID)
	})
}

func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, fn func(*http.Request, uuid.UUID, uuid.UUID) (*domain.SessionInstance, error)) {
	userID, workspaceID, ok := requestScope(w, r)
	if !ok {
		return
	}
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	if err := h.permissionService.CanAny(r.Context(), userID, workspaceID,
		domain.CapHostSessions, domain.CapManageSessions); err != nil {
		writeError(w, err)
		return
	}

	session, err := fn(r, sessionID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// requestScope extracts the authenticated user and the workspace from the
// request. Writes the error response itself when either is missing.
func requestScope(w http.ResponseWriter, r *http.Request) (userID, workspaceID uuid.UUID, ok bool) {
	userID, found := middleware.GetUserID(r.Context())
	if !found {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, workspaceID, true
}
