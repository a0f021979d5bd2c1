package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mira/workspace-hub/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrWorkspaceNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrScheduleNotFound),
		errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrQuotaNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSlotOccupied),
		errors.Is(err, domain.ErrDuplicateSession):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAdjustment),
		errors.Is(err, domain.ErrInvalidSchedule),
		errors.Is(err, domain.ErrInvalidSlotIndex),
		errors.Is(err, domain.ErrInvalidCapability),
		errors.Is(err, domain.ErrMemberNotInWorkspace):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoOccurrence):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
