package handler

import (
	"net/http"

	"attendance.service/internal/auth"
	"attendance.service/internal/core/model"
)

type DashboardHandler struct {
	Ledger Ledger
}

func (h *DashboardHandler) Employee(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, r, model.ErrUnauthenticated)
		return
	}

	dash, err := h.Ledger.EmployeeDashboard(r.Context(), id.UserID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dash)
}

func (h *DashboardHandler) Manager(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Ledger.ManagerDashboard(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, dash)
}
