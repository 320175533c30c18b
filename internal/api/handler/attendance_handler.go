package handler

import (
	"bytes"
	"context"
	"net/http"

	"attendance.service/internal/auth"
	"attendance.service/internal/core/model"
	"attendance.service/internal/export"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Ledger is the attendance use-case surface used by the handlers.
type Ledger interface {
	CheckIn(ctx context.Context, userID string) (*model.AttendanceRecord, error)
	CheckOut(ctx context.Context, userID string) (*model.AttendanceRecord, error)
	GetToday(ctx context.Context, userID string) (string, *model.AttendanceRecord, error)
	GetHistory(ctx context.Context, userID string) ([]*model.AttendanceRecord, error)
	EmployeeHistory(ctx context.Context, userID string) ([]*model.AttendanceRecord, error)
	GetMonthlySummary(ctx context.Context, userID, month string) (*model.MonthlySummary, error)
	ListAll(ctx context.Context, filter model.ListFilter) ([]*model.AttendanceWithUser, error)
	TeamSummaryForDate(ctx context.Context, date string) (*model.TeamSummary, error)
	WeeklyTrend(ctx context.Context, endDate string) ([]model.TrendPoint, error)
	ExportRange(ctx context.Context, from, to string) ([]model.ExportRow, error)
	EmployeeDashboard(ctx context.Context, userID string) (*model.EmployeeDashboard, error)
	ManagerDashboard(ctx context.Context) (*model.ManagerDashboard, error)
}

type AttendanceHandler struct {
	Ledger Ledger
}

type todayResponse struct {
	Date       string                  `json:"date"`
	Attendance *model.AttendanceRecord `json:"attendance"`
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.withIdentity(w, r, func(id auth.Identity) (any, error) {
		return h.Ledger.CheckIn(r.Context(), id.UserID)
	})
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.withIdentity(w, r, func(id auth.Identity) (any, error) {
		return h.Ledger.CheckOut(r.Context(), id.UserID)
	})
}

func (h *AttendanceHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	h.withIdentity(w, r, func(id auth.Identity) (any, error) {
		return h.Ledger.GetHistory(r.Context(), id.UserID)
	})
}

func (h *AttendanceHandler) MySummary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	h.withIdentity(w, r, func(id auth.Identity) (any, error) {
		return h.Ledger.GetMonthlySummary(r.Context(), id.UserID, month)
	})
}

func (h *AttendanceHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.withIdentity(w, r, func(id auth.Identity) (any, error) {
		date, rec, err := h.Ledger.GetToday(r.Context(), id.UserID)
		if err != nil {
			return nil, err
		}
		return todayResponse{Date: date, Attendance: rec}, nil
	})
}

func (h *AttendanceHandler) All(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := h.Ledger.ListAll(r.Context(), model.ListFilter{
		Date:       q.Get("date"),
		EmployeeID: q.Get("employeeId"),
		Status:     model.AttendanceStatus(q.Get("status")),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) Employee(w http.ResponseWriter, r *http.Request) {
	records, err := h.Ledger.EmployeeHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

func (h *AttendanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Ledger.TeamSummaryForDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (h *AttendanceHandler) Trend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.Ledger.WeeklyTrend(r.Context(), r.URL.Query().Get("endDate"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, trend)
}

// Export sends the records of a date range as a CSV or XLSX attachment.
// from and to must be given together; omitting both exports every record.
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	rows, err := h.Ledger.ExportRange(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == export.FormatXLSX {
		err = export.WriteXLSX(&buf, rows)
	} else {
		err = export.WriteCSV(&buf, rows)
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}

	log.Ctx(r.Context()).Info().Int("rows", len(rows)).Str("format", string(format)).Msg("Attendance exported")

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *AttendanceHandler) withIdentity(w http.ResponseWriter, r *http.Request, fn func(auth.Identity) (any, error)) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, r, model.ErrUnauthenticated)
		return
	}
	res, err := fn(id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
