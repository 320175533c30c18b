package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"attendance.service/internal/auth"
	"attendance.service/internal/core"
	"attendance.service/internal/core/model"
)

type stubLedger struct {
	checkInErr error
	historyFor string
	exportRows []model.ExportRow
	exportFrom string
	exportTo   string
	reportErr  error
}

func (s *stubLedger) CheckIn(_ context.Context, userID string) (*model.AttendanceRecord, error) {
	if s.checkInErr != nil {
		return nil, s.checkInErr
	}
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	return &model.AttendanceRecord{ID: "rec-1", UserID: userID, Date: "2024-05-10", CheckInTime: &now, Status: model.StatusPresent}, nil
}

func (s *stubLedger) CheckOut(context.Context, string) (*model.AttendanceRecord, error) {
	return nil, model.ErrNotCheckedIn
}

func (s *stubLedger) GetToday(context.Context, string) (string, *model.AttendanceRecord, error) {
	return "2024-05-10", nil, nil
}

func (s *stubLedger) GetHistory(context.Context, string) ([]*model.AttendanceRecord, error) {
	return []*model.AttendanceRecord{}, nil
}

func (s *stubLedger) EmployeeHistory(_ context.Context, userID string) ([]*model.AttendanceRecord, error) {
	s.historyFor = userID
	if userID == "missing" {
		return nil, model.ErrUserNotFound
	}
	return []*model.AttendanceRecord{}, nil
}

func (s *stubLedger) GetMonthlySummary(_ context.Context, _, month string) (*model.MonthlySummary, error) {
	if month == "bad" {
		return nil, model.ErrInvalidMonth
	}
	return &model.MonthlySummary{Present: 3, TotalHours: 24}, nil
}

func (s *stubLedger) ListAll(context.Context, model.ListFilter) ([]*model.AttendanceWithUser, error) {
	return []*model.AttendanceWithUser{}, nil
}

func (s *stubLedger) TeamSummaryForDate(_ context.Context, date string) (*model.TeamSummary, error) {
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return &model.TeamSummary{Date: date, TotalEmployees: 3, Present: 2, Absent: 1}, nil
}

func (s *stubLedger) WeeklyTrend(context.Context, string) ([]model.TrendPoint, error) {
	return []model.TrendPoint{}, nil
}

func (s *stubLedger) ExportRange(_ context.Context, from, to string) ([]model.ExportRow, error) {
	s.exportFrom, s.exportTo = from, to
	return s.exportRows, nil
}

func (s *stubLedger) EmployeeDashboard(context.Context, string) (*model.EmployeeDashboard, error) {
	return &model.EmployeeDashboard{TodayStatus: "Not Checked In", Recent: []*model.AttendanceRecord{}}, nil
}

func (s *stubLedger) ManagerDashboard(context.Context) (*model.ManagerDashboard, error) {
	return &model.ManagerDashboard{Date: "2024-05-10", Trend: []model.TrendPoint{}}, nil
}

type stubAccounts struct {
	err error
}

func (s *stubAccounts) Register(_ context.Context, in core.RegisterInput) (*core.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.AuthResult{Token: "token", User: &model.User{ID: "new", Email: in.Email, Role: model.RoleEmployee}}, nil
}

func (s *stubAccounts) Login(context.Context, core.LoginInput) (*core.AuthResult, error) {
	return nil, model.ErrInvalidCredentials
}

func (s *stubAccounts) Me(_ context.Context, userID string) (*model.User, error) {
	return &model.User{ID: userID, Role: model.RoleEmployee}, nil
}

type stubUsers map[string]*model.User

func (s stubUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return u, nil
}

type routerFixture struct {
	ledger   *stubLedger
	accounts *stubAccounts
	tokens   *auth.Issuer
	users    stubUsers
	handler  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	f := &routerFixture{
		ledger:   &stubLedger{},
		accounts: &stubAccounts{},
		tokens:   auth.NewIssuer("test-secret", "attendance-test", time.Hour),
		users: stubUsers{
			"emp-1": {ID: "emp-1", Role: model.RoleEmployee, EmployeeID: "EMP-001"},
			"mgr-1": {ID: "mgr-1", Role: model.RoleManager, EmployeeID: "MGR-001"},
		},
	}
	f.handler = NewRouter(Dependencies{
		Ledger:   f.ledger,
		Accounts: f.accounts,
		Tokens:   f.tokens,
		Users:    f.users,
	})
	return f
}

func (f *routerFixture) token(t *testing.T, u *model.User) string {
	t.Helper()

	tok, err := f.tokens.Issue(u)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	return tok
}

func (f *routerFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Message
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	if rec := f.do(http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	for _, target := range []string{"/api/attendance/today", "/api/attendance/all", "/api/dashboard/employee", "/api/auth/me"} {
		rec := f.do(http.MethodGet, target, "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", target, rec.Code)
		}
	}

	if rec := f.do(http.MethodGet, "/api/attendance/today", "not-a-token", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestRouter_RejectsTokenOfUnknownUser(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	tok := f.token(t, &model.User{ID: "ghost", Role: model.RoleManager})

	rec := f.do(http.MethodGet, "/api/attendance/today", tok, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_ManagerRoutesForbiddenForEmployees(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	tok := f.token(t, f.users["emp-1"])

	for _, target := range []string{
		"/api/attendance/all",
		"/api/attendance/employee/emp-1",
		"/api/attendance/summary",
		"/api/attendance/trend",
		"/api/attendance/export",
		"/api/dashboard/manager",
	} {
		rec := f.do(http.MethodGet, target, tok, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", target, rec.Code)
		}
	}

	if rec := f.do(http.MethodGet, "/api/dashboard/employee", tok, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected employee dashboard to be allowed, got %d", rec.Code)
	}
}

func TestRouter_ManagerMayUseEmployeeRoutes(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	tok := f.token(t, f.users["mgr-1"])

	rec := f.do(http.MethodPost, "/api/attendance/checkin", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got model.AttendanceRecord
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if got.UserID != "mgr-1" {
		t.Fatalf("check-in recorded for %q", got.UserID)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	emp := f.token(t, f.users["emp-1"])
	mgr := f.token(t, f.users["mgr-1"])

	f.ledger.checkInErr = model.ErrAlreadyCheckedIn
	rec := f.do(http.MethodPost, "/api/attendance/checkin", emp, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for second check-in, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != model.ErrAlreadyCheckedIn.Error() {
		t.Fatalf("unexpected message %q", msg)
	}

	if rec := f.do(http.MethodPost, "/api/attendance/checkout", emp, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for checkout without check-in, got %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/api/attendance/my-summary?month=bad", emp, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}

	rec = f.do(http.MethodGet, "/api/attendance/employee/missing", mgr, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if f.ledger.historyFor != "missing" {
		t.Fatalf("path variable not passed through: %q", f.ledger.historyFor)
	}

	f.ledger.reportErr = errors.New("pool exhausted")
	rec = f.do(http.MethodGet, "/api/attendance/summary?date=2024-05-10", mgr, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/register", "", `{"name":"Ana","email":"ana@example.com","password":"secret1","employeeId":"EMP-009"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if rec := f.do(http.MethodPost, "/api/auth/register", "", `{"name":`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	f.accounts.err = model.ErrEmailAlreadyExists
	if rec := f.do(http.MethodPost, "/api/auth/register", "", `{"email":"ana@example.com"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestRouter_LoginFailureIsUnauthorized(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.do(http.MethodPost, "/api/auth/login", "", `{"email":"ana@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_Today(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/api/attendance/today", f.token(t, f.users["emp-1"]), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"attendance":null`) || !strings.Contains(body, `"date":"2024-05-10"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRouter_ExportCSV(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.ledger.exportRows = []model.ExportRow{{
		EmployeeID: "EMP-001",
		Name:       "Ana",
		Email:      "ana@example.com",
		Date:       "2024-05-10",
		Status:     "present",
		TotalHours: 8,
	}}

	rec := f.do(http.MethodGet, "/api/attendance/export?from=2024-05-01&to=2024-05-31", f.token(t, f.users["mgr-1"]), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if f.ledger.exportFrom != "2024-05-01" || f.ledger.exportTo != "2024-05-31" {
		t.Fatalf("range not passed through: %q..%q", f.ledger.exportFrom, f.ledger.exportTo)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "EMP-001,Ana,") {
		t.Fatalf("unexpected csv %q", rec.Body.String())
	}
}

func TestRouter_ExportRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.do(http.MethodGet, "/api/attendance/export?format=pdf", f.token(t, f.users["mgr-1"]), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
