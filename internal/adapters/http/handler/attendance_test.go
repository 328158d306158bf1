package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
)

type stubAttendanceUseCase struct {
	punchInInput attendance.PunchInInput
	punchInOut   *attendance.PunchInResult
	punchInErr   error

	punchOutInput attendance.PunchOutInput
	punchOutOut   *attendance.PunchOutResult
	punchOutErr   error

	statusOut *attendance.StatusResult
	statusErr error

	historyInput attendance.HistoryInput
	historyOut   []*attendance.HistoryEntry
	historyErr   error

	weeklyOut *attendance.Summary
	weeklyErr error

	monthlyInput attendance.MonthlySummaryInput
	monthlyOut   *attendance.MonthlySummary
	monthlyErr   error

	exportOut string
	exportErr error
}

func (s *stubAttendanceUseCase) PunchIn(_ context.Context, in attendance.PunchInInput) (*attendance.PunchInResult, error) {
	s.punchInInput = in
	return s.punchInOut, s.punchInErr
}

func (s *stubAttendanceUseCase) PunchOut(_ context.Context, in attendance.PunchOutInput) (*attendance.PunchOutResult, error) {
	s.punchOutInput = in
	return s.punchOutOut, s.punchOutErr
}

func (s *stubAttendanceUseCase) GetStatus(_ context.Context, in attendance.GetStatusInput) (*attendance.StatusResult, error) {
	return s.statusOut, s.statusErr
}

func (s *stubAttendanceUseCase) GetHistory(_ context.Context, in attendance.HistoryInput) ([]*attendance.HistoryEntry, error) {
	s.historyInput = in
	return s.historyOut, s.historyErr
}

func (s *stubAttendanceUseCase) GetWeeklySummary(_ context.Context, in attendance.WeeklySummaryInput) (*attendance.Summary, error) {
	return s.weeklyOut, s.weeklyErr
}

func (s *stubAttendanceUseCase) GetMonthlySummary(_ context.Context, in attendance.MonthlySummaryInput) (*attendance.MonthlySummary, error) {
	s.monthlyInput = in
	return s.monthlyOut, s.monthlyErr
}

func (s *stubAttendanceUseCase) ExportCSV(_ context.Context, in attendance.ExportInput) (string, error) {
	return s.exportOut, s.exportErr
}

func identifiedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), emailContextKey{}, "hana@example.com")
	return req.WithContext(ctx)
}

func TestAttendanceHandler_PunchIn(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		punchInOut: &attendance.PunchInResult{
			Record: &attendance.Record{
				UserEmail: "hana@example.com",
				Date:      "2024-02-05",
				PunchIn:   "09:00:00",
			},
		},
	}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.PunchIn(rec, identifiedRequest(http.MethodPost, "/api/v1/attendance/punch-in", ""))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if stub.punchInInput.Email != "hana@example.com" {
		t.Errorf("expected resolved email to be passed through, got %s", stub.punchInInput.Email)
	}

	var payload struct {
		Record struct {
			Date    string `json:"date"`
			PunchIn string `json:"punch_in"`
		} `json:"record"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Record.Date != "2024-02-05" || payload.Record.PunchIn != "09:00:00" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestAttendanceHandler_PunchIn_Conflict(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{punchInErr: attendance.ErrAlreadyPunchedIn}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.PunchIn(rec, identifiedRequest(http.MethodPost, "/api/v1/attendance/punch-in", ""))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAttendanceHandler_PunchIn_MissingIdentity(t *testing.T) {
	t.Parallel()

	h := NewAttendanceHandler(&stubAttendanceUseCase{}, nil)

	rec := httptest.NewRecorder()
	h.PunchIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/attendance/punch-in", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAttendanceHandler_PunchOut(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		punchOutOut: &attendance.PunchOutResult{
			Record: &attendance.Record{
				Date:         "2024-02-05",
				PunchIn:      "09:00:00",
				PunchOut:     "17:30:00",
				WorkingHours: 8.5,
			},
			WorkingHours:   8.5,
			FormattedHours: "8h 30m",
		},
	}
	h := NewAttendanceHandler(stub, nil)

	req := identifiedRequest(http.MethodPost, "/api/v1/attendance/punch-out", `{"notes":"done for today"}`)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.PunchOut(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if stub.punchOutInput.Notes != "done for today" {
		t.Errorf("expected notes to be passed through, got %q", stub.punchOutInput.Notes)
	}

	if !strings.Contains(rec.Body.String(), `"formatted_hours":"8h 30m"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAttendanceHandler_PunchOut_NoPunchIn(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{punchOutErr: attendance.ErrNoPunchInFound}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.PunchOut(rec, identifiedRequest(http.MethodPost, "/api/v1/attendance/punch-out", ""))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAttendanceHandler_Status(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		statusOut: &attendance.StatusResult{
			Status:         attendance.StatusPunchedIn,
			Record:         &attendance.Record{Date: "2024-02-05", PunchIn: "09:00:00"},
			ElapsedHours:   2.5,
			FormattedHours: "2h 30m",
		},
	}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.Status(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/status", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"punched_in"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAttendanceHandler_History_PassesRange(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{historyOut: []*attendance.HistoryEntry{}}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.History(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/history?start=2024-02-01&end=2024-02-29", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.historyInput.StartDate != "2024-02-01" || stub.historyInput.EndDate != "2024-02-29" {
		t.Fatalf("unexpected range: %+v", stub.historyInput)
	}
}

func TestAttendanceHandler_History_InvalidRange(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{historyErr: attendance.ErrInvalidDateRange}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.History(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/history?start=2024-02-29&end=2024-02-01", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAttendanceHandler_MonthlySummary_QueryParsing(t *testing.T) {
	t.Parallel()

	stub := &stubAttendanceUseCase{
		monthlyOut: &attendance.MonthlySummary{
			Summary:            attendance.Summary{StartDate: "2024-02-01", EndDate: "2024-02-29"},
			WorkingDaysInMonth: 21,
		},
	}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.MonthlySummary(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/summary/monthly?year=2024&month=2", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.monthlyInput.Year != 2024 || stub.monthlyInput.Month != 2 {
		t.Fatalf("unexpected input: %+v", stub.monthlyInput)
	}
	if !strings.Contains(rec.Body.String(), `"working_days_in_month":21`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.MonthlySummary(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/summary/monthly?year=2024&month=feb", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric month, got %d", rec.Code)
	}
}

func TestAttendanceHandler_ExportCSV(t *testing.T) {
	t.Parallel()

	csv := "\"Date\",\"Day\",\"Punch In\",\"Punch Out\",\"Working Hours\",\"Status\",\"Notes\"\n"
	stub := &stubAttendanceUseCase{exportOut: csv}
	h := NewAttendanceHandler(stub, nil)

	rec := httptest.NewRecorder()
	h.ExportCSV(rec, identifiedRequest(http.MethodGet, "/api/v1/attendance/export?start=2024-02-01&end=2024-02-29", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv; charset=utf-8" {
		t.Errorf("unexpected content type: %s", got)
	}
	if rec.Body.String() != csv {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
