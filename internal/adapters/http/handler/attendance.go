package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/metrics"
)

// AttendanceHandler は勤怠ユースケースの HTTP アダプタです。
// 操作主体は Identity ミドルウェアが解決したメールアドレスです。
type AttendanceHandler struct {
	svc     attendance.UseCase
	metrics *metrics.Metrics
}

// NewAttendanceHandler は AttendanceHandler を生成します。metrics は nil 可です。
func NewAttendanceHandler(svc attendance.UseCase, m *metrics.Metrics) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, metrics: m}
}

// Register は勤怠系のルートを登録します。
func (h *AttendanceHandler) Register(r chi.Router) {
	r.Post("/attendance/punch-in", h.PunchIn)
	r.Post("/attendance/punch-out", h.PunchOut)
	r.Get("/attendance/status", h.Status)
	r.Get("/attendance/history", h.History)
	r.Get("/attendance/summary/weekly", h.WeeklySummary)
	r.Get("/attendance/summary/monthly", h.MonthlySummary)
	r.Get("/attendance/export", h.ExportCSV)
}

type recordPayload struct {
	Date         string     `json:"date"`
	PunchIn      string     `json:"punch_in,omitempty"`
	PunchInAt    *time.Time `json:"punch_in_at,omitempty"`
	PunchOut     string     `json:"punch_out,omitempty"`
	PunchOutAt   *time.Time `json:"punch_out_at,omitempty"`
	WorkingHours float64    `json:"working_hours"`
	Notes        string     `json:"notes,omitempty"`
}

func toRecordPayload(rec *attendance.Record) *recordPayload {
	if rec == nil {
		return nil
	}
	return &recordPayload{
		Date:         rec.Date,
		PunchIn:      rec.PunchIn,
		PunchInAt:    rec.PunchInAt,
		PunchOut:     rec.PunchOut,
		PunchOutAt:   rec.PunchOutAt,
		WorkingHours: rec.WorkingHours,
		Notes:        rec.Notes,
	}
}

type historyEntryPayload struct {
	Record         *recordPayload `json:"record"`
	FormattedDate  string         `json:"formatted_date"`
	FormattedHours string         `json:"formatted_hours"`
	DayLabel       string         `json:"day_label"`
}

func toHistoryPayload(entries []*attendance.HistoryEntry) []*historyEntryPayload {
	out := make([]*historyEntryPayload, 0, len(entries))
	for _, entry := range entries {
		out = append(out, &historyEntryPayload{
			Record:         toRecordPayload(entry.Record),
			FormattedDate:  entry.FormattedDate,
			FormattedHours: entry.FormattedHours,
			DayLabel:       entry.DayLabel,
		})
	}
	return out
}

type summaryPayload struct {
	StartDate    string                 `json:"start_date"`
	EndDate      string                 `json:"end_date"`
	DaysPresent  int                    `json:"days_present"`
	DaysWorked   int                    `json:"days_worked"`
	TotalHours   float64                `json:"total_hours"`
	AverageHours float64                `json:"average_hours"`
	Entries      []*historyEntryPayload `json:"entries"`
}

func toSummaryPayload(s *attendance.Summary) *summaryPayload {
	return &summaryPayload{
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		DaysPresent:  s.DaysPresent,
		DaysWorked:   s.DaysWorked,
		TotalHours:   s.TotalHours,
		AverageHours: s.AverageHours,
		Entries:      toHistoryPayload(s.Entries),
	}
}

func requestEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := EmailFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "user identity is not resolved"})
		return "", false
	}
	return email, true
}

// PunchIn は当日の出勤打刻を行います。
func (h *AttendanceHandler) PunchIn(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	result, err := h.svc.PunchIn(r.Context(), attendance.PunchInInput{Email: email})
	if h.metrics != nil {
		h.metrics.ObservePunch("punch_in", err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"record": toRecordPayload(result.Record),
	})
}

type punchOutRequest struct {
	Notes string `json:"notes"`
}

// PunchOut は当日の退勤打刻を行います。
func (h *AttendanceHandler) PunchOut(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	var req punchOutRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	result, err := h.svc.PunchOut(r.Context(), attendance.PunchOutInput{Email: email, Notes: req.Notes})
	if h.metrics != nil {
		h.metrics.ObservePunch("punch_out", err)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record":          toRecordPayload(result.Record),
		"working_hours":   result.WorkingHours,
		"formatted_hours": result.FormattedHours,
	})
}

// Status は当日の打刻状況を返します。
func (h *AttendanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetStatus(r.Context(), attendance.GetStatusInput{Email: email})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          result.Status,
		"record":          toRecordPayload(result.Record),
		"elapsed_hours":   result.ElapsedHours,
		"formatted_hours": result.FormattedHours,
	})
}

// History は日付範囲の履歴を返します。
func (h *AttendanceHandler) History(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	entries, err := h.svc.GetHistory(r.Context(), attendance.HistoryInput{
		Email:     email,
		StartDate: r.URL.Query().Get("start"),
		EndDate:   r.URL.Query().Get("end"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": toHistoryPayload(entries),
	})
}

// WeeklySummary は week_start から7日間の集計を返します。
func (h *AttendanceHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.GetWeeklySummary(r.Context(), attendance.WeeklySummaryInput{
		Email:     email,
		WeekStart: r.URL.Query().Get("week_start"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}

// MonthlySummary は暦月の集計を返します。
func (h *AttendanceHandler) MonthlySummary(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "year must be an integer"})
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be an integer"})
		return
	}

	summary, err := h.svc.GetMonthlySummary(r.Context(), attendance.MonthlySummaryInput{
		Email: email,
		Year:  year,
		Month: month,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"start_date":            summary.StartDate,
		"end_date":              summary.EndDate,
		"days_present":          summary.DaysPresent,
		"days_worked":           summary.DaysWorked,
		"total_hours":           summary.TotalHours,
		"average_hours":         summary.AverageHours,
		"full_days":             summary.FullDays,
		"working_days_in_month": summary.WorkingDaysInMonth,
		"entries":               toHistoryPayload(summary.Entries),
	})
}

// ExportCSV は日付範囲の履歴を CSV でダウンロードさせます。
func (h *AttendanceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	email, ok := requestEmail(w, r)
	if !ok {
		return
	}

	out, err := h.svc.ExportCSV(r.Context(), attendance.ExportInput{
		Email:     email,
		StartDate: r.URL.Query().Get("start"),
		EndDate:   r.URL.Query().Get("end"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
