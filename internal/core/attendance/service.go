package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/timemath"
)

// Clock は現在時刻を提供します。打刻はローカル時計の意味論で扱います。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は勤怠に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	PunchIn(ctx context.Context, in PunchInInput) (*PunchInResult, error)
	PunchOut(ctx context.Context, in PunchOutInput) (*PunchOutResult, error)
	GetStatus(ctx context.Context, in GetStatusInput) (*StatusResult, error)
	GetHistory(ctx context.Context, in HistoryInput) ([]*HistoryEntry, error)
	GetWeeklySummary(ctx context.Context, in WeeklySummaryInput) (*Summary, error)
	GetMonthlySummary(ctx context.Context, in MonthlySummaryInput) (*MonthlySummary, error)
	ExportCSV(ctx context.Context, in ExportInput) (string, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// PunchInInput は出勤打刻の入力です。
type PunchInInput struct {
	Email string
}

// PunchInResult は出勤打刻の結果です。
type PunchInResult struct {
	Record *Record
}

// PunchOutInput は退勤打刻の入力です。
type PunchOutInput struct {
	Email string
	Notes string
}

// PunchOutResult は退勤打刻の結果です。
type PunchOutResult struct {
	Record         *Record
	WorkingHours   float64
	FormattedHours string
}

// GetStatusInput は当日状況照会の入力です。
type GetStatusInput struct {
	Email string
}

// StatusResult は当日状況照会の結果です。
// ElapsedHours は StatusPunchedIn のときのみ、現在時刻に対して再計算した値です。
type StatusResult struct {
	Status         Status
	Record         *Record
	ElapsedHours   float64
	FormattedHours string
}

// HistoryInput は履歴照会の入力です。日付は両端を含みます。
type HistoryInput struct {
	Email     string
	StartDate string
	EndDate   string
}

// HistoryEntry は表示向けに補完した履歴1件です。
type HistoryEntry struct {
	Record         *Record
	FormattedDate  string
	FormattedHours string
	DayLabel       string
}

// WeeklySummaryInput は週次集計の入力です。WeekStart から7日間を対象とします。
type WeeklySummaryInput struct {
	Email     string
	WeekStart string
}

// MonthlySummaryInput は月次集計の入力です。Month は 1〜12 です。
type MonthlySummaryInput struct {
	Email string
	Year  int
	Month int
}

// Summary は日付範囲に対する集計です。
type Summary struct {
	StartDate    string
	EndDate      string
	DaysPresent  int
	DaysWorked   int
	TotalHours   float64
	AverageHours float64
	Entries      []*HistoryEntry
}

// MonthlySummary は月次集計です。WorkingDaysInMonth は暦上の平日数で、
// 勤怠データには依存しません。
type MonthlySummary struct {
	Summary
	FullDays           int
	WorkingDaysInMonth int
}

// ExportInput は CSV エクスポートの入力です。
type ExportInput struct {
	Email     string
	StartDate string
	EndDate   string
}

// PunchIn は当日の出勤打刻を行います。既に出勤打刻済みの日には失敗します。
func (s *Service) PunchIn(ctx context.Context, in PunchInInput) (*PunchInResult, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	var result *PunchInResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		today := now.Format(timemath.DateLayout)

		existing, err := s.repo.FindByUserAndDate(txCtx, email, today)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return persistenceFailure("find record", err)
		}

		if existing != nil && existing.PunchIn != "" {
			return ErrAlreadyPunchedIn
		}

		punchInAt := now
		rec := &Record{
			UserEmail:    email,
			Date:         today,
			PunchIn:      now.Format(timemath.ClockLayout),
			PunchInAt:    &punchInAt,
			WorkingHours: 0,
			Notes:        "",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if existing != nil {
			rec.CreatedAt = existing.CreatedAt
		}

		saved, err := s.repo.Save(txCtx, rec)
		if err != nil {
			return persistenceFailure("save record", err)
		}

		result = &PunchInResult{Record: saved}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// PunchOut は当日の退勤打刻を行い、労働時間を確定します。
func (s *Service) PunchOut(ctx context.Context, in PunchOutInput) (*PunchOutResult, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	var result *PunchOutResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		today := now.Format(timemath.DateLayout)

		existing, err := s.repo.FindByUserAndDate(txCtx, email, today)
		if errors.Is(err, ErrRecordNotFound) {
			return ErrNoPunchInFound
		}
		if err != nil {
			return persistenceFailure("find record", err)
		}

		state, err := StateOf(existing)
		if err != nil {
			return err
		}
		if state == StateClosed {
			return ErrAlreadyPunchedOut
		}

		hours, err := timemath.HoursBetween(existing.PunchIn, now.Format(timemath.ClockLayout))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPunchInMissing, err)
		}

		punchOutAt := now
		existing.PunchOut = now.Format(timemath.ClockLayout)
		existing.PunchOutAt = &punchOutAt
		existing.WorkingHours = hours
		existing.Notes = strings.TrimSpace(in.Notes)
		existing.UpdatedAt = now

		saved, err := s.repo.Save(txCtx, existing)
		if err != nil {
			return persistenceFailure("save record", err)
		}

		result = &PunchOutResult{
			Record:         saved,
			WorkingHours:   hours,
			FormattedHours: timemath.FormatHours(hours),
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetStatus は当日の打刻状況を導出します。レコードは変更しません。
func (s *Service) GetStatus(ctx context.Context, in GetStatusInput) (*StatusResult, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	var result *StatusResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		today := now.Format(timemath.DateLayout)

		rec, err := s.repo.FindByUserAndDate(txCtx, email, today)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			// 参照系はストアの読み取り障害でエラーにせず、未打刻として扱います。
			log.Printf("attendance: status read degraded for %s: %v", email, err)
			rec = nil
		}

		state, stateErr := StateOf(rec)
		switch {
		case stateErr != nil:
			result = &StatusResult{Status: StatusUnknown, Record: cloneRecord(rec)}
		case state == StateAbsent:
			result = &StatusResult{Status: StatusNotPunchedIn}
		case state == StateOpen:
			elapsed, hoursErr := timemath.HoursBetween(rec.PunchIn, now.Format(timemath.ClockLayout))
			if hoursErr != nil {
				result = &StatusResult{Status: StatusUnknown, Record: cloneRecord(rec)}
				return nil
			}
			result = &StatusResult{
				Status:         StatusPunchedIn,
				Record:         cloneRecord(rec),
				ElapsedHours:   elapsed,
				FormattedHours: timemath.FormatHours(elapsed),
			}
		default:
			result = &StatusResult{
				Status:         StatusCompleted,
				Record:         cloneRecord(rec),
				ElapsedHours:   rec.WorkingHours,
				FormattedHours: timemath.FormatHours(rec.WorkingHours),
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// GetHistory は日付範囲内の履歴を日付降順で返します。
func (s *Service) GetHistory(ctx context.Context, in HistoryInput) ([]*HistoryEntry, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	start, end, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	var entries []*HistoryEntry
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		entries = s.historyBetween(txCtx, email, start, end)
		return nil
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetWeeklySummary は WeekStart から7日間の集計を返します。
func (s *Service) GetWeeklySummary(ctx context.Context, in WeeklySummaryInput) (*Summary, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse(timemath.DateLayout, in.WeekStart)
	if err != nil {
		return nil, fmt.Errorf("week start: %w", ErrInvalidDate)
	}
	end := start.AddDate(0, 0, 6)

	var summary *Summary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		entries := s.historyBetween(txCtx, email, start, end)
		summary = aggregate(start, end, entries)
		return nil
	}); err != nil {
		return nil, err
	}

	return summary, nil
}

// GetMonthlySummary は暦月の集計を返します。
func (s *Service) GetMonthlySummary(ctx context.Context, in MonthlySummaryInput) (*MonthlySummary, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return nil, err
	}

	if in.Year < 1 || in.Month < 1 || in.Month > 12 {
		return nil, ErrInvalidMonth
	}

	month := time.Month(in.Month)
	start := time.Date(in.Year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	var summary *MonthlySummary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		entries := s.historyBetween(txCtx, email, start, end)

		fullDays := 0
		for _, entry := range entries {
			if entry.Record.WorkingHours >= fullDayHours {
				fullDays++
			}
		}

		summary = &MonthlySummary{
			Summary:            *aggregate(start, end, entries),
			FullDays:           fullDays,
			WorkingDaysInMonth: timemath.WorkingDaysInMonth(in.Year, month),
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return summary, nil
}

// ExportCSV は日付範囲の履歴を CSV テキストとして返します。
func (s *Service) ExportCSV(ctx context.Context, in ExportInput) (string, error) {
	email, err := normalizeUserEmail(in.Email)
	if err != nil {
		return "", err
	}

	start, end, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return "", err
	}

	var out string
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		out = renderCSV(s.historyBetween(txCtx, email, start, end))
		return nil
	}); err != nil {
		return "", err
	}

	return out, nil
}

// historyBetween は範囲内のレコードを取得し、表示用に補完して日付降順で返します。
// 参照系のため、ストアの読み取り障害は空結果に縮退させます。
func (s *Service) historyBetween(ctx context.Context, email string, start, end time.Time) []*HistoryEntry {
	recs, err := s.repo.ListByUserBetween(ctx,
		email,
		start.Format(timemath.DateLayout),
		end.Format(timemath.DateLayout),
	)
	if err != nil {
		log.Printf("attendance: history read degraded for %s: %v", email, err)
		return []*HistoryEntry{}
	}

	entries := make([]*HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, enrich(rec))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Date > entries[j].Record.Date
	})

	return entries
}

func enrich(rec *Record) *HistoryEntry {
	entry := &HistoryEntry{
		Record:         cloneRecord(rec),
		FormattedHours: timemath.FormatHours(rec.WorkingHours),
		DayLabel:       DayLabel(rec),
	}

	if day, err := time.Parse(timemath.DateLayout, rec.Date); err == nil {
		entry.FormattedDate = day.Format("Monday, 02 Jan 2006")
	} else {
		entry.FormattedDate = rec.Date
	}

	return entry
}

func aggregate(start, end time.Time, entries []*HistoryEntry) *Summary {
	summary := &Summary{
		StartDate: start.Format(timemath.DateLayout),
		EndDate:   end.Format(timemath.DateLayout),
		Entries:   entries,
	}

	for _, entry := range entries {
		rec := entry.Record
		if rec.PunchIn != "" {
			summary.DaysPresent++
		}
		if rec.WorkingHours > 0 {
			summary.DaysWorked++
			summary.TotalHours += rec.WorkingHours
		}
	}

	if summary.DaysWorked > 0 {
		summary.AverageHours = summary.TotalHours / float64(summary.DaysWorked)
	}

	return summary
}

func normalizeUserEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidUser
	}
	return strings.ToLower(trimmed), nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(timemath.DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", ErrInvalidDate)
	}

	end, err := time.Parse(timemath.DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", ErrInvalidDate)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}

	return start, end, nil
}

func persistenceFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrPersistenceFailure, err)
}
