package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
)

const (
	createAttendanceTableSQL = `
  CREATE TABLE IF NOT EXISTS attendance_records (
  id TEXT PRIMARY KEY,
  user_email TEXT NOT NULL,
  date TEXT NOT NULL,
  punch_in TEXT,
  punch_in_at DATETIME,
  punch_out TEXT,
  punch_out_at DATETIME,
  working_hours REAL NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL,
  UNIQUE (user_email, date)
  )`

	upsertAttendanceSQL = `
  INSERT INTO attendance_records (id, user_email, date, punch_in, punch_in_at, punch_out, punch_out_at, working_hours, notes, created_at, updated_at)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
  ON CONFLICT (user_email, date) DO UPDATE SET
    punch_in = excluded.punch_in,
    punch_in_at = excluded.punch_in_at,
    punch_out = excluded.punch_out,
    punch_out_at = excluded.punch_out_at,
    working_hours = excluded.working_hours,
    notes = excluded.notes,
    updated_at = excluded.updated_at`

	findAttendanceSQL = `
  SELECT user_email, date, punch_in, punch_in_at, punch_out, punch_out_at, working_hours, notes, created_at, updated_at
    FROM attendance_records
   WHERE user_email = ? AND date = ?
   LIMIT 1`

	listAttendanceSQL = `
  SELECT user_email, date, punch_in, punch_in_at, punch_out, punch_out_at, working_hours, notes, created_at, updated_at
    FROM attendance_records
   WHERE user_email = ? AND date BETWEEN ? AND ?
   ORDER BY date DESC`
)

// AttendanceRepository は SQLite を利用した勤怠レコード永続化の実装です。
// スタンドアロンの CLI が使うローカルストアです。
type AttendanceRepository struct {
	db *sql.DB
}

// Open はデータベースファイルを開き、必要ならスキーマを作成します。
func Open(dbPath string) (*AttendanceRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping database: %w", err)
	}

	if _, err := db.Exec(createAttendanceTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}

	return &AttendanceRepository{db: db}, nil
}

// Close はデータベースを閉じます。
func (r *AttendanceRepository) Close() error {
	return r.db.Close()
}

// Save は (user_email, date) をキーとして upsert します。
func (r *AttendanceRepository) Save(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	_, err := r.db.ExecContext(ctx, upsertAttendanceSQL,
		uuid.NewString(),
		rec.UserEmail,
		rec.Date,
		nullString(rec.PunchIn),
		nullTime(rec.PunchInAt),
		nullString(rec.PunchOut),
		nullTime(rec.PunchOutAt),
		rec.WorkingHours,
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: save record: %w", err)
	}

	return r.FindByUserAndDate(ctx, rec.UserEmail, rec.Date)
}

// FindByUserAndDate は該当日のレコードを取得します。
func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, email, date string) (*attendance.Record, error) {
	row := r.db.QueryRowContext(ctx, findAttendanceSQL, email, date)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, attendance.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find record: %w", err)
	}
	return rec, nil
}

// ListByUserBetween は両端を含む日付範囲のレコードを日付降順で返します。
func (r *AttendanceRepository) ListByUserBetween(ctx context.Context, email, startDate, endDate string) ([]*attendance.Record, error) {
	rows, err := r.db.QueryContext(ctx, listAttendanceSQL, email, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list records: %w", err)
	}
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate records: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*attendance.Record, error) {
	var (
		rec        attendance.Record
		punchIn    sql.NullString
		punchInAt  sql.NullTime
		punchOut   sql.NullString
		punchOutAt sql.NullTime
	)

	if err := row.Scan(
		&rec.UserEmail,
		&rec.Date,
		&punchIn,
		&punchInAt,
		&punchOut,
		&punchOutAt,
		&rec.WorkingHours,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.PunchIn = punchIn.String
	rec.PunchOut = punchOut.String
	if punchInAt.Valid {
		at := punchInAt.Time
		rec.PunchInAt = &at
	}
	if punchOutAt.Valid {
		at := punchOutAt.Time
		rec.PunchOutAt = &at
	}

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
