package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	pgdb "github.com/ogurasousui/codex-attendance-clean-arch/internal/platform/db/postgres"
)

// AttendanceRepository は PostgreSQL を利用した勤怠レコード永続化の実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `user_email, date::text, punch_in, punch_in_at, punch_out, punch_out_at, working_hours, notes, created_at, updated_at`

// Save は (user_email, date) をキーとして upsert します。
// 一意制約が「1ユーザー1日1レコード」の不変条件をストア側でも守ります。
func (r *AttendanceRepository) Save(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendance_records (user_email, date, punch_in, punch_in_at, punch_out, punch_out_at, working_hours, notes, created_at, updated_at)
        VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (user_email, date) DO UPDATE
           SET punch_in = EXCLUDED.punch_in,
               punch_in_at = EXCLUDED.punch_in_at,
               punch_out = EXCLUDED.punch_out,
               punch_out_at = EXCLUDED.punch_out_at,
               working_hours = EXCLUDED.working_hours,
               notes = EXCLUDED.notes,
               updated_at = EXCLUDED.updated_at
        RETURNING `+attendanceColumns+`
    `,
		rec.UserEmail,
		rec.Date,
		nullableString(rec.PunchIn),
		rec.PunchInAt,
		nullableString(rec.PunchOut),
		rec.PunchOutAt,
		rec.WorkingHours,
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	return scanAttendanceRecord(row)
}

// FindByUserAndDate は該当日のレコードを取得します。
func (r *AttendanceRepository) FindByUserAndDate(ctx context.Context, email, date string) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance_records
         WHERE user_email = $1
           AND date = $2::date
         LIMIT 1
    `, email, date)

	return scanAttendanceRecord(row)
}

// ListByUserBetween は両端を含む日付範囲のレコードを日付降順で返します。
func (r *AttendanceRepository) ListByUserBetween(ctx context.Context, email, startDate, endDate string) ([]*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance_records
         WHERE user_email = $1
           AND date BETWEEN $2::date AND $3::date
         ORDER BY date DESC
    `, email, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		rec, err := scanAttendanceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendanceRecord(row rowScanner) (*attendance.Record, error) {
	var (
		rec      attendance.Record
		punchIn  *string
		punchOut *string
	)

	if err := row.Scan(
		&rec.UserEmail,
		&rec.Date,
		&punchIn,
		&rec.PunchInAt,
		&punchOut,
		&rec.PunchOutAt,
		&rec.WorkingHours,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}

	if punchIn != nil {
		rec.PunchIn = *punchIn
	}
	if punchOut != nil {
		rec.PunchOut = *punchOut
	}

	return &rec, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
