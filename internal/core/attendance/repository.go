package attendance

import "context"

// Repository は勤怠レコード永続化の抽象です。
// (ユーザー, 日付) の組につきレコードは高々1件です。
type Repository interface {
	// Save は (UserEmail, Date) をキーとして upsert します。
	Save(ctx context.Context, rec *Record) (*Record, error)
	// FindByUserAndDate は該当レコードを返します。不在時は ErrRecordNotFound です。
	FindByUserAndDate(ctx context.Context, email, date string) (*Record, error)
	// ListByUserBetween は両端を含む日付範囲のレコードを日付降順で返します。
	ListByUserBetween(ctx context.Context, email, startDate, endDate string) ([]*Record, error)
}
