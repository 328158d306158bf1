package attendance

import "time"

// Record は1ユーザー・1日付の勤怠レコードです。
// Date は YYYY-MM-DD、打刻時刻は HH:MM:SS の壁時計文字列で保持します。
type Record struct {
	UserEmail    string
	Date         string
	PunchIn      string
	PunchInAt    *time.Time
	PunchOut     string
	PunchOutAt   *time.Time
	WorkingHours float64
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DayState は1日分の打刻状態です。レコード不在は StateAbsent として扱います。
type DayState int

const (
	StateAbsent DayState = iota
	StateOpen
	StateClosed
)

// StateOf はレコードから DayState を導出します。
// 出勤打刻を欠いたままレコードが存在する場合はストア破損とみなし
// ErrPunchInMissing を返します(通常の遷移では到達しません)。
func StateOf(rec *Record) (DayState, error) {
	switch {
	case rec == nil:
		return StateAbsent, nil
	case rec.PunchIn == "":
		return StateAbsent, ErrPunchInMissing
	case rec.PunchOut == "":
		return StateOpen, nil
	default:
		return StateClosed, nil
	}
}

// Status は「今日」のレコードに対する打刻状況のビューです。永続化はしません。
type Status string

const (
	StatusNotPunchedIn Status = "not_punched_in"
	StatusPunchedIn    Status = "punched_in"
	StatusCompleted    Status = "completed"
	StatusUnknown      Status = "unknown"
)

// 日次レコードに付与するラベルです。
const (
	LabelNoPunchIn       = "No Punch In"
	LabelMissingPunchOut = "Missing Punch Out"
	LabelShortDay        = "Short Day"
	LabelFullDay         = "Full Day"
	LabelPartialDay      = "Partial Day"
)

const (
	shortDayHours = 4.0
	fullDayHours  = 8.0
)

// DayLabel はレコードの日次ラベルを導出します。
func DayLabel(rec *Record) string {
	switch {
	case rec == nil || rec.PunchIn == "":
		return LabelNoPunchIn
	case rec.PunchOut == "":
		return LabelMissingPunchOut
	case rec.WorkingHours < shortDayHours:
		return LabelShortDay
	case rec.WorkingHours >= fullDayHours:
		return LabelFullDay
	default:
		return LabelPartialDay
	}
}

func cloneRecord(rec *Record) *Record {
	if rec == nil {
		return nil
	}
	clone := *rec
	clone.PunchInAt = cloneTime(rec.PunchInAt)
	clone.PunchOutAt = cloneTime(rec.PunchOutAt)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
