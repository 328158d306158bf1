package timemath

import (
	"fmt"
	"math"
	"time"
)

// 日付・時刻文字列のレイアウトです。
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// HoursBetween は同一日付上の時刻文字列 start/end の差を時間単位で返します。
// end が start より前の場合は 0 に丸めます(日跨ぎのシフトは扱いません)。
func HoursBetween(start, end string) (float64, error) {
	startAt, err := time.Parse(ClockLayout, start)
	if err != nil {
		return 0, fmt.Errorf("timemath: parse start %q: %w", start, err)
	}

	endAt, err := time.Parse(ClockLayout, end)
	if err != nil {
		return 0, fmt.Errorf("timemath: parse end %q: %w", end, err)
	}

	hours := endAt.Sub(startAt).Hours()
	if hours < 0 {
		return 0, nil
	}
	return hours, nil
}

// FormatHours は時間数を人間向けのラベルに整形します。
// 分は四捨五入し、繰り上がりで 60 分になった場合は時間に繰り込みます。
func FormatHours(hours float64) string {
	if hours < 0 {
		hours = 0
	}

	whole := int(hours)
	minutes := int(math.Floor((hours-float64(whole))*60 + 0.5))
	if minutes == 60 {
		whole++
		minutes = 0
	}

	switch {
	case whole == 0:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 0 && whole == 1:
		return "1 hour"
	case minutes == 0:
		return fmt.Sprintf("%d hours", whole)
	default:
		return fmt.Sprintf("%dh %dm", whole, minutes)
	}
}

// IsWeekend は土日かどうかを判定します。
func IsWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// WorkingDaysInMonth は指定した月の平日数(土日を除いた日数)を返します。
func WorkingDaysInMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	days := 0
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			days++
		}
	}
	return days
}
