package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/timemath"
)

// csvHeader はエクスポートのヘッダ行です。順序と表記は固定です。
const csvHeader = `"Date","Day","Punch In","Punch Out","Working Hours","Status","Notes"`

// renderCSV は履歴を CSV テキストに整形します。全フィールドを引用符で囲み、
// 未打刻の時刻は空文字列で出力します。
func renderCSV(entries []*HistoryEntry) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")

	for _, entry := range entries {
		rec := entry.Record

		dayName := ""
		if day, err := time.Parse(timemath.DateLayout, rec.Date); err == nil {
			dayName = day.Weekday().String()
		}

		fields := []string{
			rec.Date,
			dayName,
			rec.PunchIn,
			rec.PunchOut,
			fmt.Sprintf("%.2f", rec.WorkingHours),
			entry.DayLabel,
			rec.Notes,
		}

		quoted := make([]string, 0, len(fields))
		for _, f := range fields {
			quoted = append(quoted, quoteCSVField(f))
		}

		b.WriteString(strings.Join(quoted, ","))
		b.WriteString("\n")
	}

	return b.String()
}

// quoteCSVField は値を二重引用符で囲みます。内部の引用符は二重化します。
// encoding/csv は必要な場合しか引用しないため、全列引用の出力には使えません。
func quoteCSVField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
