package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogurasousui/codex-attendance-clean-arch/internal/adapters/repository/sqlite"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/attendance"
	"github.com/ogurasousui/codex-attendance-clean-arch/internal/core/timemath"
)

// app は CLI の実行状態を保持します。サブコマンド間で共有します。
type app struct {
	userEmail string
	dbPath    string

	repo *sqlite.AttendanceRepository
	svc  *attendance.Service
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "kintai",
		Short:         "ローカルの SQLite に打刻を記録する勤怠 CLI です",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.userEmail == "" {
				a.userEmail = os.Getenv("KINTAI_USER")
			}
			if a.userEmail == "" {
				return fmt.Errorf("user email is required (--user flag or KINTAI_USER env)")
			}

			repo, err := sqlite.Open(a.dbPath)
			if err != nil {
				return err
			}
			a.repo = repo
			a.svc = attendance.NewService(repo, nil, nil)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.repo == nil {
				return nil
			}
			return a.repo.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.userEmail, "user", "", "user email (defaults to KINTAI_USER env)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDBPath(), "path to the SQLite database file")

	root.AddCommand(
		newPunchInCommand(a),
		newPunchOutCommand(a),
		newStatusCommand(a),
		newHistoryCommand(a),
		newWeekCommand(a),
		newMonthCommand(a),
		newExportCommand(a),
	)

	return root
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kintai.db"
	}
	return filepath.Join(home, ".kintai", "kintai.db")
}

func newPunchInCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "in",
		Short: "当日の出勤を打刻します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.svc.PunchIn(cmd.Context(), attendance.PunchInInput{Email: a.userEmail})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Punched in at %s on %s\n", result.Record.PunchIn, result.Record.Date)
			return nil
		},
	}
}

func newPunchOutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "out [notes...]",
		Short: "当日の退勤を打刻し、労働時間を表示します",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.PunchOut(cmd.Context(), attendance.PunchOutInput{
				Email: a.userEmail,
				Notes: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Punched out at %s on %s (worked %s)\n",
				result.Record.PunchOut, result.Record.Date, result.FormattedHours)
			return nil
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "当日の打刻状況を表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.svc.GetStatus(cmd.Context(), attendance.GetStatusInput{Email: a.userEmail})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.Status {
			case attendance.StatusNotPunchedIn:
				fmt.Fprintln(out, "Not punched in yet")
			case attendance.StatusPunchedIn:
				fmt.Fprintf(out, "Punched in at %s (elapsed %s)\n", result.Record.PunchIn, result.FormattedHours)
			case attendance.StatusCompleted:
				fmt.Fprintf(out, "Completed: %s - %s (worked %s)\n",
					result.Record.PunchIn, result.Record.PunchOut, result.FormattedHours)
			default:
				fmt.Fprintln(out, "Status unknown: the record for today looks inconsistent")
			}
			return nil
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "日付範囲の勤怠履歴を表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.svc.GetHistory(cmd.Context(), attendance.HistoryInput{
				Email:     a.userEmail,
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No records in range")
				return nil
			}
			for _, entry := range entries {
				printHistoryEntry(out, entry)
			}
			return nil
		},
	}

	start, end := defaultHistoryRange(time.Now())
	cmd.Flags().StringVar(&startDate, "start", start, "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&endDate, "end", end, "end date (YYYY-MM-DD, inclusive)")

	return cmd
}

func newWeekCommand(a *app) *cobra.Command {
	var weekStart string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "週次集計を表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.svc.GetWeeklySummary(cmd.Context(), attendance.WeeklySummaryInput{
				Email:     a.userEmail,
				WeekStart: weekStart,
			})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&weekStart, "start", mostRecentMonday(time.Now()), "week start date (YYYY-MM-DD)")

	return cmd
}

func newMonthCommand(a *app) *cobra.Command {
	now := time.Now()
	var year, month int

	cmd := &cobra.Command{
		Use:   "month",
		Short: "月次集計を表示します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.svc.GetMonthlySummary(cmd.Context(), attendance.MonthlySummaryInput{
				Email: a.userEmail,
				Year:  year,
				Month: month,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, &summary.Summary)
			fmt.Fprintf(out, "  Full days:      %d\n", summary.FullDays)
			fmt.Fprintf(out, "  Working days:   %d\n", summary.WorkingDaysInMonth)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", now.Year(), "target year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "target month (1-12)")

	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var startDate, endDate, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "日付範囲の履歴を CSV で出力します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			csv, err := a.svc.ExportCSV(cmd.Context(), attendance.ExportInput{
				Email:     a.userEmail,
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), csv)
				return nil
			}

			if err := os.WriteFile(output, []byte(csv), 0o644); err != nil {
				return fmt.Errorf("write csv file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}

	start, end := defaultHistoryRange(time.Now())
	cmd.Flags().StringVar(&startDate, "start", start, "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&endDate, "end", end, "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to a file instead of stdout")

	return cmd
}

func printHistoryEntry(out io.Writer, entry *attendance.HistoryEntry) {
	rec := entry.Record
	punchIn := rec.PunchIn
	if punchIn == "" {
		punchIn = "-"
	}
	punchOut := rec.PunchOut
	if punchOut == "" {
		punchOut = "-"
	}

	fmt.Fprintf(out, "%s  %-8s -> %-8s  %-7s  %s\n",
		entry.FormattedDate, punchIn, punchOut, entry.FormattedHours, entry.DayLabel)
	if rec.Notes != "" {
		fmt.Fprintf(out, "    Notes: %s\n", rec.Notes)
	}
}

func printSummary(out io.Writer, summary *attendance.Summary) {
	fmt.Fprintf(out, "Summary %s - %s\n", summary.StartDate, summary.EndDate)
	fmt.Fprintf(out, "  Days present:   %d\n", summary.DaysPresent)
	fmt.Fprintf(out, "  Days worked:    %d\n", summary.DaysWorked)
	fmt.Fprintf(out, "  Total hours:    %s\n", timemath.FormatHours(summary.TotalHours))
	fmt.Fprintf(out, "  Average hours:  %s\n", timemath.FormatHours(summary.AverageHours))
}

// defaultHistoryRange は当日を含む直近30日間を返します。
func defaultHistoryRange(now time.Time) (string, string) {
	end := now
	start := now.AddDate(0, 0, -29)
	return start.Format(timemath.DateLayout), end.Format(timemath.DateLayout)
}

func mostRecentMonday(now time.Time) string {
	offset := (int(now.Weekday()) + 6) % 7
	return now.AddDate(0, 0, -offset).Format(timemath.DateLayout)
}
