package analytics

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// PriorMonthKey returns the YYYY-MM key of the month before t. Financial
// summaries always price production against the previous month's snapshots.
func PriorMonthKey(t time.Time) string {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthKey(firstOfMonth.AddDate(0, 0, -1))
}

// WeekKey formats t as <isoYear>-W<isoWeek>.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// QuarterKey formats t as Q<n> <year>.
func QuarterKey(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%d %d", quarter, t.Year())
}

// DayKey formats t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}
