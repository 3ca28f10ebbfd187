package exporter

import (
	"fmt"
	"time"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatDate formats a calendar date as YYYY-MM-DD
func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// formatMonth formats the month of a date as YYYY-MM
func formatMonth(t time.Time) string {
	return t.Format("2006-01")
}

// Month marks a time value that only carries a calendar month
type Month time.Time

// formatCell renders a typed table cell for CSV output
func formatCell(v interface{}) string {
	switch c := v.(type) {
	case string:
		return c
	case int:
		return formatInt(int64(c))
	case int64:
		return formatInt(c)
	case float64:
		return formatFloat(c)
	case bool:
		return formatBool(c)
	case time.Time:
		return formatDate(c)
	case Month:
		return formatMonth(time.Time(c))
	case time.Duration:
		return formatFloat(c.Minutes())
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
