package utils

import (
	"time"
)

const modificationTimeLayout = "2006-01-02 15:04:05"

// FormatModificationTime renders a modification time in the local time zone, or an empty string for the zero time.
func FormatModificationTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(modificationTimeLayout)
}
