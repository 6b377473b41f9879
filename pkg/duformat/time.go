package duformat

import (
	"fmt"
	"time"
)

// dateTimeLayout matches QDirStat's locale-neutral "yyyy-MM-dd hh:mm:ss"
// rendering of a timestamp.
const dateTimeLayout = "2006-01-02 15:04:05"

// Time formats a timestamp the way the latest-mtime column displays it.
func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

// Milliseconds formats a duration given in milliseconds as seconds with
// three digits of sub-second precision, e.g. "3.140s", used for reporting
// scan elapsed time.
func Milliseconds(millis int64, showSubsecond bool) string {
	seconds := float64(millis) / 1000
	if showSubsecond {
		return fmt.Sprintf("%.3fs", seconds)
	}
	return time.Duration(millis*int64(time.Millisecond)).Round(time.Second).String()
}
