package util

import (
	"fmt"
	"time"
)

var timeFormat = "%02d-%02d-%d %02d:%02d:%02d"
var timeMsFormat = "%02d-%02d-%d %02d:%02d:%02d.%06d"

func TimeToStr(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf(
		timeFormat,
		u.Day(),
		u.Month(),
		u.Year(),
		u.Hour(),
		u.Minute(),
		u.Second())
}

func TimeMsToStr(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf(
		timeMsFormat,
		u.Day(),
		u.Month(),
		u.Year(),
		u.Hour(),
		u.Minute(),
		u.Second(),
		u.Nanosecond()/1000)
}

// DurationToStr renders d as m:ss.mmm, the way stream lengths are listed.
func DurationToStr(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}

// TicksToDuration converts a count of 8 kHz media clock ticks to a duration.
func TicksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks) * time.Second / 8000
}
