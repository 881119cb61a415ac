package utils

import (
	"fmt"
	"time"
)

// TimeToMinutes converts a 24h "HH:MM" clock string to minutes since
// midnight. Input shape is validated at the request boundary before any
// booking or slot math runs, so a malformed string maps to 00:00 here.
func TimeToMinutes(hhmm string) int {
	t, _ := time.Parse("15:04", hhmm)
	return t.Hour()*60 + t.Minute()
}

// MinutesToTime formats minutes since midnight as a zero-padded "HH:MM"
// string. Values past 24h wrap the hour without carrying into a new date;
// sessions are assumed never to cross midnight.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", (minutes/60)%24, minutes%60)
}

// SessionEndTime derives the end of a session from its start time and
// duration in minutes. It is computed on demand and never stored.
func SessionEndTime(startTime string, durationMinutes int) string {
	return MinutesToTime(TimeToMinutes(startTime) + durationMinutes)
}

// CombineDateTime anchors an "HH:MM" clock time onto a calendar date,
// producing the absolute instant the session starts.
func CombineDateTime(date time.Time, hhmm string) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.Add(time.Duration(TimeToMinutes(hhmm)) * time.Minute)
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
