package utils

import (
	"fmt"
	"net/url"
	"time"
)

// Calendar deep links included in approval emails. These are best-effort
// convenience outputs; nothing in the booking flow depends on them.

const googleDateFormat = "20060102T150405"

func GoogleCalendarLink(title string, start time.Time, durationMinutes int, details string) string {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	params := url.Values{}
	params.Set("action", "TEMPLATE")
	params.Set("text", title)
	params.Set("dates", fmt.Sprintf("%s/%s", start.Format(googleDateFormat), end.Format(googleDateFormat)))
	if details != "" {
		params.Set("details", details)
	}
	return "https://calendar.google.com/calendar/render?" + params.Encode()
}

func OutlookCalendarLink(title string, start time.Time, durationMinutes int, details string) string {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	params := url.Values{}
	params.Set("path", "/calendar/action/compose")
	params.Set("subject", title)
	params.Set("startdt", start.Format(time.RFC3339))
	params.Set("enddt", end.Format(time.RFC3339))
	if details != "" {
		params.Set("body", details)
	}
	return "https://outlook.live.com/calendar/0/deeplink/compose?" + params.Encode()
}
