package calendar

import (
	"sort"
	"time"

	gcal "google.golang.org/api/calendar/v3"
)

const (
	defaultColor   = "#3b82f6"
	allDayLabel    = "All day"
	longDateLayout = "Monday, 2. January"
)

// CalendarInfo describes one calendar visible to the account.
type CalendarInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Primary bool   `json:"primary"`
}

// Event is the normalized record handed to the widget. All fields are
// display-ready; the identity is the provider's event id plus the source
// calendar name.
type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	TimeRange     string `json:"time_range"`
	DateFormatted string `json:"date_formatted"`
	Color         string `json:"color"`
	Calendar      string `json:"calendar"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	IsAllDay      bool   `json:"is_all_day"`
}

// normalizeEvent converts a provider event into a display record, using
// cal for color and source-calendar name. An event without a parseable
// start becomes an "All day"/"Unknown" placeholder on the current date
// rather than failing the fetch.
func normalizeEvent(item *gcal.Event, cal CalendarInfo, now time.Time) Event {
	event := Event{
		ID:       item.Id,
		Title:    item.Summary,
		Color:    cal.Color,
		Calendar: cal.Name,
	}
	if event.Title == "" {
		event.Title = "(No title)"
	}
	if item.Location != "" {
		event.Location = item.Location
	}
	if item.Description != "" {
		event.Description = item.Description
	}

	event.Date, event.Time, event.TimeRange, event.DateFormatted, event.IsAllDay = normalizeEventTime(item, now)
	return event
}

// normalizeEventTime derives the display date/time fields from the raw
// start and end. A timed event is converted to the local time zone; an
// all-day event keeps its bare calendar date.
func normalizeEventTime(item *gcal.Event, now time.Time) (date, timeOfDay, timeRange, dateFormatted string, isAllDay bool) {
	if item.Start != nil {
		if item.Start.Date != "" {
			// All-day event: date only, no time component.
			dateFormatted = formatDateString(item.Start.Date)
			return item.Start.Date, allDayLabel, allDayLabel, dateFormatted, true
		}

		if item.Start.DateTime != "" {
			if start, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				local := start.Local()
				date = local.Format("2006-01-02")
				timeOfDay = local.Format("15:04")
				dateFormatted = local.Format(longDateLayout)
				timeRange = timeOfDay

				if item.End != nil && item.End.DateTime != "" {
					if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
						timeRange = local.Format("15:04") + " - " + end.Local().Format("15:04")
					}
				}

				return date, timeOfDay, timeRange, dateFormatted, false
			}
		}
	}

	// No parseable start: placeholder on the current date.
	return now.Format("2006-01-02"), allDayLabel, allDayLabel, "Unknown", true
}

// formatDateString renders a bare YYYY-MM-DD date long-form, falling back
// to the raw string when it does not parse.
func formatDateString(dateStr string) string {
	if date, err := time.Parse("2006-01-02", dateStr); err == nil {
		return date.Format(longDateLayout)
	}
	return dateStr
}

// sortEvents orders the merged result: date ascending, all-day events
// before timed events within a date, then time ascending.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.IsAllDay != b.IsAllDay {
			return a.IsAllDay
		}
		return a.Time < b.Time
	})
}
