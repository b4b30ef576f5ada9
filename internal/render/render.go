package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Add1ct1ve/CalWid/internal/snapshot"
)

// Formatter renders a snapshot for terminal consumption.
type Formatter struct {
	showLocation bool
	showCalendar bool
}

// NewFormatter creates a text formatter with locations and calendar
// attribution shown.
func NewFormatter() *Formatter {
	return &Formatter{
		showLocation: true,
		showCalendar: true,
	}
}

func (f *Formatter) SetShowLocation(show bool) {
	f.showLocation = show
}

func (f *Formatter) SetShowCalendar(show bool) {
	f.showCalendar = show
}

// FormatText renders the snapshot as plain text: events grouped under
// their date headers in the order they already carry, then the task
// checklist.
func (f *Formatter) FormatText(snap *snapshot.Snapshot) string {
	var lines []string

	lines = append(lines, f.formatEvents(snap)...)
	lines = append(lines, "")
	lines = append(lines, f.formatTasks(snap)...)

	return strings.Join(lines, "\n")
}

func (f *Formatter) formatEvents(snap *snapshot.Snapshot) []string {
	header := fmt.Sprintf("Events (%d)", len(snap.Events))
	lines := []string{header, strings.Repeat("━", len(header))}

	if len(snap.Events) == 0 {
		lines = append(lines, "No events")
		return lines
	}

	lastDate := ""
	for _, event := range snap.Events {
		if event.Date != lastDate {
			if lastDate != "" {
				lines = append(lines, "")
			}
			lines = append(lines, event.DateFormatted)
			lastDate = event.Date
		}

		eventLine := fmt.Sprintf("  %-13s %s", event.TimeRange, event.Title)
		if f.showCalendar && event.Calendar != "" {
			eventLine += fmt.Sprintf("  [%s]", event.Calendar)
		}
		lines = append(lines, eventLine)

		if f.showLocation && event.Location != "" {
			lines = append(lines, fmt.Sprintf("                @ %s", event.Location))
		}
	}

	return lines
}

func (f *Formatter) formatTasks(snap *snapshot.Snapshot) []string {
	header := fmt.Sprintf("Tasks (%d)", len(snap.Tasks))
	lines := []string{header, strings.Repeat("━", len(header))}

	if len(snap.Tasks) == 0 {
		lines = append(lines, "No open tasks")
		return lines
	}

	for _, task := range snap.Tasks {
		box := "[ ]"
		if task.Completed {
			box = "[x]"
		}
		lines = append(lines, fmt.Sprintf("  %s %s", box, task.Title))
	}

	return lines
}

// FormatJSON renders the snapshot as indented JSON.
func FormatJSON(snap *snapshot.Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return string(data), nil
}
