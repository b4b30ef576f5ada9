package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Add1ct1ve/CalWid/internal/logger"
)

// TokenProvider supplies a usable access token, once per fetch.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Fetcher lists all visible calendars and aggregates their events into a
// normalized, sorted slice. Per-calendar failures are skipped; a token
// failure aborts the whole fetch.
type Fetcher struct {
	tokens   TokenProvider
	endpoint string // base URL override for tests; empty means production
}

// NewFetcher creates an events fetcher backed by the given token provider.
func NewFetcher(tokens TokenProvider) *Fetcher {
	return &Fetcher{tokens: tokens}
}

// WithEndpoint points the fetcher at a different API base URL.
func (f *Fetcher) WithEndpoint(endpoint string) *Fetcher {
	f.endpoint = endpoint
	return f
}

// staticTokenSource obtains the access token once and wraps it for the
// generated client.
func staticTokenSource(ctx context.Context, tokens TokenProvider) (oauth2.TokenSource, error) {
	accessToken, err := tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}), nil
}

func (f *Fetcher) service(ctx context.Context) (*gcal.Service, error) {
	tokenSource, err := staticTokenSource(ctx, f.tokens)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithTokenSource(tokenSource)}
	if f.endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.endpoint))
	}

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListCalendars pages through the account's calendar list, following the
// next-page token until absent.
func (f *Fetcher) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, err
	}
	return listCalendars(ctx, svc)
}

func listCalendars(ctx context.Context, svc *gcal.Service) ([]CalendarInfo, error) {
	var calendars []CalendarInfo
	pageToken := ""

	for {
		call := svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendars: %w", err)
		}

		for _, item := range page.Items {
			info := CalendarInfo{
				ID:      item.Id,
				Name:    item.Summary,
				Color:   item.BackgroundColor,
				Primary: item.Primary,
			}
			if info.Name == "" {
				info.Name = "Unnamed"
			}
			if info.Color == "" {
				info.Color = defaultColor
			}
			calendars = append(calendars, info)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return calendars, nil
}

// Fetch returns all events from the beginning of the current week (Monday
// 00:00 local) through now+days, recurring events expanded, merged across
// calendars and sorted for display. Calendars that fail to fetch are
// logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, days int) ([]Event, error) {
	svc, err := f.service(ctx)
	if err != nil {
		return nil, err
	}

	calendars, err := listCalendars(ctx, svc)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	timeMin, timeMax := eventWindow(now, days)

	var allEvents []Event
	for _, cal := range calendars {
		page, err := svc.Events.List(cal.ID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			logger.Warn("failed to fetch events from calendar", "calendar", cal.Name, "error", err)
			continue
		}

		for _, item := range page.Items {
			allEvents = append(allEvents, normalizeEvent(item, cal, now))
		}
		logger.Debug("fetched events", "calendar", cal.Name, "count", len(page.Items))
	}

	sortEvents(allEvents)
	logger.Info("events aggregated", "calendars", len(calendars), "events", len(allEvents))
	return allEvents, nil
}

// eventWindow computes the fetch window: Monday 00:00 local of the current
// week through the end of the day days past now.
func eventWindow(now time.Time, days int) (time.Time, time.Time) {
	local := now.Local()

	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	sinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()).
		AddDate(0, 0, -sinceMonday)

	horizon := local.AddDate(0, 0, days)
	end := time.Date(horizon.Year(), horizon.Month(), horizon.Day(), 23, 59, 59, 0, local.Location())

	return monday, end
}
