package gcal

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// pageSize is the largest page the events endpoint accepts.
const pageSize = 2500

// Client reads calendars and events from the Google Calendar API.
type Client struct {
	service *calendar.Service
}

// NewClient creates a Client. Pass option.WithHTTPClient with the client
// returned by Authenticate.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create calendar client: %w", err)
	}
	return &Client{service: service}, nil
}

// CalendarItem is one entry of the user's calendar list.
type CalendarItem struct {
	ID      string
	Summary string
	Primary bool
}

// Calendars lists every calendar the user has subscribed to.
func (c *Client) Calendars(ctx context.Context) ([]CalendarItem, error) {
	var items []CalendarItem
	err := c.service.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, entry := range page.Items {
			items = append(items, CalendarItem{
				ID:      entry.Id,
				Summary: entry.Summary,
				Primary: entry.Primary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendars: %w", err)
	}
	return items, nil
}

// Events returns the events of calendarID starting in [from, to). Recurring
// events are expanded into single instances and every page is fetched.
func (c *Client) Events(ctx context.Context, calendarID string, from, to time.Time) ([]timetrack.Record, error) {
	var records []timetrack.Record
	call := c.service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			records = append(records, toRecord(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar %s: %w", calendarID, err)
	}

	log.WithFields(log.Fields{
		"calendar": calendarID,
		"from":     from.Format(time.RFC3339),
		"to":       to.Format(time.RFC3339),
		"count":    len(records),
	}).Debug("fetched google calendar events")
	return records, nil
}

func toRecord(item *calendar.Event) timetrack.Record {
	r := timetrack.Record{ID: item.Id}
	if item.Summary != "" {
		s := item.Summary
		r.Summary = &s
	}
	if item.Start != nil {
		r.Start = timetrack.EventTime{Date: item.Start.Date, DateTime: item.Start.DateTime}
	}
	if item.End != nil {
		r.End = timetrack.EventTime{Date: item.End.Date, DateTime: item.End.DateTime}
	}
	return r
}
