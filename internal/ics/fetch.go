// Package ics reads iCalendar feeds (URLs or local files) and turns their
// events into raw records for the tracker.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// ErrSourceUnavailable is returned when a feed cannot be read.
var ErrSourceUnavailable = errors.New("ics: source unavailable")

// Fetcher loads iCalendar feeds.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a 15 second
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Events loads source and returns the records of every event instance that
// overlaps [from, to). Recurring events are expanded.
func (f *Fetcher) Events(ctx context.Context, source string, from, to time.Time) ([]timetrack.Record, error) {
	body, err := f.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	events, err := parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", redactURL(source), err)
	}
	records := expand(events, from, to)

	log.WithFields(log.Fields{
		"source": redactURL(source),
		"events": len(events),
		"count":  len(records),
	}).Debug("expanded ics events")
	return records, nil
}

// Load returns the raw feed. Sources starting with http://, https:// or
// webcal:// are downloaded, anything else is read from disk.
func (f *Fetcher) Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "webcal://"):
		return f.download(ctx, "https://"+strings.TrimPrefix(source, "webcal://"))
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return f.download(ctx, source)
	}

	data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, redactURL(url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrSourceUnavailable, redactURL(url), resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, redactURL(url), err)
	}
	return body, nil
}

// redactURL drops the path and query of a feed URL, which often embed a
// private token. File paths are returned unchanged.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 || strings.HasPrefix(u, "file://") {
		return u
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j != -1 {
		return u[:i+3] + rest[:j] + "/..."
	}
	return u
}
