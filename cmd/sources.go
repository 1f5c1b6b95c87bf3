package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/Tiliavir/timetrack/internal/config"
	"github.com/Tiliavir/timetrack/internal/gcal"
	"github.com/Tiliavir/timetrack/internal/ics"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

const noCalendarsMsg = "No calendars configured. Add calendar IDs to the working and tracked lists in the config file."

// calendarSource is one configured calendar and the kind its events count as.
type calendarSource struct {
	ID   string
	Kind timetrack.Kind
	ICS  bool
}

func (s calendarSource) String() string {
	if s.ICS {
		return "ics " + s.ID
	}
	return "google " + s.ID
}

// configuredSources lists working calendars before tracked ones.
func configuredSources(c config.Config) []calendarSource {
	var out []calendarSource
	add := func(ids []string, kind timetrack.Kind, isICS bool) {
		for _, id := range ids {
			out = append(out, calendarSource{ID: id, Kind: kind, ICS: isICS})
		}
	}
	add(c.Calendars.Working, timetrack.Working, false)
	add(c.ICS.Working, timetrack.Working, true)
	add(c.Calendars.Tracked, timetrack.Tracked, false)
	add(c.ICS.Tracked, timetrack.Tracked, true)
	return out
}

// sourceFetcher loads records from Google or iCalendar sources. The Google
// client is created on first use so ICS-only setups never authenticate.
type sourceFetcher struct {
	cfg    config.Config
	google *gcal.Client
	ics    *ics.Fetcher
}

func newSourceFetcher(c config.Config) *sourceFetcher {
	return &sourceFetcher{cfg: c, ics: ics.NewFetcher(nil)}
}

// Records returns the records of src starting on a day in [from, to].
func (f *sourceFetcher) Records(ctx context.Context, src calendarSource, from, to time.Time) ([]timetrack.Record, error) {
	timeMin, timeMax := fetchWindow(from, to)
	if src.ICS {
		return f.ics.Events(ctx, src.ID, timeMin, timeMax)
	}
	client, err := f.googleClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Events(ctx, src.ID, timeMin, timeMax)
}

func (f *sourceFetcher) googleClient(ctx context.Context) (*gcal.Client, error) {
	if f.google != nil {
		return f.google, nil
	}
	httpClient, err := gcal.Authenticate(ctx, f.cfg.Google, f.cfg.TokenFile, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	client, err := gcal.NewClient(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	f.google = client
	return client, nil
}

// fetchWindow turns the inclusive day range [from, to] into the half-open
// instant range [local midnight of from, local midnight after to).
func fetchWindow(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.Local)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, 1)
	return start, end
}

// fetchInto loads every configured source into tr.
func fetchInto(ctx context.Context, tr *timetrack.Tracker, f *sourceFetcher, sources []calendarSource) error {
	for _, src := range sources {
		records, err := f.Records(ctx, src, tr.Start(), tr.ViewEnd())
		if err != nil {
			return fmt.Errorf("fetching %s: %w", src, err)
		}
		res, err := tr.Ingest(records, src.Kind)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", src, err)
		}
		log.WithFields(log.Fields{
			"calendar": src.ID,
			"kind":     src.Kind,
			"ingested": res.Ingested,
			"skipped":  res.Skipped,
		}).Info("calendar loaded")
	}
	return nil
}
