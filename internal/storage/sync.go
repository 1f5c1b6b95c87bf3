package storage

import (
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/timetrack/internal/model"
	"github.com/Tiliavir/timetrack/internal/timecalc"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Updated  int
	Skipped  int
	Removed  int
	Errors   int
}

// Add accumulates the counters of other into r.
func (r *SyncResult) Add(other SyncResult) {
	r.Imported += other.Imported
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Removed += other.Removed
	r.Errors += other.Errors
}

// SyncOptions configures a sync run for one calendar.
type SyncOptions struct {
	Base     string
	Calendar string
	Kind     timetrack.Kind
	// From and To are the inclusive days the records were fetched for.
	// Cached records of Calendar on these days that are no longer returned
	// by the source are removed.
	From   time.Time
	To     time.Time
	DryRun bool
	// Out receives one progress line per record. Nil discards them.
	Out io.Writer
}

// Sync stores records in the day files under opts.Base. New records are
// imported, changed ones updated and unchanged ones skipped. Records starting
// outside [From, To] are ignored.
func Sync(records []timetrack.Record, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	if !opts.Kind.Valid() {
		return result, fmt.Errorf("%w: %d", timetrack.ErrInvalidClassification, int(opts.Kind))
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	now := time.Now().UTC()
	first, last := timecalc.DateOf(opts.From), timecalc.DateOf(opts.To)
	seen := make(map[string]string, len(records))

	for _, rec := range records {
		label := recordLabel(rec)
		day, err := timecalc.ParseDate(rec.Day())
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", label, err)
			result.Errors++
			continue
		}
		// Overlap queries also return events starting before From. They
		// belong to a day this run does not prune, so they are not stored.
		if day.Before(first) || day.After(last) {
			log.WithFields(log.Fields{"id": rec.ID, "day": rec.Day()}).Debug("record outside sync range")
			continue
		}
		seen[rec.ID] = day.Format(timecalc.DayLayout)

		existing, err := LoadDay(opts.Base, day)
		if err != nil {
			fmt.Fprintf(out, "  ! Error loading day for %q: %v\n", label, err)
			result.Errors++
			continue
		}

		entry := model.Entry{
			ID:        rec.ID,
			Calendar:  opts.Calendar,
			Kind:      opts.Kind,
			Record:    rec,
			FetchedAt: now,
		}

		found := findEntry(existing.Entries, opts.Calendar, opts.Kind, rec.ID)
		if found != nil && sameRecord(found.Record, rec) {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", label)
			result.Skipped++
			continue
		}

		if !opts.DryRun {
			if err := UpdateEntry(opts.Base, day, entry); err != nil {
				fmt.Fprintf(out, "  ! Error saving %q: %v\n", label, err)
				result.Errors++
				continue
			}
		}
		if found != nil {
			fmt.Fprintf(out, "  ↑ Updated:  %s%s\n", label, durationSuffix(rec))
			result.Updated++
			continue
		}
		fmt.Fprintf(out, "  ✓ Imported: %s%s\n", label, durationSuffix(rec))
		result.Imported++
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		removed, err := prune(d, seen, opts, out)
		result.Removed += removed
		if err != nil {
			fmt.Fprintf(out, "  ! Error pruning %s: %v\n", d.Format(timecalc.DayLayout), err)
			result.Errors++
		}
	}

	log.WithFields(log.Fields{
		"calendar": opts.Calendar,
		"kind":     opts.Kind,
		"imported": result.Imported,
		"updated":  result.Updated,
		"skipped":  result.Skipped,
		"removed":  result.Removed,
		"errors":   result.Errors,
		"dry_run":  opts.DryRun,
	}).Debug("calendar synced")
	return result, nil
}

// prune drops entries of the synced calendar on day that the source no longer
// returned for that day.
func prune(day time.Time, seen map[string]string, opts SyncOptions, out io.Writer) (int, error) {
	df, err := LoadDay(opts.Base, day)
	if err != nil {
		return 0, err
	}

	key := day.Format(timecalc.DayLayout)
	kept := df.Entries[:0]
	removed := 0
	for _, e := range df.Entries {
		if e.Calendar == opts.Calendar && e.Kind == opts.Kind && seen[e.ID] != key {
			fmt.Fprintf(out, "  ✗ Removed:  %s\n", recordLabel(e.Record))
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 || opts.DryRun {
		return removed, nil
	}
	df.Entries = kept
	return removed, SaveDay(opts.Base, day, df)
}

func findEntry(entries []model.Entry, calendar string, kind timetrack.Kind, id string) *model.Entry {
	for i := range entries {
		if entries[i].Matches(calendar, kind, id) {
			return &entries[i]
		}
	}
	return nil
}

func sameRecord(a, b timetrack.Record) bool {
	if (a.Summary == nil) != (b.Summary == nil) {
		return false
	}
	return a.SummaryText() == b.SummaryText() && a.Start == b.Start && a.End == b.End
}

func recordLabel(rec timetrack.Record) string {
	if rec.Summary == nil || *rec.Summary == "" {
		return "(no title)"
	}
	return *rec.Summary
}

// durationSuffix formats " (1h 30m)" for timed records and "" otherwise.
func durationSuffix(rec timetrack.Record) string {
	if !rec.Start.Timed() || !rec.End.Timed() {
		return ""
	}
	start, err1 := time.Parse(time.RFC3339, rec.Start.DateTime)
	end, err2 := time.Parse(time.RFC3339, rec.End.DateTime)
	if err1 != nil || err2 != nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", timecalc.FormatDuration(end.Sub(start)))
}
