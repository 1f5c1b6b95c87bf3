package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timetrack/internal/storage"
	"github.com/Tiliavir/timetrack/internal/timecalc"
)

var (
	syncFrom   string
	syncTo     string
	syncDate   string
	syncDryRun bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Cache calendar events for offline reports",
	Long: `Fetch the events of every configured calendar and store them under the
data directory, one JSON file per day. Events that disappeared from a calendar
are removed from the cache. Use "timetrack report --offline" to report from
the cache.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	syncCmd.Flags().StringVar(&syncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Print planned operations without writing")
}

// syncRange resolves the inclusive day range from the flags. It defaults to
// today.
func syncRange(date, from, to string, now time.Time) (time.Time, time.Time, error) {
	today := timecalc.DateOf(now)
	switch {
	case date != "":
		d, err := timecalc.ParseDate(date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value: %w", err)
		}
		return d, d, nil

	case from != "" || to != "":
		if from == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		f, err := timecalc.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
		t := today
		if to != "" {
			if t, err = timecalc.ParseDate(to); err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
			}
		}
		if t.Before(f) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", t.Format(timecalc.DayLayout), f.Format(timecalc.DayLayout))
		}
		return f, t, nil
	}
	return today, today, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncRange(syncDate, syncFrom, syncTo, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sources := configuredSources(cfg)
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, noCalendarsMsg)
		os.Exit(1)
	}

	dryTag := ""
	if syncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Syncing calendars (%s → %s)%s...\n",
		from.Format(timecalc.DayLayout), to.Format(timecalc.DayLayout), dryTag)

	ctx := context.Background()
	fetcher := newSourceFetcher(cfg)
	var total storage.SyncResult

	for _, src := range sources {
		fmt.Println()
		fmt.Printf("%s (%s)\n", src, src.Kind)

		records, err := fetcher.Records(ctx, src, from, to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
			os.Exit(1)
		}

		result, err := storage.Sync(records, storage.SyncOptions{
			Base:     cfg.DataDir,
			Calendar: src.ID,
			Kind:     src.Kind,
			From:     from,
			To:       to,
			DryRun:   syncDryRun,
			Out:      os.Stdout,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync error: %v\n", err)
			os.Exit(1)
		}
		total.Add(result)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", total.Imported)
	fmt.Printf("  %d skipped\n", total.Skipped)
	fmt.Printf("  %d updated\n", total.Updated)
	fmt.Printf("  %d removed\n", total.Removed)
	if total.Errors > 0 {
		fmt.Printf("  %d errors\n", total.Errors)
		os.Exit(2)
	}
	return nil
}
