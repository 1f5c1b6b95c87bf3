package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/timetrack/internal/model"
	"github.com/Tiliavir/timetrack/internal/report"
	"github.com/Tiliavir/timetrack/internal/storage"
	"github.com/Tiliavir/timetrack/internal/timecalc"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

var (
	reportWeek    bool
	reportFormat  string
	reportOutput  string
	reportTitle   string
	reportOffline bool

	plotDaily   string
	plotWeekly  string
	plotMonthly string
)

var reportCmd = &cobra.Command{
	Use:   "report START [VIEW_START VIEW_END]",
	Short: "Generate an overtime report",
	Long: `Generate an overtime report.

Events are loaded from START (YYYY-MM-DD) onwards so the running totals
include every day since START. Only the days from VIEW_START to VIEW_END
(both inclusive) are shown. With --week the current ISO week is shown and
VIEW_START and VIEW_END must be omitted.`,
	Args: reportArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Show the current ISO week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "html", "Output format: "+strings.Join(report.Formats(), ", "))
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report to this file instead of stdout")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Report title")
	reportCmd.Flags().BoolVar(&reportOffline, "offline", false, "Use records cached by `timetrack sync` instead of fetching")

	variables := strings.Join(report.Variables(), ", ")
	reportCmd.Flags().StringVar(&plotDaily, "plot-daily", "", "Embed a daily chart of this variable in html reports: "+variables)
	reportCmd.Flags().StringVar(&plotWeekly, "plot-weekly", "", "Embed a chart labelled every 7 days: "+variables)
	reportCmd.Flags().StringVar(&plotMonthly, "plot-monthly", "", "Embed a chart labelled every 30 days: "+variables)
}

// reportCharts builds the charts requested by the --plot-* flags, in daily,
// weekly, monthly order.
func reportCharts(daily, weekly, monthly string) ([]report.Chart, error) {
	var charts []report.Chart
	for _, c := range []struct {
		name   string
		period report.Period
	}{
		{daily, report.Daily},
		{weekly, report.Weekly},
		{monthly, report.Monthly},
	} {
		if c.name == "" {
			continue
		}
		v, err := report.ParseVariable(c.name)
		if err != nil {
			return nil, fmt.Errorf("--plot-%s: %w", c.period, err)
		}
		charts = append(charts, report.Chart{Variable: v, Period: c.period})
	}
	return charts, nil
}

func reportArgs(cmd *cobra.Command, args []string) error {
	if reportWeek {
		return cobra.ExactArgs(1)(cmd, args)
	}
	return cobra.ExactArgs(3)(cmd, args)
}

// reportWindow resolves START, VIEW_START and VIEW_END from the arguments.
func reportWindow(args []string, week bool, now time.Time) (start, viewStart, viewEnd time.Time, err error) {
	if start, err = timecalc.ParseDate(args[0]); err != nil {
		return
	}
	if week {
		viewStart, viewEnd = timecalc.WeekRange(now)
		return start, timecalc.DateOf(viewStart), timecalc.DateOf(viewEnd), nil
	}
	if viewStart, err = timecalc.ParseDate(args[1]); err != nil {
		return
	}
	viewEnd, err = timecalc.ParseDate(args[2])
	return
}

// outputPath appends .html to html reports that lack the extension.
func outputPath(path, format string) string {
	if path == "" || !strings.EqualFold(format, "html") {
		return path
	}
	if !strings.HasSuffix(strings.ToLower(path), ".html") {
		path += ".html"
	}
	return path
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()

	renderer, err := report.New(reportFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	charts, err := reportCharts(plotDaily, plotWeekly, plotMonthly)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(charts) > 0 && !strings.EqualFold(reportFormat, "html") {
		log.WithField("format", reportFormat).Warn("charts are only embedded in html reports")
	}

	start, viewStart, viewEnd, err := reportWindow(args, reportWeek, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	title := reportTitle
	if title == "" && reportWeek {
		title = "Week " + timecalc.ISOWeekLabel(now)
	}

	tr := timetrack.NewTracker(start, viewStart, viewEnd, timetrack.WithMarker(cfg.Marker))
	if reportOffline {
		if err := loadCached(tr, cfg.DataDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		sources := configuredSources(cfg)
		if len(sources) == 0 {
			fmt.Fprintln(os.Stderr, noCalendarsMsg)
			os.Exit(1)
		}
		if err := fetchInto(context.Background(), tr, newSourceFetcher(cfg), sources); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	r := report.Report{Title: title, Rows: tr.Collect(), Generated: now, Charts: charts}

	path := outputPath(reportOutput, reportFormat)
	if path == "" {
		return renderer.Render(os.Stdout, r)
	}
	if err := writeReport(path, renderer, r); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Report written to %s\n", path)
	return nil
}

// loadCached ingests the records cached under base.
func loadCached(tr *timetrack.Tracker, base string) error {
	entries, err := storage.LoadRange(base, tr.Start(), tr.ViewEnd())
	if err != nil {
		return err
	}
	for _, kind := range []timetrack.Kind{timetrack.Working, timetrack.Tracked} {
		res, err := tr.Ingest(model.Records(entries, kind), kind)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"kind":     kind,
			"ingested": res.Ingested,
			"skipped":  res.Skipped,
		}).Info("cached records loaded")
	}
	return nil
}

func writeReport(path string, renderer report.Renderer, r report.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing report file: %w", cerr)
		}
	}()
	return renderer.Render(f, r)
}
