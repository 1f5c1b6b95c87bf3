package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

type markdownRenderer struct{}

func (markdownRenderer) Render(w io.Writer, r Report) error {
	var b strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", r.Title)
	}

	writeRow(&b, detailColumns)
	sep := make([]string, len(detailColumns))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, l := range detail(r.Rows) {
		writeRow(&b, l.cells())
	}

	if n := len(r.Rows); n > 0 {
		last := r.Rows[n-1]
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "%-20s%s\n", "Tracked", timecalc.FormatDuration(last.TrackedSum))
		fmt.Fprintf(&b, "%-20s%s\n", "Working", timecalc.FormatDuration(last.WorkingSum))
		fmt.Fprintf(&b, "%-20s%s\n", "Overtime", timecalc.FormatDuration(displayOvertime(last.OvertimeSum)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
