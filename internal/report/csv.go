package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

var csvHeader = []string{
	"date", "tracked_minutes", "working_minutes", "overtime_minutes",
	"overtime_sum_minutes", "tracked_sum_minutes", "working_sum_minutes",
}

// csvRenderer writes one line per day.
type csvRenderer struct{}

func (csvRenderer) Render(w io.Writer, r Report) error {
	data := make([][]string, 0, len(r.Rows)+1)
	data = append(data, csvHeader)
	for _, row := range r.Rows {
		data = append(data, []string{
			row.Date.Format(timecalc.DayLayout),
			minutes(row.Day.TrackedTime()),
			minutes(row.Day.WorkingTime()),
			minutes(displayOvertime(row.Day.Overtime())),
			minutes(displayOvertime(row.OvertimeSum)),
			minutes(row.TrackedSum),
			minutes(row.WorkingSum),
		})
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return err
	}
	return nil
}

func minutes(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Minute), 10)
}
