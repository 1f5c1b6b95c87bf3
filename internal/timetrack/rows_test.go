package timetrack_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/timetrack/internal/timetrack"
)

func TestRows_WindowWithoutWarmUp(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 1), date(2021, 1, 2))

	_, err := tracker.Ingest([]timetrack.Record{
		timed("#work", "2021-01-01T09:00:00+01:00", "2021-01-01T17:00:00+01:00"),
	}, timetrack.Working)
	require.NoError(t, err)
	_, err = tracker.Ingest([]timetrack.Record{
		timed("#project", "2021-01-01T09:00:00+01:00", "2021-01-01T15:00:00+01:00"),
	}, timetrack.Tracked)
	require.NoError(t, err)

	rows := tracker.Collect()
	require.Len(t, rows, 2)

	assert.Equal(t, date(2021, 1, 1), rows[0].Date)
	assert.Equal(t, 8*time.Hour, rows[0].WorkingSum)
	assert.Equal(t, 6*time.Hour, rows[0].TrackedSum)
	assert.Equal(t, 2*time.Hour, rows[0].OvertimeSum)

	assert.Equal(t, date(2021, 1, 2), rows[1].Date)
	assert.Equal(t, 8*time.Hour, rows[1].WorkingSum)
	assert.Equal(t, 6*time.Hour, rows[1].TrackedSum)
	assert.Equal(t, 2*time.Hour, rows[1].OvertimeSum)
	assert.Zero(t, rows[1].Day.WorkingTime())
	assert.Zero(t, rows[1].Day.TrackedTime())
	assert.Zero(t, rows[1].Day.Overtime())
}

func TestRows_WarmUpCarriedIntoWindow(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 3), date(2021, 1, 3))

	_, err := tracker.Ingest([]timetrack.Record{
		timed("#work", "2021-01-01T08:00:00Z", "2021-01-01T12:00:00Z"),
	}, timetrack.Working)
	require.NoError(t, err)

	rows := tracker.Collect()
	require.Len(t, rows, 1)
	assert.Equal(t, date(2021, 1, 3), rows[0].Date)
	assert.Equal(t, 4*time.Hour, rows[0].WorkingSum)
	assert.Equal(t, 4*time.Hour, rows[0].OvertimeSum)
	assert.Zero(t, rows[0].TrackedSum)
	assert.Zero(t, rows[0].Day.WorkingTime())
}

func TestRows_FirstRowIncludesViewStartDay(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 2), date(2021, 1, 4))

	_, err := tracker.Ingest([]timetrack.Record{
		timed("#w", "2021-01-01T08:00:00Z", "2021-01-01T09:00:00Z"),
		timed("#w", "2021-01-02T08:00:00Z", "2021-01-02T10:00:00Z"),
		timed("#w", "2021-01-04T08:00:00Z", "2021-01-04T12:00:00Z"),
		// After viewEnd: never counted.
		timed("#w", "2021-01-05T08:00:00Z", "2021-01-05T16:00:00Z"),
	}, timetrack.Working)
	require.NoError(t, err)

	rows := tracker.Collect()
	require.Len(t, rows, 3)
	assert.Equal(t, 3*time.Hour, rows[0].WorkingSum)
	assert.Equal(t, 3*time.Hour, rows[1].WorkingSum)
	assert.Equal(t, 7*time.Hour, rows[2].WorkingSum)
}

func TestRows_CountAndOrder(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		viewStart time.Time
		viewEnd   time.Time
		want      int
	}{
		{"single day", date(2021, 1, 1), date(2021, 1, 1), date(2021, 1, 1), 1},
		{"month boundary", date(2021, 1, 1), date(2021, 1, 30), date(2021, 2, 2), 4},
		{"leap february", date(2020, 1, 1), date(2020, 2, 1), date(2020, 2, 29), 29},
		{"view end before start", date(2021, 1, 5), date(2021, 1, 5), date(2021, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTracker(tt.start, tt.viewStart, tt.viewEnd)
			rows := tracker.Collect()
			require.Len(t, rows, tt.want)
			for i, row := range rows {
				assert.Equal(t, tt.viewStart.AddDate(0, 0, i), row.Date)
			}
		})
	}
}

func TestRows_Restartable(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 2), date(2021, 1, 5))

	_, err := tracker.Ingest([]timetrack.Record{
		timed("#w", "2021-01-01T08:00:00Z", "2021-01-01T16:00:00Z"),
		timed("#w", "2021-01-03T08:00:00Z", "2021-01-03T16:00:00Z"),
	}, timetrack.Working)
	require.NoError(t, err)
	_, err = tracker.Ingest([]timetrack.Record{
		timed("#t", "2021-01-03T08:00:00Z", "2021-01-03T18:00:00Z"),
	}, timetrack.Tracked)
	require.NoError(t, err)

	first := tracker.Collect()

	var lazy []timetrack.Row
	for row := range tracker.Rows() {
		lazy = append(lazy, row)
	}

	assert.Equal(t, first, lazy)
	assert.Equal(t, first, tracker.Collect())
	assert.Equal(t, -2*time.Hour+8*time.Hour, first[len(first)-1].OvertimeSum)
}

func TestRows_EarlyStop(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 1), date(2021, 1, 31))

	n := 0
	for range tracker.Rows() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestRows_ReadingEmptyDaysDoesNotStoreThem(t *testing.T) {
	tracker, _ := newTracker(date(2021, 1, 1), date(2021, 1, 1), date(2021, 1, 2))
	_ = tracker.Collect()

	_, err := tracker.Ingest([]timetrack.Record{
		timed("#t", "2021-01-02T08:00:00Z", "2021-01-02T09:00:00Z"),
	}, timetrack.Tracked)
	require.NoError(t, err)

	rows := tracker.Collect()
	assert.Zero(t, rows[0].Day.TrackedTime())
	assert.Equal(t, time.Hour, rows[1].Day.TrackedTime())
	assert.Equal(t, -time.Hour, rows[1].OvertimeSum)
}
