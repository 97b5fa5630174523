package domain

import (
	"fmt"
	"time"
)

// synopticInterval is the spacing of main and intermediate synoptic hours.
const synopticInterval = 3 * time.Hour

// Window is an inclusive UTC time range of observations. The source widens a
// single-hour window by ±30 minutes on its side.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates and normalizes a range to UTC.
func NewWindow(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, fmt.Errorf("window end %s before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Window{Start: start.UTC(), End: end.UTC()}, nil
}

// Equal reports whether two windows cover the same range.
func (w Window) Equal(o Window) bool {
	return w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

// IsZero reports whether the window is unset.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

func (w Window) String() string {
	return w.Start.Format("2006-01-02T15:04Z") + "/" + w.End.Format("2006-01-02T15:04Z")
}

// LatestSynopTime returns the most recent of 00, 03, ..., 21 UTC at or before now.
func LatestSynopTime(now time.Time) time.Time {
	return now.UTC().Truncate(synopticInterval)
}

// CurrentWindow is the single-hour window of the latest synoptic hour by the package clock.
func CurrentWindow() Window {
	t := LatestSynopTime(clock.Now())
	return Window{Start: t, End: t}
}
