package timecodec

import "time"

func Duration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FromDuration truncates d to whole milliseconds.
func FromDuration(d time.Duration) int64 {
	return d.Milliseconds()
}

// Timespan formats a duration with a time layout, e.g. "04:05.000" for laps.
type Timespan time.Duration

func (t Timespan) Format(layout string) string {
	z := time.Unix(0, 0).UTC()
	return z.Add(time.Duration(t)).Format(layout)
}

// LapLayout shows minutes, seconds and milliseconds.
const LapLayout = "04:05.000"

// FormatLap renders a canonical time as MM:SS.mmm when it is under an hour.
// Anything else is returned unchanged.
func FormatLap(canonical string) string {
	ms, ok := ParseTimeToMs(canonical)
	if !ok || ms >= msPerHour {
		return canonical
	}
	return Timespan(Duration(ms)).Format(LapLayout)
}
