// Package standings ranks result rows into finishing positions.
package standings

import (
	"sort"
	"strings"

	"league_results_importer/internal/timecodec"
)

// Result is one driver's result as entered in the form or imported from CSV.
// HasFastestLap and HasPole are carried through as given.
type Result struct {
	DriverID           string `json:"driver_id,omitempty" yaml:"driver_id,omitempty"`
	Driver             string `json:"driver" yaml:"driver"`
	RaceTime           string `json:"race_time,omitempty" yaml:"race_time,omitempty"`
	RaceTimeDifference string `json:"race_time_difference,omitempty" yaml:"race_time_difference,omitempty"`
	FastestLapTime     string `json:"fastest_lap_time,omitempty" yaml:"fastest_lap_time,omitempty"`
	DNF                bool   `json:"dnf" yaml:"dnf"`
	HasFastestLap      bool   `json:"has_fastest_lap" yaml:"has_fastest_lap"`
	HasPole            bool   `json:"has_pole" yaml:"has_pole"`
}

type Placed struct {
	Result `yaml:",inline"`
	Position     int    `json:"position,omitempty" yaml:"position,omitempty"`
	ResolvedTime string `json:"resolved_time,omitempty" yaml:"resolved_time,omitempty"`
	Gap          string `json:"gap,omitempty" yaml:"gap,omitempty"`

	timeMs int64
}

type Standings struct {
	Qualifying   bool     `json:"qualifying" yaml:"qualifying"`
	Classified   []Placed `json:"classified" yaml:"classified"`
	Unclassified []Placed `json:"unclassified" yaml:"unclassified"`
}

type ascendingTime []Placed

func (a ascendingTime) Len() int           { return len(a) }
func (a ascendingTime) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ascendingTime) Less(i, j int) bool { return a[i].timeMs < a[j].timeMs }

// Resolve orders results by race time, or by fastest lap for qualifying.
//
// Race times come from the row's own race_time, otherwise from the leader's
// race_time plus the row's difference. The leader is the first finisher with
// a parseable race_time. DNF rows and rows without a usable time are returned
// unclassified: untimed rows first, then DNF, each in input order. Equal
// times keep input order.
func Resolve(results []Result, qualifying bool) Standings {
	out := Standings{
		Qualifying:   qualifying,
		Classified:   make([]Placed, 0, len(results)),
		Unclassified: make([]Placed, 0),
	}

	var leaderMs *int64
	if !qualifying {
		leaderMs = findLeader(results)
	}

	var dnf []Placed
	for _, r := range results {
		p := Placed{Result: r}
		if r.DNF {
			dnf = append(dnf, p)
			continue
		}

		ms, ok := resolveTime(r, qualifying, leaderMs)
		if !ok {
			out.Unclassified = append(out.Unclassified, p)
			continue
		}
		p.timeMs = ms
		p.ResolvedTime = timecodec.FormatMsToTime(ms)
		out.Classified = append(out.Classified, p)
	}

	sort.Stable(ascendingTime(out.Classified))

	for i := range out.Classified {
		out.Classified[i].Position = i + 1
		if i > 0 {
			out.Classified[i].Gap = "+" + timecodec.FormatMsToTime(out.Classified[i].timeMs-out.Classified[0].timeMs)
		}
	}
	out.Unclassified = append(out.Unclassified, dnf...)

	return out
}

func findLeader(results []Result) *int64 {
	for _, r := range results {
		if r.DNF {
			continue
		}
		if ms, ok := timecodec.ParseTimeToMs(timecodec.Normalize(r.RaceTime)); ok {
			return &ms
		}
	}
	return nil
}

func resolveTime(r Result, qualifying bool, leaderMs *int64) (int64, bool) {
	if qualifying {
		return timecodec.ParseTimeToMs(timecodec.Normalize(r.FastestLapTime))
	}

	if ms, ok := timecodec.ParseTimeToMs(timecodec.Normalize(r.RaceTime)); ok {
		return ms, true
	}

	diff := strings.TrimPrefix(timecodec.Normalize(r.RaceTimeDifference), "+")
	diffMs, ok := timecodec.ParseTimeToMs(diff)
	if !ok {
		return 0, false
	}
	total, ok := timecodec.CalculateRaceTimeFromDifference(leaderMs, &diffMs)
	if !ok {
		return 0, false
	}
	return timecodec.ParseTimeToMs(total)
}
