// Package timecodec converts lap and race time strings between the shorthand
// forms typed by league admins, the canonical HH:MM:SS.mmm form and integer
// milliseconds.
package timecodec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute

	// MaxValidMs is 99:59:59.999, the longest time IsValidTimeFormat accepts.
	MaxValidMs int64 = 100*msPerHour - 1
)

var (
	fullForm   = regexp.MustCompile(`^(\+)?(\d{1,2}):(\d{2}):(\d{2})\.(\d{1,3})$`)
	minuteForm = regexp.MustCompile(`^(\+)?(\d{1,2}):(\d{2})\.(\d{1,3})$`)
	secondForm = regexp.MustCompile(`^(\+)?(\d{1,2})\.(\d{1,3})$`)

	strictForm = regexp.MustCompile(`^\+?\d{1,2}:\d{2}:\d{2}\.\d{1,3}$`)

	// hours are unbounded so that every FormatMsToTime output parses back
	canonicalForm = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{1,3})$`)

	signGap = regexp.MustCompile(`^\+\s+`)
)

// Normalize rewrites a time in any accepted shorthand to [+]HH:MM:SS.mmm.
// Input that matches none of the shorthand forms comes back trimmed but
// otherwise untouched so callers can echo it in error messages.
func Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	compact := signGap.ReplaceAllString(trimmed, "+")

	var sign, hours, minutes, seconds, fraction string
	if m := fullForm.FindStringSubmatch(compact); m != nil {
		sign, hours, minutes, seconds, fraction = m[1], m[2], m[3], m[4], m[5]
	} else if m := minuteForm.FindStringSubmatch(compact); m != nil {
		sign, hours, minutes, seconds, fraction = m[1], "0", m[2], m[3], m[4]
	} else if m := secondForm.FindStringSubmatch(compact); m != nil {
		sign, hours, minutes, seconds, fraction = m[1], "0", "0", m[2], m[3]
	} else {
		return trimmed
	}

	return sign + padLeft(hours) + ":" + padLeft(minutes) + ":" + padLeft(seconds) + "." + padFraction(fraction)
}

// IsValidTimeFormat reports whether input is empty or already in the full
// [+]H:MM:SS.fff form. Minute and second shorthand are rejected.
func IsValidTimeFormat(input string) bool {
	if input == "" {
		return true
	}
	return strictForm.MatchString(input)
}

// ParseTimeToMs converts a canonical H:MM:SS.fff time to milliseconds. The
// second return value is false for empty or non-canonical input, including a
// leading sign, and for times that do not fit in an int64.
func ParseTimeToMs(input string) (int64, bool) {
	m := canonicalForm.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0, false
	}

	hours, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || hours > math.MaxInt64/msPerHour {
		return 0, false
	}
	minutes, _ := strconv.ParseInt(m[2], 10, 64)
	seconds, _ := strconv.ParseInt(m[3], 10, 64)
	millis, _ := strconv.ParseInt(padFraction(m[4]), 10, 64)

	rest := minutes*msPerMinute + seconds*msPerSecond + millis
	if hours*msPerHour > math.MaxInt64-rest {
		return 0, false
	}
	return hours*msPerHour + rest, true
}

// FormatMsToTime renders milliseconds as HH:MM:SS.mmm. Negative values keep a
// leading minus in front of the formatted magnitude.
func FormatMsToTime(ms int64) string {
	sign := ""
	magnitude := uint64(ms)
	if ms < 0 {
		sign = "-"
		// two's complement negation, exact for math.MinInt64 too
		magnitude = -magnitude
	}
	hours := magnitude / msPerHour
	minutes := (magnitude % msPerHour) / msPerMinute
	seconds := (magnitude % msPerMinute) / msPerSecond
	millis := magnitude % msPerSecond
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, hours, minutes, seconds, millis)
}

// CalculateRaceTimeFromDifference adds a gap to the leader's time.
func CalculateRaceTimeFromDifference(leaderMs, diffMs *int64) (string, bool) {
	if leaderMs == nil || diffMs == nil {
		return "", false
	}
	return FormatMsToTime(*leaderMs + *diffMs), true
}

func padLeft(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

func padFraction(s string) string {
	if len(s) >= 3 {
		return s[:3]
	}
	return s + strings.Repeat("0", 3-len(s))
}

// Inspection reports how a single time string is read.
type Inspection struct {
	Input      string `json:"input" yaml:"input"`
	Normalized string `json:"normalized" yaml:"normalized"`
	Valid      bool   `json:"valid" yaml:"valid"`
	Ms         *int64 `json:"ms,omitempty" yaml:"ms,omitempty"`
}

// Inspect normalizes input and, when the result is a valid non-empty time,
// converts it to milliseconds. A leading sign does not change Ms.
func Inspect(input string) Inspection {
	normalized := Normalize(input)
	in := Inspection{
		Input:      input,
		Normalized: normalized,
		Valid:      IsValidTimeFormat(normalized),
	}
	if in.Valid {
		if ms, ok := ParseTimeToMs(strings.TrimPrefix(normalized, "+")); ok {
			in.Ms = &ms
		}
	}
	return in
}
