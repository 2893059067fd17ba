// Package csvimport turns pasted or uploaded result CSVs into result rows.
//
// A parse either returns every row or a single *ParseError; it never returns
// a partial list.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"league_results_importer/internal/timecodec"
)

const (
	ColumnDriver         = "driver"
	ColumnRaceTime       = "race_time"
	ColumnDifference     = "original_race_time_difference"
	ColumnFastestLapTime = "fastest_lap_time"
)

// LAP_PADDING_MS is added to the fastest lap for every lap a driver is down.
const LAP_PADDING_MS int64 = 500

var lapShorthand = regexp.MustCompile(`(?i)^(\d+)\s*laps?$`)

var dnfSentinels = map[string]bool{
	"dnf":     true,
	"retired": true,
	"ret":     true,
}

type SessionContext struct {
	IsQualifying      bool `json:"is_qualifying" yaml:"is_qualifying"`
	RaceTimesRequired bool `json:"race_times_required" yaml:"race_times_required"`
}

func (s SessionContext) label() string {
	if s.IsQualifying {
		return "qualifying"
	}
	return "race"
}

type Row struct {
	Driver                     string `json:"driver"`
	RaceTime                   string `json:"race_time,omitempty"`
	OriginalRaceTimeDifference string `json:"original_race_time_difference,omitempty"`
	FastestLapTime             string `json:"fastest_lap_time,omitempty"`
	DNF                        bool   `json:"dnf,omitempty"`
	Line                       int    `json:"-"`
}

func (r Row) blank() bool {
	return r.Driver == "" && r.RaceTime == "" && r.OriginalRaceTimeDifference == "" && r.FastestLapTime == "" && !r.DNF
}

// RequiredColumns lists the headers a CSV must carry for the session.
func RequiredColumns(session SessionContext) []string {
	if !session.RaceTimesRequired {
		return []string{ColumnDriver}
	}
	if session.IsQualifying {
		return []string{ColumnDriver, ColumnFastestLapTime}
	}
	return []string{ColumnDriver, ColumnRaceTime, ColumnDifference, ColumnFastestLapTime}
}

// Parse parses CSV text pasted by the user.
func Parse(text string, session SessionContext) ([]Row, error) {
	return ParseReader(strings.NewReader(text), session)
}

// ParseReader parses a CSV stream with a header row.
func ParseReader(r io.Reader, session SessionContext) ([]Row, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, missingColumnsError(session, RequiredColumns(session))
	}
	if err != nil {
		return nil, unreadable(err)
	}

	columns := indexHeader(header)
	if err := checkColumns(columns, session); err != nil {
		return nil, err
	}

	var rows []Row
	for {
		rec, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, unreadable(err)
		}

		line, _ := csvReader.FieldPos(0)
		row, err := parseRecord(rec, columns, line)
		if err != nil {
			return nil, err
		}
		if row.blank() {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func indexHeader(header []string) map[string]int {
	fold := cases.Fold()
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := fold.String(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	return columns
}

func checkColumns(columns map[string]int, session SessionContext) error {
	var missing []string
	for _, c := range RequiredColumns(session) {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return missingColumnsError(session, missing)
	}
	return nil
}

func missingColumnsError(session SessionContext, missing []string) *ParseError {
	return &ParseError{
		Kind:    ErrMissingColumns,
		Missing: missing,
		Message: fmt.Sprintf("Missing required columns for %s sessions: %s. Required Column Headers: %s",
			session.label(), strings.Join(missing, ", "), strings.Join(RequiredColumns(session), ", ")),
	}
}

func unreadable(err error) *ParseError {
	return &ParseError{
		Kind:    ErrUnreadableInput,
		Message: fmt.Sprintf("Could not read CSV: %v", err),
	}
}

func cell(rec []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseRecord(rec []string, columns map[string]int, line int) (Row, error) {
	row := Row{
		Driver: cell(rec, columns, ColumnDriver),
		Line:   line,
	}
	raceTime := cell(rec, columns, ColumnRaceTime)
	difference := cell(rec, columns, ColumnDifference)
	fastestLap := cell(rec, columns, ColumnFastestLapTime)

	if dnfSentinels[strings.ToLower(difference)] {
		row.DNF = true
		difference = ""
	}

	difference = strings.TrimSpace(strings.TrimPrefix(difference, "+"))

	if m := lapShorthand.FindStringSubmatch(difference); m != nil {
		computed, err := expandLaps(m[1], difference, fastestLap, row)
		if err != nil {
			return Row{}, err
		}
		difference = computed
	}

	var err error
	if row.RaceTime, err = normalizeField(row, ColumnRaceTime, raceTime); err != nil {
		return Row{}, err
	}
	if row.OriginalRaceTimeDifference, err = normalizeField(row, ColumnDifference, difference); err != nil {
		return Row{}, err
	}
	if row.FastestLapTime, err = normalizeField(row, ColumnFastestLapTime, fastestLap); err != nil {
		return Row{}, err
	}

	return row, nil
}

// expandLaps turns "N laps" into (fastest lap + padding) * N.
func expandLaps(count, shorthand, fastestLap string, row Row) (string, error) {
	laps, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return "", &ParseError{
			Kind:    ErrLapShorthand,
			Line:    row.Line,
			Message: fmt.Sprintf("Row %d (%s): lap count in %q is out of range", row.Line, row.Driver, shorthand),
		}
	}

	normalized := timecodec.Normalize(fastestLap)
	if normalized == "" {
		return "", &ParseError{
			Kind:    ErrLapShorthand,
			Line:    row.Line,
			Message: fmt.Sprintf("Row %d (%s): %s specified but fastest lap time is required", row.Line, row.Driver, shorthand),
		}
	}

	lapMs, ok := timecodec.ParseTimeToMs(normalized)
	if !ok {
		return "", &ParseError{
			Kind:    ErrLapShorthand,
			Line:    row.Line,
			Message: fmt.Sprintf("Row %d (%s): invalid fastest lap time format %q for %s", row.Line, row.Driver, fastestLap, shorthand),
		}
	}

	perLap := lapMs + LAP_PADDING_MS
	if laps > timecodec.MaxValidMs/perLap {
		return "", &ParseError{
			Kind:    ErrLapShorthand,
			Line:    row.Line,
			Message: fmt.Sprintf("Row %d (%s): %s exceeds the longest allowed difference of %s",
				row.Line, row.Driver, shorthand, timecodec.FormatMsToTime(timecodec.MaxValidMs)),
		}
	}

	return timecodec.FormatMsToTime(perLap * laps), nil
}

func normalizeField(row Row, column, value string) (string, error) {
	normalized := timecodec.Normalize(value)
	if !timecodec.IsValidTimeFormat(normalized) {
		return "", &ParseError{
			Kind:    ErrInvalidTime,
			Line:    row.Line,
			Message: fmt.Sprintf("Row %d (%s): invalid %s format %q", row.Line, row.Driver, column, value),
		}
	}
	return normalized, nil
}
