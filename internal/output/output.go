// Package output renders import results for the terminal or for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"league_results_importer/internal/importer"
	"league_results_importer/internal/standings"
	"league_results_importer/internal/timecodec"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Render writes v in the named format. Table output knows results, standings
// and time inspections; anything else goes out as JSON.
func Render(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		switch t := v.(type) {
		case *importer.Result:
			return ResultTable(w, t)
		case standings.Standings:
			return StandingsTable(w, t)
		case []timecodec.Inspection:
			return TimesTable(w, t)
		default:
			return JSONTo(w, v)
		}
	case FormatJSON:
		return JSONTo(w, v)
	case FormatYAML:
		return YAMLTo(w, v)
	default:
		return errors.WithHintf(errors.Wrapf(ErrUnknownFormat, "%q", format),
			"use one of %s, %s, %s", FormatTable, FormatJSON, FormatYAML)
	}
}

// JSONTo writes v as indented JSON.
func JSONTo(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func YAMLTo(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return encoder.Close()
}

// ResultTable prints the standings followed by any roster warnings.
func ResultTable(w io.Writer, r *importer.Result) error {
	if err := StandingsTable(w, r.Standings); err != nil {
		return err
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
	if len(r.MissingDrivers) > 0 {
		fmt.Fprintf(w, "skipped: %s\n", strings.Join(r.MissingDrivers, ", "))
	}
	return nil
}

func StandingsTable(w io.Writer, s standings.Standings) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := []string{"POS", "DRIVER", "TIME", "GAP", "FASTEST LAP", "FL", "POLE"}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(separators, "\t"))

	for _, p := range s.Classified {
		writeRow(tw, strconv.Itoa(p.Position), p)
	}
	for _, p := range s.Unclassified {
		status := "NC"
		if p.DNF {
			status = "DNF"
		}
		writeRow(tw, status, p)
	}
	return tw.Flush()
}

func TimesTable(w io.Writer, times []timecodec.Inspection) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tNORMALIZED\tVALID\tMS")
	for _, in := range times {
		ms := "-"
		if in.Ms != nil {
			ms = strconv.FormatInt(*in.Ms, 10)
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", orDash(in.Input), orDash(in.Normalized), in.Valid, ms)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, pos string, p standings.Placed) {
	fmt.Fprintln(w, strings.Join([]string{
		pos,
		p.Driver,
		orDash(p.ResolvedTime),
		orDash(p.Gap),
		orDash(p.FastestLapTime),
		flag(p.HasFastestLap),
		flag(p.HasPole),
	}, "\t"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
