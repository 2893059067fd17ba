// Package protocol renders resolved standings as an xlsx results protocol.
package protocol

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"league_results_importer/internal/standings"
	"league_results_importer/internal/timecodec"
)

const (
	SheetRace       = "Race"
	SheetQualifying = "Qualifying"
)

var header = []string{"Pos", "Driver", "Time", "Gap", "Fastest lap", "Pole", "Fastest lap holder"}

type styles struct {
	header, position, driver, plain, bestLap, total, retired int
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newStyles(f *excelize.File) (styles, error) {
	center := &excelize.Alignment{Horizontal: "center"}
	defs := []*excelize.Style{
		{Fill: fill("1c399e"), Alignment: center, Font: &excelize.Font{Size: 14, Color: "ffffff", Bold: true}},
		{Fill: fill("f71e1e"), Alignment: center, Font: &excelize.Font{Size: 14, Bold: true}},
		{Fill: fill("999999"), Alignment: center, Font: &excelize.Font{Size: 14, Bold: true}},
		{Fill: fill("ffffff"), Alignment: center, Font: &excelize.Font{Size: 14}},
		{Fill: fill("8b13c2"), Alignment: center, Font: &excelize.Font{Size: 14, Color: "ffffff"}},
		{Fill: fill("f59236"), Alignment: center, Font: &excelize.Font{Size: 16, Bold: true, Italic: true}},
		{Fill: fill("cccccc"), Alignment: center, Font: &excelize.Font{Size: 14, Italic: true}},
	}
	ids := make([]int, len(defs))
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return styles{}, errors.Wrap(err, "create cell style")
		}
		ids[i] = id
	}
	return styles{
		header: ids[0], position: ids[1], driver: ids[2], plain: ids[3],
		bestLap: ids[4], total: ids[5], retired: ids[6],
	}, nil
}

// Build lays out classified drivers first and unclassified ones below them.
// The caller must Close the returned file.
func Build(s standings.Standings) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SheetRace
	if s.Qualifying {
		sheet = SheetQualifying
	}

	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "create sheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "drop default sheet")
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeRows(f, sheet, st, s); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write builds the protocol and streams it to w.
func Write(w io.Writer, s standings.Standings) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write protocol")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, st styles, s standings.Standings) error {
	for col, title := range header {
		if err := addStyledCell(f, sheet, col+1, 1, title, st.header); err != nil {
			return err
		}
	}

	row := 2
	for _, p := range s.Classified {
		timeStyle := st.total
		if s.Qualifying && p.Position == 1 {
			timeStyle = st.bestLap
		}
		lapStyle := st.plain
		if p.HasFastestLap {
			lapStyle = st.bestLap
		}
		cells := []struct {
			value any
			style int
		}{
			{p.Position, st.position},
			{p.Driver, st.driver},
			{p.ResolvedTime, timeStyle},
			{dash(p.Gap), st.plain},
			{dash(timecodec.FormatLap(p.FastestLapTime)), lapStyle},
			{mark(p.HasPole), st.plain},
			{mark(p.HasFastestLap), st.plain},
		}
		for col, c := range cells {
			if err := addStyledCell(f, sheet, col+1, row, c.value, c.style); err != nil {
				return err
			}
		}
		row++
	}

	for _, p := range s.Unclassified {
		status := "NC"
		if p.DNF {
			status = "DNF"
		}
		values := []any{status, p.Driver, "–", "–", dash(timecodec.FormatLap(p.FastestLapTime)), mark(p.HasPole), mark(p.HasFastestLap)}
		for col, v := range values {
			if err := addStyledCell(f, sheet, col+1, row, v, st.retired); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

func addStyledCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return errors.Wrapf(err, "set %s", cell)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return errors.Wrapf(err, "style %s", cell)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "–"
	}
	return s
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
