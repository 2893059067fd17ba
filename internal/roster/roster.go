// Package roster resolves CSV driver names against the league's drivers.
package roster

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"league_results_importer/internal/csvimport"
)

type Driver struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Nickname  string `yaml:"nickname" json:"nickname"`
	DiscordID string `yaml:"discord_id" json:"discord_id,omitempty"`
}

type Roster struct {
	Drivers []Driver `yaml:"drivers"`
}

type Entry struct {
	csvimport.Row
	Driver Driver
}

type MatchResult struct {
	Entries []Entry
	Missing []string
}

// Warning is empty when every CSV driver was found.
func (m MatchResult) Warning() string {
	if len(m.Missing) == 0 {
		return ""
	}
	return fmt.Sprintf("%d driver(s) from the CSV were not found in the roster and were skipped", len(m.Missing))
}

// Match pairs each row with a driver by exact nickname or Discord ID.
// Rows without a match are left out of Entries and named in Missing.
func (r *Roster) Match(rows []csvimport.Row) MatchResult {
	byNickname := make(map[string]Driver, len(r.Drivers))
	byDiscord := make(map[string]Driver, len(r.Drivers))
	for _, d := range r.Drivers {
		if d.Nickname != "" {
			byNickname[d.Nickname] = d
		}
		if d.DiscordID != "" {
			byDiscord[d.DiscordID] = d
		}
	}

	var result MatchResult
	for _, row := range rows {
		d, ok := byNickname[row.Driver]
		if !ok {
			d, ok = byDiscord[row.Driver]
		}
		if !ok {
			result.Missing = append(result.Missing, row.Driver)
			continue
		}
		result.Entries = append(result.Entries, Entry{Row: row, Driver: d})
	}
	return result
}

// Passthrough builds entries without a roster, using the CSV name as nickname.
func Passthrough(rows []csvimport.Row) MatchResult {
	result := MatchResult{Entries: make([]Entry, 0, len(rows))}
	for _, row := range rows {
		result.Entries = append(result.Entries, Entry{Row: row, Driver: Driver{Name: row.Driver, Nickname: row.Driver}})
	}
	return result
}

// Load reads a roster YAML file.
func Load(ctx context.Context, path string) (*Roster, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Reading roster file", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "read roster %s", path), "check roster.path in the config")
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "parse roster %s", path)
	}

	logger.Info("Roster loaded", zap.String("path", path), zap.Int("drivers", len(r.Drivers)))
	return &r, nil
}
