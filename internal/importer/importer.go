// Package importer runs a results CSV through parsing, roster matching and
// position resolution, announcing the outcome on an event bus.
package importer

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"league_results_importer/internal/csvimport"
	"league_results_importer/internal/events"
	"league_results_importer/internal/roster"
	"league_results_importer/internal/standings"
	"league_results_importer/internal/telemetry"
	"league_results_importer/internal/usererr"
)

type Result struct {
	ImportID       string                   `json:"import_id" yaml:"import_id"`
	Session        csvimport.SessionContext `json:"session" yaml:"session"`
	Standings      standings.Standings      `json:"standings" yaml:"standings"`
	MissingDrivers []string                 `json:"missing_drivers,omitempty" yaml:"missing_drivers,omitempty"`
	Warnings       []string                 `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Failure is the payload of events.ResultsImportFailed.
type Failure struct {
	ImportID string
	Err      error
}

type Service struct {
	roster *roster.Roster
	bus    *events.Bus
}

// NewService wires the importer. A nil roster keeps every CSV driver as is.
func NewService(r *roster.Roster, bus *events.Bus) *Service {
	if bus == nil {
		bus = events.NewBus(nil)
	}
	return &Service{roster: r, bus: bus}
}

func (s *Service) Bus() *events.Bus { return s.bus }

// Import parses a results CSV and ranks it. Parse failures come back as user
// errors carrying the parser's message.
func (s *Service) Import(ctx context.Context, r io.Reader, session csvimport.SessionContext) (*Result, error) {
	importID := uuid.New().String()
	ctx, span := telemetry.Start(ctx, "results.import",
		attribute.String("import_id", importID),
		attribute.Bool("qualifying", session.IsQualifying),
		attribute.Bool("race_times_required", session.RaceTimesRequired),
	)
	defer span.End()

	logger := otelzap.Ctx(ctx)
	start := time.Now()

	rows, err := csvimport.ParseReader(r, session)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("Results CSV rejected", zap.String("import_id", importID), zap.Error(err))
		s.bus.Publish(ctx, events.ResultsImportFailed, Failure{ImportID: importID, Err: err})
		return nil, usererr.NewExpectedError(err)
	}

	var matched roster.MatchResult
	if s.roster != nil {
		matched = s.roster.Match(rows)
	} else {
		matched = roster.Passthrough(rows)
	}

	result := &Result{
		ImportID:       importID,
		Session:        session,
		MissingDrivers: matched.Missing,
	}
	if w := matched.Warning(); w != "" {
		result.Warnings = append(result.Warnings, w)
		logger.Warn("Drivers missing from roster", zap.String("import_id", importID), zap.Strings("drivers", matched.Missing))
		s.bus.Publish(ctx, events.ResultsDriversMissing, matched.Missing)
	}

	result.Standings = standings.Resolve(toResults(matched.Entries), session.IsQualifying)

	span.SetAttributes(
		attribute.Int("rows", len(rows)),
		attribute.Int("classified", len(result.Standings.Classified)),
	)
	logger.Info("Results imported",
		zap.String("import_id", importID),
		zap.Int("rows", len(rows)),
		zap.Int("classified", len(result.Standings.Classified)),
		zap.Int("unclassified", len(result.Standings.Unclassified)),
		zap.Duration("duration", time.Since(start)))

	s.bus.Publish(ctx, events.ResultsImported, result)
	return result, nil
}

// Rank resolves positions for results entered by hand.
func (s *Service) Rank(ctx context.Context, results []standings.Result, qualifying bool) standings.Standings {
	ctx, span := telemetry.Start(ctx, "results.rank", attribute.Int("results", len(results)))
	defer span.End()

	out := standings.Resolve(results, qualifying)
	otelzap.Ctx(ctx).Debug("Results ranked",
		zap.Bool("qualifying", qualifying),
		zap.Int("classified", len(out.Classified)))
	return out
}

func toResults(entries []roster.Entry) []standings.Result {
	out := make([]standings.Result, 0, len(entries))
	for _, e := range entries {
		out = append(out, standings.Result{
			DriverID:           e.Driver.ID,
			Driver:             e.Row.Driver,
			RaceTime:           e.RaceTime,
			RaceTimeDifference: e.OriginalRaceTimeDifference,
			FastestLapTime:     e.FastestLapTime,
			DNF:                e.DNF,
		})
	}
	return out
}
