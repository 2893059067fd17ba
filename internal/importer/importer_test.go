package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league_results_importer/internal/csvimport"
	"league_results_importer/internal/events"
	"league_results_importer/internal/roster"
	"league_results_importer/internal/standings"
	"league_results_importer/internal/usererr"
)

const raceCSV = `driver,race_time,original_race_time_difference,fastest_lap_time
JSmith,1:23:45.678,,1:30.100
JDoe,,+2.104,1:30.000
Ghost,,1 lap,1:31.000
111,,DNF,1:35.000
`

var race = csvimport.SessionContext{RaceTimesRequired: true}

func testRoster() *roster.Roster {
	return &roster.Roster{Drivers: []roster.Driver{
		{ID: "d1", Name: "John Smith", Nickname: "JSmith"},
		{ID: "d2", Name: "Jane Doe", Nickname: "JDoe"},
		{ID: "d3", Name: "Max", Nickname: "Maxi", DiscordID: "111"},
	}}
}

func TestImport_WithRoster(t *testing.T) {
	bus := events.NewBus(nil)
	var imported []*Result
	var missing []string
	bus.Subscribe(events.ResultsImported, func(ctx context.Context, e events.Event) {
		imported = append(imported, e.Payload.(*Result))
	})
	bus.Subscribe(events.ResultsDriversMissing, func(ctx context.Context, e events.Event) {
		missing = e.Payload.([]string)
	})

	svc := NewService(testRoster(), bus)
	result, err := svc.Import(context.Background(), strings.NewReader(raceCSV), race)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ImportID)
	assert.Equal(t, []string{"Ghost"}, result.MissingDrivers)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "1 driver(s)")

	s := result.Standings
	require.Len(t, s.Classified, 2)
	assert.Equal(t, "JSmith", s.Classified[0].Driver)
	assert.Equal(t, "d1", s.Classified[0].DriverID)
	assert.Equal(t, "01:23:47.782", s.Classified[1].ResolvedTime)
	require.Len(t, s.Unclassified, 1)
	assert.Equal(t, "d3", s.Unclassified[0].DriverID)
	assert.True(t, s.Unclassified[0].DNF)

	require.Len(t, imported, 1)
	assert.Same(t, result, imported[0])
	assert.Equal(t, []string{"Ghost"}, missing)
}

func TestImport_WithoutRoster(t *testing.T) {
	svc := NewService(nil, nil)
	result, err := svc.Import(context.Background(), strings.NewReader(raceCSV), race)
	require.NoError(t, err)

	assert.Empty(t, result.MissingDrivers)
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Standings.Classified, 3)
	assert.Equal(t, "Ghost", result.Standings.Classified[2].Driver)
	assert.Equal(t, "01:25:17.178", result.Standings.Classified[2].ResolvedTime)
}

func TestImport_ParseFailure(t *testing.T) {
	bus := events.NewBus(nil)
	var failure Failure
	bus.Subscribe(events.ResultsImportFailed, func(ctx context.Context, e events.Event) {
		failure = e.Payload.(Failure)
	})
	imported := 0
	bus.Subscribe(events.ResultsImported, func(ctx context.Context, e events.Event) { imported++ })

	svc := NewService(nil, bus)
	result, err := svc.Import(context.Background(), strings.NewReader("driver\nJohn"), csvimport.SessionContext{IsQualifying: true, RaceTimesRequired: true})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, usererr.IsExpectedUserError(err))
	assert.True(t, errors.Is(err, csvimport.ErrMissingColumns))
	assert.Contains(t, err.Error(), "qualifying sessions")

	assert.NotEmpty(t, failure.ImportID)
	assert.Error(t, failure.Err)
	assert.Equal(t, 0, imported)
}

func TestRank(t *testing.T) {
	svc := NewService(nil, nil)
	s := svc.Rank(context.Background(), []standings.Result{
		{Driver: "B", FastestLapTime: "1:31.000", HasPole: true},
		{Driver: "A", FastestLapTime: "1:30.000"},
	}, true)

	require.Len(t, s.Classified, 2)
	assert.Equal(t, "A", s.Classified[0].Driver)
	assert.True(t, s.Classified[1].HasPole)
}
