package main

import (
	"league_results_importer/internal/standings"
	"league_results_importer/internal/timecodec"
)

// importOptions holds the raw session switches of an upload request.
type importOptions struct {
	Qualifying        string `validate:"omitempty,boolean"`
	RaceTimesRequired string `validate:"omitempty,boolean"`
}

type positionEntry struct {
	DriverID           string `json:"driver_id"`
	Driver             string `json:"driver" validate:"required"`
	RaceTime           string `json:"race_time" validate:"racetime"`
	RaceTimeDifference string `json:"race_time_difference" validate:"racetime"`
	FastestLapTime     string `json:"fastest_lap_time" validate:"racetime"`
	DNF                bool   `json:"dnf"`
	HasFastestLap      bool   `json:"has_fastest_lap"`
	HasPole            bool   `json:"has_pole"`
}

func (e positionEntry) result() standings.Result {
	return standings.Result{
		DriverID:           e.DriverID,
		Driver:             e.Driver,
		RaceTime:           timecodec.Normalize(e.RaceTime),
		RaceTimeDifference: timecodec.Normalize(e.RaceTimeDifference),
		FastestLapTime:     timecodec.Normalize(e.FastestLapTime),
		DNF:                e.DNF,
		HasFastestLap:      e.HasFastestLap,
		HasPole:            e.HasPole,
	}
}

type positionsRequest struct {
	Qualifying bool            `json:"qualifying"`
	Results    []positionEntry `json:"results" validate:"required,min=1,dive"`
}

type normalizeRequest struct {
	Times []string `json:"times" validate:"required,min=1,max=500"`
}

type normalizeResponse struct {
	Times []timecodec.Inspection `json:"times"`
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}
