package main

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"

	"league_results_importer/internal/standings"
	"league_results_importer/internal/timecodec"
)

// handlePositions ranks results typed into the results form, where the
// fastest lap and pole flags are set by hand.
func (s *server) handlePositions(w http.ResponseWriter, r *http.Request) {
	var req positionsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, r, errors.Wrap(err, "invalid results"))
		return
	}

	results := make([]standings.Result, 0, len(req.Results))
	for _, e := range req.Results {
		results = append(results, e.result())
	}
	writeJSON(w, http.StatusOK, s.service.Rank(r.Context(), results, req.Qualifying))
}

func (s *server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, r, errors.Wrap(err, "invalid request"))
		return
	}

	resp := normalizeResponse{Times: make([]timecodec.Inspection, 0, len(req.Times))}
	for _, t := range req.Times {
		resp.Times = append(resp.Times, timecodec.Inspect(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}
