package main

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"league_results_importer/internal/csvimport"
	"league_results_importer/internal/importer"
	"league_results_importer/internal/protocol"
)

func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.importUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleProtocolUpload(w http.ResponseWriter, r *http.Request) {
	result, ok := s.importUpload(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := protocol.Write(&buf, result.Standings); err != nil {
		writeError(w, r, err)
		return
	}

	name := "race-protocol.xlsx"
	if result.Session.IsQualifying {
		name = "qualifying-protocol.xlsx"
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Transfer-Encoding", "binary")
	w.Header().Set("X-Import-Id", result.ImportID)
	if len(result.MissingDrivers) > 0 {
		w.Header().Set("X-Missing-Drivers", strings.Join(result.MissingDrivers, ","))
	}
	_, _ = buf.WriteTo(w)
}

// importUpload runs the uploaded CSV through the importer. It writes the error
// response itself and reports false when there is nothing left to do.
func (s *server) importUpload(w http.ResponseWriter, r *http.Request) (*importer.Result, bool) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		badRequest(w, r, err)
		return nil, false
	}

	file, err := uploadedCSV(r)
	if err != nil {
		badRequest(w, r, err)
		return nil, false
	}
	defer file.Close()

	result, err := s.service.Import(r.Context(), file, session)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return result, true
}

// sessionFromRequest reads qualifying and race_times_required from the query
// or form. race_times_required defaults to true.
func (s *server) sessionFromRequest(r *http.Request) (csvimport.SessionContext, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
			return csvimport.SessionContext{}, errors.Wrap(err, "parse multipart form")
		}
	} else if err := r.ParseForm(); err != nil {
		return csvimport.SessionContext{}, errors.Wrap(err, "parse form")
	}

	opts := importOptions{
		Qualifying:        r.FormValue("qualifying"),
		RaceTimesRequired: r.FormValue("race_times_required"),
	}
	if err := s.validate.Struct(opts); err != nil {
		return csvimport.SessionContext{}, errors.Wrap(err, "qualifying and race_times_required must be booleans")
	}

	session := csvimport.SessionContext{RaceTimesRequired: true}
	if opts.Qualifying != "" {
		session.IsQualifying, _ = strconv.ParseBool(opts.Qualifying)
	}
	if opts.RaceTimesRequired != "" {
		session.RaceTimesRequired, _ = strconv.ParseBool(opts.RaceTimesRequired)
	}
	return session, nil
}

// uploadedCSV accepts a multipart "file" field, a "csv" form field or the raw
// request body.
func uploadedCSV(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		file, header, err := r.FormFile("file")
		if errors.Is(err, http.ErrMissingFile) {
			if text := r.FormValue("csv"); text != "" {
				return io.NopCloser(strings.NewReader(text)), nil
			}
			return nil, errors.New("upload a CSV in the \"file\" field")
		}
		if err != nil {
			return nil, errors.Wrap(err, "read uploaded file")
		}
		otelzap.Ctx(r.Context()).Debug("CSV uploaded",
			zap.String("filename", header.Filename),
			zap.Int64("size", header.Size))
		return file, nil
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return io.NopCloser(strings.NewReader(r.PostFormValue("csv"))), nil
	default:
		return r.Body, nil
	}
}
