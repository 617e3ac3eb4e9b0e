// Package handlers provides HTTP handlers for the vannot API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/internal/indel"
	"github.com/aria-lang/vannot-go/internal/invariant"
	"github.com/aria-lang/vannot-go/internal/join"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "request"})
}

// writeError maps domain errors to status codes: grammar errors are bad
// requests, splice failures and inconsistent inputs are unprocessable.
func writeError(w http.ResponseWriter, err error) {
	var (
		mc *coords.MalformedCoordinatesError
		mt *indel.MalformedTokenError
		sf *join.SpliceFailure
		iv *invariant.Violation
	)
	switch {
	case errors.As(err, &mc), errors.As(err, &mt):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "grammar"})
	case errors.As(err, &sf):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "splice"})
	case errors.As(err, &iv):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: "invariant"})
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid request body")
		return false
	}
	return true
}

// SegmentJSON is a segment on the wire.
type SegmentJSON struct {
	Start  uint64 `json:"start"`
	Stop   uint64 `json:"stop"`
	Strand string `json:"strand"`
	Text   string `json:"text"`
}

func segmentJSON(s coords.Segment) SegmentJSON {
	return SegmentJSON{Start: s.Start, Stop: s.Stop, Strand: s.Strand.String(), Text: coords.FormatSegment(s)}
}
