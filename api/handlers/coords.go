package handlers

import (
	"net/http"

	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

// CoordsRequest represents a coordinate parsing request. Length and
// Circular describe the genome; Length is needed only when Circular.
type CoordsRequest struct {
	Coords   string `json:"coords"`
	Length   uint64 `json:"length"`
	Circular bool   `json:"circular"`
}

// CoordsResponse represents the parsed coordinates.
type CoordsResponse struct {
	Segments  []SegmentJSON `json:"segments"`
	Canonical string        `json:"canonical"`
	Start     uint64        `json:"start"`
	Stop      uint64        `json:"stop"`
	Length    uint64        `json:"length"`
	Strand    string        `json:"strand"`
}

// ParseCoordsHandler handles coordinate parsing requests.
func ParseCoordsHandler(w http.ResponseWriter, r *http.Request) {
	var req CoordsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Circular && req.Length == 0 {
		badRequest(w, "length is required for a circular genome")
		return
	}

	c, err := vannot.SegmentsFor(req.Coords, vannot.Genome{Length: req.Length, Circular: req.Circular})
	if err != nil {
		writeError(w, err)
		return
	}

	segs := make([]SegmentJSON, len(c))
	for i, s := range c {
		segs[i] = segmentJSON(s)
	}
	writeJSON(w, http.StatusOK, CoordsResponse{
		Segments:  segs,
		Canonical: vannot.FormatCoords(c),
		Start:     c.Start(),
		Stop:      c.Stop(),
		Length:    c.Length(),
		Strand:    c.Strand().String(),
	})
}

// RelationsRequest represents a segment relations request.
type RelationsRequest struct {
	Segments []string `json:"segments"`
	Length   uint64   `json:"length"`
	Circular bool     `json:"circular"`
}

// RelationsResponse holds the pairwise overlap lengths and adjacency.
type RelationsResponse struct {
	Overlap  [][]uint64 `json:"overlap"`
	Adjacent [][]bool   `json:"adjacent"`
}

// RelationsHandler handles segment relation requests.
func RelationsHandler(w http.ResponseWriter, r *http.Request) {
	var req RelationsRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Segments) == 0 {
		badRequest(w, "segments are required")
		return
	}

	segs := make([]coords.Segment, len(req.Segments))
	for i, text := range req.Segments {
		s, err := coords.ParseSegment(text)
		if err != nil {
			writeError(w, err)
			return
		}
		segs[i] = s
	}

	rel, err := vannot.PairwiseRelations(segs, vannot.Genome{Length: req.Length, Circular: req.Circular})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RelationsResponse{Overlap: rel.Overlap, Adjacent: rel.Adjacent})
}

// TilingRequest represents a feature tiling check.
type TilingRequest struct {
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
}

// TilingResponse reports the tiling check.
type TilingResponse struct {
	OK       bool    `json:"ok"`
	Expected *uint64 `json:"expected,omitempty"`
	Actual   *uint64 `json:"actual,omitempty"`
	Index    *int    `json:"index,omitempty"`
}

// TilingHandler handles feature tiling requests.
func TilingHandler(w http.ResponseWriter, r *http.Request) {
	var req TilingRequest
	if !decode(w, r, &req) {
		return
	}

	parent, err := vannot.ParseCoords(req.Parent)
	if err != nil {
		writeError(w, err)
		return
	}
	children := make([]vannot.Coords, len(req.Children))
	for i, text := range req.Children {
		if children[i], err = vannot.ParseCoords(text); err != nil {
			writeError(w, err)
			return
		}
	}

	check := vannot.ValidateTiling(parent, children)
	resp := TilingResponse{OK: check.OK()}
	if m := check.Mismatch; m != nil {
		resp.Expected, resp.Actual, resp.Index = &m.Expected, &m.Actual, &m.Index
	}
	writeJSON(w, http.StatusOK, resp)
}
