package handlers

import (
	"net/http"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/internal/coords"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

// SeedRequest describes an approximate hit.
type SeedRequest struct {
	Model      string `json:"model"`
	Seq        string `json:"seq"`
	Insertions string `json:"insertions"`
	Deletions  string `json:"deletions"`
}

// PairJSON is one ungapped region.
type PairJSON struct {
	Model SegmentJSON `json:"model"`
	Seq   SegmentJSON `json:"seq"`
}

// SeedResponse lists the ungapped regions and the chosen seed.
type SeedResponse struct {
	Pairs []PairJSON `json:"pairs"`
	Seed  PairJSON   `json:"seed"`
}

// SeedHandler handles ungapped region requests.
func SeedHandler(w http.ResponseWriter, r *http.Request) {
	var req SeedRequest
	if !decode(w, r, &req) {
		return
	}
	model, err := coords.ParseSegment(req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	seq, err := coords.ParseSegment(req.Seq)
	if err != nil {
		writeError(w, err)
		return
	}

	pairs, seed, err := vannot.Ungapped(model, seq, req.Insertions, req.Deletions)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := SeedResponse{Pairs: make([]PairJSON, len(pairs)), Seed: pairJSON(seed)}
	for i, p := range pairs {
		resp.Pairs[i] = pairJSON(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func pairJSON(p vannot.Pair) PairJSON {
	return PairJSON{Model: segmentJSON(p.Model), Seq: segmentJSON(p.Seq)}
}

// FlanksRequest asks which flanks of a sequence need realignment.
type FlanksRequest struct {
	SeqLen uint64 `json:"seq_len"`
	Seed   string `json:"seed"`
	Width  uint64 `json:"width"`
}

// FlankJSON is one flank request.
type FlankJSON struct {
	Side string      `json:"side"`
	Seq  SegmentJSON `json:"seq"`
}

// FlanksHandler handles flank selection requests.
func FlanksHandler(w http.ResponseWriter, r *http.Request) {
	var req FlanksRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Width < 1 {
		badRequest(w, "width must be at least 1")
		return
	}
	seed, err := coords.ParseSegment(req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	if seed.Strand != coords.Plus || seed.Stop > req.SeqLen {
		badRequest(w, "seed must be an ascending span within the sequence")
		return
	}

	reqs := vannot.SelectFlanks(req.SeqLen, seed, req.Width)
	out := make([]FlankJSON, len(reqs))
	for i, fr := range reqs {
		out[i] = FlankJSON{Side: fr.Side.String(), Seq: segmentJSON(fr.Seq)}
	}
	writeJSON(w, http.StatusOK, map[string][]FlankJSON{"flanks": out})
}

// FlankAlignment is one flank alignment in a join request.
type FlankAlignment struct {
	SeqRow     string  `json:"seq_row"`
	ModelRow   string  `json:"model_row"`
	Confidence *string `json:"confidence,omitempty"`
	Model      string  `json:"model"`
	Seq        string  `json:"seq"`
}

func (f *FlankAlignment) flank() (*vannot.Flank, error) {
	if f == nil {
		return nil, nil
	}
	t, err := alignment.NewTriple(f.SeqRow, f.ModelRow, f.Confidence)
	if err != nil {
		return nil, err
	}
	model, err := coords.ParseSegment(f.Model)
	if err != nil {
		return nil, err
	}
	seq, err := coords.ParseSegment(f.Seq)
	if err != nil {
		return nil, err
	}
	return &vannot.Flank{Triple: t, Model: model, Seq: seq}, nil
}

// JoinRequest carries a seed and its flank alignments.
type JoinRequest struct {
	Consensus string          `json:"consensus"`
	Sequence  string          `json:"sequence"`
	SeedModel string          `json:"seed_model"`
	SeedSeq   string          `json:"seed_seq"`
	Five      *FlankAlignment `json:"five,omitempty"`
	Three     *FlankAlignment `json:"three,omitempty"`
}

// JoinResponse is the joined alignment.
type JoinResponse struct {
	SeqRow     string      `json:"seq_row"`
	ModelRow   string      `json:"model_row"`
	Confidence *string     `json:"confidence,omitempty"`
	Inserts    string      `json:"inserts"`
	Model      SegmentJSON `json:"model"`
	Seq        SegmentJSON `json:"seq"`
	CIGAR      string      `json:"cigar"`
}

// JoinHandler handles alignment join requests.
func JoinHandler(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if !decode(w, r, &req) {
		return
	}
	seq, err := vannot.NewSequence("query", req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	in := vannot.JoinInput{Consensus: req.Consensus, SeqLen: uint64(seq.Len())}
	if in.SeedModel, err = coords.ParseSegment(req.SeedModel); err != nil {
		writeError(w, err)
		return
	}
	if in.SeedSeq, err = coords.ParseSegment(req.SeedSeq); err != nil {
		writeError(w, err)
		return
	}
	if in.SeedBases, err = seq.Sub(in.SeedSeq); err != nil {
		writeError(w, err)
		return
	}
	if in.Five, err = req.Five.flank(); err != nil {
		writeError(w, err)
		return
	}
	if in.Three, err = req.Three.flank(); err != nil {
		writeError(w, err)
		return
	}

	res, err := vannot.Join(in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, JoinResponse{
		SeqRow:     res.Triple.Seq,
		ModelRow:   res.Triple.Model,
		Confidence: res.Triple.Confidence,
		Inserts:    alignment.FormatInserts(res.Inserts),
		Model:      segmentJSON(res.Model),
		Seq:        segmentJSON(res.Seq),
		CIGAR:      res.Triple.ToCIGAR(),
	})
}
