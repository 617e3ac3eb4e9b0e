package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/aria-lang/vannot-go/internal/alignment"
	"github.com/aria-lang/vannot-go/pkg/vannot"
)

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// SequenceInfoResponse describes one validated sequence.
type SequenceInfoResponse struct {
	ID                string  `json:"id"`
	Length            int     `json:"length"`
	GCContent         float64 `json:"gc_content"`
	Ambiguous         int     `json:"ambiguous"`
	ReverseComplement string  `json:"reverse_complement"`
}

// SequenceInfoHandler validates a sequence and reports its composition.
func SequenceInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}
	seq, err := vannot.NewSequence(req.ID, req.Sequence)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SequenceInfoResponse{
		ID:                seq.ID,
		Length:            seq.Len(),
		GCContent:         seq.GCContent(),
		Ambiguous:         seq.CountAmbiguous(),
		ReverseComplement: seq.ReverseComplement().Bases,
	})
}

// SequenceSetRequest represents a set of sequences.
type SequenceSetRequest struct {
	Sequences []string `json:"sequences"`
}

// SequenceSetStatsHandler handles sequence set statistics requests.
func SequenceSetStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceSetRequest
	if !decode(w, r, &req) {
		return
	}

	seqs := make([]*vannot.Sequence, 0, len(req.Sequences))
	for _, s := range req.Sequences {
		seq, err := vannot.NewSequence("", s)
		if err != nil {
			writeError(w, err)
			return
		}
		seqs = append(seqs, seq)
	}
	st, err := vannot.SequenceSetStats(seqs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":       st.Count,
		"total_bases": st.TotalBases,
		"min_length":  st.MinLength,
		"max_length":  st.MaxLength,
		"mean_length": st.MeanLength,
		"n50":         st.N50,
		"mean_gc":     st.MeanGCContent,
	})
}

// ConfidenceRequest holds a posterior probability row.
type ConfidenceRequest struct {
	Row       string  `json:"row"`
	Threshold float64 `json:"threshold"`
}

// ConfidenceResponse summarizes a posterior probability row.
type ConfidenceResponse struct {
	Residues     int     `json:"residues"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	Min          float64 `json:"min"`
	CertainRatio float64 `json:"certain_ratio"`
	Category     string  `json:"category"`
	LowPositions []int   `json:"low_positions,omitempty"`
}

// ConfidenceHandler handles confidence row summaries.
func ConfidenceHandler(w http.ResponseWriter, r *http.Request) {
	var req ConfidenceRequest
	if !decode(w, r, &req) {
		return
	}
	scores, err := vannot.DecodeConfidence(req.Row)
	if err != nil {
		writeError(w, err)
		return
	}
	s := scores.Summarize()
	resp := ConfidenceResponse{
		Residues:     s.Residues,
		Mean:         s.Mean,
		Median:       s.Median,
		Min:          s.Min,
		CertainRatio: s.CertainRatio,
		Category:     s.Category.String(),
	}
	if req.Threshold > 0 {
		resp.LowPositions = scores.LowPositions(req.Threshold)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ClassifyRequest asks which model a sequence is closest to.
type ClassifyRequest struct {
	Models   map[string]string `json:"models"`
	Sequence string            `json:"sequence"`
	K        int               `json:"k"`
}

// ClassifyHandler handles k-mer model classification requests.
func ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.K == 0 {
		req.K = 8
	}
	c, err := vannot.NewClassifier(req.K)
	if err != nil {
		writeError(w, err)
		return
	}
	// map order is random; add models sorted so ties are stable
	names := make([]string, 0, len(req.Models))
	for name := range req.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Add(name, strings.ToUpper(req.Models[name])); err != nil {
			writeError(w, err)
			return
		}
	}

	m, ok, err := c.Classify(strings.ToUpper(req.Sequence))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"matched": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"matched":  true,
		"model":    m.Name,
		"distance": m.Distance,
		"strand":   m.Strand.String(),
	})
}

// AlignRequest aligns one sequence to one model consensus.
type AlignRequest struct {
	ID        string `json:"id"`
	Consensus string `json:"consensus"`
	Sequence  string `json:"sequence"`
}

// AlignResponse is the outcome of one sequence.
type AlignResponse struct {
	ID       string   `json:"id"`
	Strand   string   `json:"strand"`
	Joined   bool     `json:"joined"`
	SeqRow   string   `json:"seq_row,omitempty"`
	ModelRow string   `json:"model_row,omitempty"`
	Inserts  string   `json:"inserts,omitempty"`
	Alerts   []string `json:"alerts,omitempty"`
}

// NewAlignHandler returns a handler that runs the full alignment workflow
// with the aligners and settings of cfg.
func NewAlignHandler(cfg *vannot.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AlignRequest
		if !decode(w, r, &req) {
			return
		}
		if req.ID == "" {
			req.ID = "query"
		}
		model, err := vannot.NewSequence("model", req.Consensus)
		if err != nil {
			writeError(w, err)
			return
		}
		seq, err := vannot.NewSequence(req.ID, req.Sequence)
		if err != nil {
			writeError(w, err)
			return
		}

		one := *cfg
		one.WorkerConcurrency = 1
		outcomes, err := vannot.Run(r.Context(), &one, []*vannot.Model{{Name: model.ID, Consensus: model.Bases}}, []*vannot.Sequence{seq})
		if err != nil {
			writeError(w, err)
			return
		}

		o := outcomes[0]
		resp := AlignResponse{ID: o.ID, Strand: o.Strand().String(), Joined: o.Joined()}
		if o.Result != nil {
			resp.SeqRow, resp.ModelRow = o.Result.Triple.Seq, o.Result.Triple.Model
			resp.Inserts = alignment.FormatInserts(o.Result.Inserts)
		}
		for _, a := range o.Alerts {
			resp.Alerts = append(resp.Alerts, a.String())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
