package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/vannot-go/internal/config"
)

func post(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", &buf))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestParseCoordsHandler(t *testing.T) {
	tests := []struct {
		name      string
		req       CoordsRequest
		status    int
		canonical string
		strand    string
	}{
		{"simple", CoordsRequest{Coords: "100..200"}, http.StatusOK, "100..200", "+"},
		{"minus join", CoordsRequest{Coords: "complement(join(50..60,10..20))"}, http.StatusOK, "complement(join(50..60,10..20))", "-"},
		{"origin spanning", CoordsRequest{Coords: "join(2309..3182,1..1625)", Length: 3182, Circular: true}, http.StatusOK, "2309..4807", "+"},
		{"malformed", CoordsRequest{Coords: "10..x"}, http.StatusBadRequest, "", ""},
		{"circular without length", CoordsRequest{Coords: "1..10", Circular: true}, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, ParseCoordsHandler, tt.req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				var e ErrorResponse
				decodeBody(t, rec, &e)
				assert.NotEmpty(t, e.Error)
				return
			}
			var resp CoordsResponse
			decodeBody(t, rec, &resp)
			assert.Equal(t, tt.canonical, resp.Canonical)
			assert.Equal(t, tt.strand, resp.Strand)
		})
	}
}

func TestRelationsHandler(t *testing.T) {
	rec := post(t, RelationsHandler, RelationsRequest{Segments: []string{"10..20", "15..25", "26..40"}, Length: 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RelationsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, uint64(6), resp.Overlap[0][1])
	assert.Equal(t, uint64(6), resp.Overlap[1][0])
	assert.True(t, resp.Adjacent[1][2])
	assert.False(t, resp.Adjacent[0][2])

	rec = post(t, RelationsHandler, RelationsRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTilingHandler(t *testing.T) {
	rec := post(t, TilingHandler, TilingRequest{Parent: "1..300", Children: []string{"1..150", "151..297"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var ok TilingResponse
	decodeBody(t, rec, &ok)
	assert.True(t, ok.OK)
	assert.Nil(t, ok.Expected)

	rec = post(t, TilingHandler, TilingRequest{Parent: "1..300", Children: []string{"1..150", "152..297"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var bad TilingResponse
	decodeBody(t, rec, &bad)
	assert.False(t, bad.OK)
	require.NotNil(t, bad.Expected)
	assert.Equal(t, uint64(151), *bad.Expected)
	assert.Equal(t, uint64(152), *bad.Actual)
	assert.Equal(t, 1, *bad.Index)
}

func TestSeedHandler(t *testing.T) {
	rec := post(t, SeedHandler, SeedRequest{Model: "1..10", Seq: "1..11", Insertions: "Q5:S5+1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SeedResponse
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Pairs, 2)
	assert.Equal(t, "1..5", resp.Seed.Model.Text)
	assert.Equal(t, "7..11", resp.Pairs[1].Seq.Text)

	rec = post(t, SeedHandler, SeedRequest{Model: "1..10", Seq: "1..11", Insertions: "Q5:S5-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var e ErrorResponse
	decodeBody(t, rec, &e)
	assert.Equal(t, "grammar", e.Kind)

	rec = post(t, SeedHandler, SeedRequest{Model: "1..10", Seq: "1..12", Insertions: "Q5:S5+1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFlanksHandler(t *testing.T) {
	rec := post(t, FlanksHandler, FlanksRequest{SeqLen: 10, Seed: "4..7", Width: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]FlankJSON
	decodeBody(t, rec, &resp)
	require.Len(t, resp["flanks"], 2)
	assert.Equal(t, "5'", resp["flanks"][0].Side)
	assert.Equal(t, "1..5", resp["flanks"][0].Seq.Text)
	assert.Equal(t, "6..10", resp["flanks"][1].Seq.Text)

	rec = post(t, FlanksHandler, FlanksRequest{SeqLen: 10, Seed: "4..7"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func str(s string) *string { return &s }

func joinRequest() JoinRequest {
	return JoinRequest{
		Consensus: "AAACCCGGGTTT",
		Sequence:  "TACCCGGTTA",
		SeedModel: "5..8",
		SeedSeq:   "4..7",
		Five:      &FlankAlignment{SeqRow: "TACCC", ModelRow: ".ACCC", Confidence: str("78999"), Model: "3..6", Seq: "1..5"},
		Three:     &FlankAlignment{SeqRow: "GG-TTA", ModelRow: "GGGTT.", Confidence: str("**.987"), Model: "7..11", Seq: "6..10"},
	}
}

func TestJoinHandler(t *testing.T) {
	rec := post(t, JoinHandler, joinRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp JoinResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "--TACCCGG-TTA-", resp.SeqRow)
	assert.Equal(t, "AA.ACCCGGGTT.T", resp.ModelRow)
	require.NotNil(t, resp.Confidence)
	assert.Equal(t, "..789****.987.", *resp.Confidence)
	assert.Equal(t, "2:1:1;11:10:1", resp.Inserts)
	assert.Equal(t, "1..12", resp.Model.Text)

	req := joinRequest()
	req.Five.Model = "4..7"
	rec = post(t, JoinHandler, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var e ErrorResponse
	decodeBody(t, rec, &e)
	assert.Equal(t, "splice", e.Kind)

	req = joinRequest()
	req.Three.ModelRow = "GGGTT"
	rec = post(t, JoinHandler, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSequenceHandlers(t *testing.T) {
	rec := post(t, SequenceInfoHandler, SequenceRequest{ID: "s", Sequence: "acgtn"})
	require.Equal(t, http.StatusOK, rec.Code)
	var info SequenceInfoResponse
	decodeBody(t, rec, &info)
	assert.Equal(t, 5, info.Length)
	assert.Equal(t, 1, info.Ambiguous)
	assert.Equal(t, "NACGT", info.ReverseComplement)

	rec = post(t, SequenceInfoHandler, SequenceRequest{Sequence: "ACGZ"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, SequenceSetStatsHandler, SequenceSetRequest{Sequences: []string{"ACGT", "ACGTACGT"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var st map[string]interface{}
	decodeBody(t, rec, &st)
	assert.Equal(t, float64(2), st["count"])
	assert.Equal(t, float64(12), st["total_bases"])
}

func TestConfidenceHandler(t *testing.T) {
	rec := post(t, ConfidenceHandler, ConfidenceRequest{Row: "**..5*", Threshold: 0.6})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConfidenceResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 4, resp.Residues)
	assert.Equal(t, 0.75, resp.CertainRatio)
	assert.Equal(t, []int{3}, resp.LowPositions)

	rec = post(t, ConfidenceHandler, ConfidenceRequest{Row: "..."})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClassifyHandler(t *testing.T) {
	rec := post(t, ClassifyHandler, ClassifyRequest{
		Models:   map[string]string{"a": "GATTACAGGCTTAACCGT", "b": "CCCCCCCCCCCCCCCC"},
		Sequence: "ACGGTTAAGCCTGTAATC",
		K:        4,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	assert.Equal(t, true, resp["matched"])
	assert.Equal(t, "a", resp["model"])
	assert.Equal(t, "-", resp["strand"])
}

func TestAlignHandler(t *testing.T) {
	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	h := NewAlignHandler(cfg)

	rec := post(t, h, AlignRequest{Consensus: "GATTACAGGCTTAACCGT", Sequence: "GATTACAGGCTTAACCGT"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp AlignResponse
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Joined)
	assert.Equal(t, "+", resp.Strand)
	assert.Equal(t, "GATTACAGGCTTAACCGT", resp.SeqRow)
	assert.Empty(t, resp.Alerts)

	rec = post(t, h, AlignRequest{Consensus: "CCCC", Sequence: "AAAA"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.False(t, resp.Joined)
	require.Len(t, resp.Alerts, 1)
	assert.Contains(t, resp.Alerts[0], "no-hit")
}
