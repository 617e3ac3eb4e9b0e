package pipeline

import "fmt"

// AlertKind classifies a per-sequence problem that does not stop the run.
type AlertKind int

const (
	// NoHit means no model or no seed hit was found.
	NoHit AlertKind = iota
	// AlignerFailure means an aligner failed on this sequence.
	AlignerFailure
	// Splice means a flank could not be joined to the seed.
	Splice
	// JoinFailure covers other non-fatal join problems.
	JoinFailure
	// LowConfidence means the joined alignment is below the confidence threshold.
	LowConfidence
)

func (k AlertKind) String() string {
	switch k {
	case NoHit:
		return "no-hit"
	case AlignerFailure:
		return "aligner-failure"
	case Splice:
		return "splice-failure"
	case JoinFailure:
		return "join-failure"
	case LowConfidence:
		return "low-confidence"
	default:
		return "unknown"
	}
}

// Alert is one recorded per-sequence problem.
type Alert struct {
	Kind AlertKind
	Err  error
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %v", a.Kind, a.Err)
}
