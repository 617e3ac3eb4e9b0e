// Package confidence reads the per-column posterior probability row of an
// alignment.
//
// Each aligned residue carries one character:
//
//	'0'       [0.00, 0.05)
//	'1'..'9'  [k/10 - 0.05, k/10 + 0.05)
//	'*'       [0.95, 1.00]
//
// Gap characters carry no residue and are skipped.
package confidence

import (
	"fmt"
	"sort"
)

// Certain is the character for a residue aligned with probability >= 0.95.
const Certain = '*'

// CertainThreshold is the lower bound of Certain.
const CertainThreshold = 0.95

// Category represents a confidence band.
type Category int

const (
	// Poor represents a mean below 0.5
	Poor Category = iota
	// Fair represents 0.5-0.85
	Fair
	// Good represents 0.85-0.95
	Good
	// High represents >= 0.95
	High
)

func (c Category) String() string {
	switch c {
	case Poor:
		return "Poor"
	case Fair:
		return "Fair"
	case Good:
		return "Good"
	case High:
		return "High"
	default:
		return "Unknown"
	}
}

// ConfidenceError is the base error type for confidence rows.
type ConfidenceError interface {
	error
	IsConfidenceError()
}

// EmptyRowError is returned when a row holds no residue.
type EmptyRowError struct{}

func (e *EmptyRowError) Error() string {
	return "confidence row holds no residue"
}
func (e *EmptyRowError) IsConfidenceError() {}

// InvalidEncodingError is returned for a character outside the encoding.
// Column is 1-based.
type InvalidEncodingError struct {
	Column int
	Char   byte
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid confidence character '%c' in column %d", e.Char, e.Column)
}
func (e *InvalidEncodingError) IsConfidenceError() {}

// Scores holds the decoded probabilities of the residues of one row.
type Scores struct {
	Values []float64
	// certain counts residues encoded as Certain.
	certain int
}

// Decode reads a confidence row.
func Decode(row string) (*Scores, error) {
	s := &Scores{Values: make([]float64, 0, len(row))}
	for i := 0; i < len(row); i++ {
		c := row[i]
		switch {
		case c == '.' || c == '-' || c == '~':
			continue
		case c == Certain:
			s.Values = append(s.Values, 0.975)
			s.certain++
		case c == '0':
			s.Values = append(s.Values, 0.025)
		case c >= '1' && c <= '9':
			s.Values = append(s.Values, float64(c-'0')/10)
		default:
			return nil, &InvalidEncodingError{Column: i + 1, Char: c}
		}
	}
	if len(s.Values) == 0 {
		return nil, &EmptyRowError{}
	}
	return s, nil
}

// Len returns the number of residues.
func (s *Scores) Len() int {
	return len(s.Values)
}

// Average returns the mean probability.
func (s *Scores) Average() float64 {
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Median returns the median probability.
func (s *Scores) Median() float64 {
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Min returns the lowest probability.
func (s *Scores) Min() float64 {
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// CertainRatio returns the fraction of residues encoded as Certain.
func (s *Scores) CertainRatio() float64 {
	return float64(s.certain) / float64(len(s.Values))
}

// LowPositions returns the 1-based residue indices below threshold.
func (s *Scores) LowPositions(threshold float64) []int {
	positions := make([]int, 0)
	for i, v := range s.Values {
		if v < threshold {
			positions = append(positions, i+1)
		}
	}
	return positions
}

// Categorize bands the mean probability.
func (s *Scores) Categorize() Category {
	avg := s.Average()
	switch {
	case avg >= CertainThreshold:
		return High
	case avg >= 0.85:
		return Good
	case avg >= 0.5:
		return Fair
	default:
		return Poor
	}
}

// Summarize computes the statistics reported per alignment.
func (s *Scores) Summarize() *Summary {
	return &Summary{
		Residues:     len(s.Values),
		Mean:         s.Average(),
		Median:       s.Median(),
		Min:          s.Min(),
		CertainRatio: s.CertainRatio(),
		Category:     s.Categorize(),
	}
}

func (s *Scores) String() string {
	return fmt.Sprintf("Confidence { residues: %d, mean: %.3f }", len(s.Values), s.Average())
}

// Summary is the confidence report of one alignment.
type Summary struct {
	Residues     int
	Mean         float64
	Median       float64
	Min          float64
	CertainRatio float64
	Category     Category
}

func (s *Summary) String() string {
	return fmt.Sprintf("ConfidenceSummary { residues: %d, mean: %.3f, median: %.3f, min: %.3f, certain: %.2f%%, category: %s }",
		s.Residues, s.Mean, s.Median, s.Min, s.CertainRatio*100, s.Category)
}
