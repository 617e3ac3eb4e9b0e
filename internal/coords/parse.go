package coords

import (
	"strconv"
	"strings"
)

const (
	complementOpen = "complement("
	joinOpen       = "join("
)

// ParseSegment parses one segment: "<start>..<stop>" or "<pos>", optionally
// wrapped in complement(...). A bare pair with start > stop is read as a
// minus-strand segment.
func ParseSegment(text string) (Segment, error) {
	t := strings.TrimSpace(text)
	if inner, ok := unwrap(t, complementOpen); ok {
		lo, hi, err := parseRange(text, inner)
		if err != nil {
			return Segment{}, err
		}
		if lo > hi {
			return Segment{}, &MalformedCoordinatesError{Text: text, Reason: "descending range inside complement()"}
		}
		return Segment{Start: hi, Stop: lo, Strand: Minus}, nil
	}
	if strings.HasPrefix(t, joinOpen) {
		return Segment{}, &MalformedCoordinatesError{Text: text, Reason: "join() holds more than one segment"}
	}
	start, stop, err := parseRange(text, t)
	if err != nil {
		return Segment{}, err
	}
	return NewSegment(start, stop), nil
}

// ParseCoords parses a full coordinate string, including join(...),
// complement(join(...)) and join(complement(...),...).
func ParseCoords(text string) (Coords, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil, &MalformedCoordinatesError{Text: text, Reason: "empty"}
	}

	if inner, ok := unwrap(t, complementOpen); ok && strings.HasPrefix(inner, joinOpen) {
		fwd, err := ParseCoords(inner)
		if err != nil {
			return nil, err
		}
		out := make(Coords, len(fwd))
		for i, s := range fwd {
			if s.Strand != Plus {
				return nil, &MalformedCoordinatesError{Text: text, Reason: "nested complement"}
			}
			out[len(fwd)-1-i] = s.Complement()
		}
		return out, nil
	}

	if inner, ok := unwrap(t, joinOpen); ok {
		parts, err := splitTop(text, inner)
		if err != nil {
			return nil, err
		}
		out := make(Coords, 0, len(parts))
		for _, p := range parts {
			s, err := ParseSegment(p)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}

	s, err := ParseSegment(t)
	if err != nil {
		return nil, err
	}
	return Coords{s}, nil
}

// FormatSegment is the inverse of ParseSegment for canonical segments.
func FormatSegment(s Segment) string {
	if s.Strand == Minus {
		lo, hi := s.Bounds()
		return complementOpen + bare(lo, hi) + ")"
	}
	return bare(s.Start, s.Stop)
}

// FormatCoords is the inverse of ParseCoords for canonical strings.
func FormatCoords(c Coords) string {
	switch {
	case len(c) == 0:
		return ""
	case len(c) == 1:
		return FormatSegment(c[0])
	case c.Strand() == Minus:
		parts := make([]string, len(c))
		for i, s := range c {
			lo, hi := s.Bounds()
			parts[len(c)-1-i] = bare(lo, hi)
		}
		return complementOpen + joinOpen + strings.Join(parts, ",") + "))"
	}
	parts := make([]string, len(c))
	for i, s := range c {
		parts[i] = FormatSegment(s)
	}
	return joinOpen + strings.Join(parts, ",") + ")"
}

func bare(start, stop uint64) string {
	if start == stop {
		return strconv.FormatUint(start, 10)
	}
	return strconv.FormatUint(start, 10) + ".." + strconv.FormatUint(stop, 10)
}

func unwrap(t, open string) (string, bool) {
	if strings.HasPrefix(t, open) && strings.HasSuffix(t, ")") {
		return strings.TrimSpace(t[len(open) : len(t)-1]), true
	}
	return "", false
}

// splitTop splits on commas that are not nested inside parentheses.
func splitTop(text, inner string) ([]string, error) {
	var parts []string
	depth, last := 0, 0
	for i, c := range inner {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, &MalformedCoordinatesError{Text: text, Reason: "unbalanced parentheses"}
			}
		case ',':
			if depth == 0 {
				parts = append(parts, inner[last:i])
				last = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, &MalformedCoordinatesError{Text: text, Reason: "unbalanced parentheses"}
	}
	parts = append(parts, inner[last:])
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return nil, &MalformedCoordinatesError{Text: text, Reason: "empty segment in join()"}
		}
	}
	return parts, nil
}

func parseRange(text, t string) (uint64, uint64, error) {
	if a, b, ok := strings.Cut(t, ".."); ok {
		start, err := parsePos(text, a)
		if err != nil {
			return 0, 0, err
		}
		stop, err := parsePos(text, b)
		if err != nil {
			return 0, 0, err
		}
		return start, stop, nil
	}
	pos, err := parsePos(text, t)
	if err != nil {
		return 0, 0, err
	}
	return pos, pos, nil
}

func parsePos(text, s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &MalformedCoordinatesError{Text: text, Reason: "missing position"}
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &MalformedCoordinatesError{Text: text, Reason: "position " + strconv.Quote(s) + " is not a non-negative integer"}
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &MalformedCoordinatesError{Text: text, Reason: err.Error()}
	}
	if v == 0 {
		return 0, &MalformedCoordinatesError{Text: text, Reason: "positions are 1-based"}
	}
	return v, nil
}
