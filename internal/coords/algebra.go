package coords

// Overlap returns the number of shared positions of a and b and the shared
// region. Strand is ignored; the result is symmetric in a and b.
func Overlap(a, b Segment) (uint64, Interval) {
	alo, ahi := a.Bounds()
	blo, bhi := b.Bounds()

	lo := max(alo, blo)
	hi := min(ahi, bhi)
	if lo > hi {
		return 0, Interval{}
	}
	return hi - lo + 1, Interval{Low: lo, High: hi}
}

// Adjacent reports whether b starts immediately after a ends, reading in
// the direction of strand. On a circular genome the last and first
// positions are adjacent across the origin. Segments not on strand are
// never adjacent.
func Adjacent(a, b Segment, strand Strand, g Genome) bool {
	if a.Strand != strand || b.Strand != strand {
		return false
	}
	wraps := g.Circular && g.Length > 0

	switch strand {
	case Plus:
		if a.Stop+1 == b.Start {
			return true
		}
		return wraps && a.Stop == g.Length && b.Start == 1
	case Minus:
		if b.Start+1 == a.Stop {
			return true
		}
		return wraps && a.Stop == 1 && b.Start == g.Length
	}
	return false
}

// Abut is the order-free form of Adjacent: true when either segment
// directly continues the other on their shared strand.
func Abut(a, b Segment, g Genome) bool {
	if a.Strand != b.Strand {
		return false
	}
	return Adjacent(a, b, a.Strand, g) || Adjacent(b, a, a.Strand, g)
}

// MergeSpanning detects a two-segment feature that crosses the origin of a
// circular sequence of length total and returns it as one segment whose
// far end exceeds total.
//
// Plus:  stops[0] == total && starts[1] == 1     -> starts[0]..stops[1]+total
// Minus: stops[0] == 1     && starts[1] == total -> starts[0]+total..stops[1]
func MergeSpanning(starts, stops []uint64, strand Strand, total uint64) (Segment, bool) {
	if len(starts) != 2 || len(stops) != 2 || total == 0 {
		return Segment{}, false
	}
	switch strand {
	case Plus:
		if stops[0] == total && starts[1] == 1 {
			return Segment{Start: starts[0], Stop: stops[1] + total, Strand: Plus}, true
		}
	case Minus:
		if stops[0] == 1 && starts[1] == total {
			return Segment{Start: starts[0] + total, Stop: stops[1], Strand: Minus}, true
		}
	}
	return Segment{}, false
}

// MergeSpanning applies the spanning-segment merge to c when g is
// circular. c is returned unchanged when no merge applies.
func (c Coords) MergeSpanning(g Genome) Coords {
	if !g.Circular || len(c) != 2 {
		return c
	}
	strand := c.Strand()
	seg, ok := MergeSpanning(
		[]uint64{c[0].Start, c[1].Start},
		[]uint64{c[0].Stop, c[1].Stop},
		strand, g.Length)
	if !ok {
		return c
	}
	return Coords{seg}
}
