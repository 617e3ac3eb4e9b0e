package alignment

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const stockholmHeader = "# STOCKHOLM 1.0"

// ReadTriple reads a single-sequence Stockholm alignment: one sequence row,
// the "#=GC RF" model row and an optional "#=GR <name> PP" confidence row.
// Rows may be split over several blocks.
func ReadTriple(r io.Reader) (string, Triple, error) {
	var (
		name              string
		seq, model, conf  strings.Builder
		haveConf, haveAny bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "//" {
			continue
		}

		fields := strings.Fields(line)
		switch {
		case fields[0] == "#=GC":
			if len(fields) == 3 && fields[1] == "RF" {
				model.WriteString(fields[2])
			}
		case fields[0] == "#=GR":
			if len(fields) == 4 && fields[2] == "PP" {
				if name != "" && fields[1] != name {
					return "", Triple{}, fmt.Errorf("line %d: PP row for %q, expected %q", lineNum, fields[1], name)
				}
				conf.WriteString(fields[3])
				haveConf = true
			}
		case strings.HasPrefix(fields[0], "#"):
			continue
		default:
			if len(fields) != 2 {
				return "", Triple{}, fmt.Errorf("line %d: expected '<name> <row>'", lineNum)
			}
			if name == "" {
				name = fields[0]
			} else if fields[0] != name {
				return "", Triple{}, fmt.Errorf("line %d: second sequence %q, only one is supported", lineNum, fields[0])
			}
			seq.WriteString(fields[1])
			haveAny = true
		}
	}
	if err := scanner.Err(); err != nil {
		return "", Triple{}, fmt.Errorf("reading alignment: %w", err)
	}
	if !haveAny {
		return "", Triple{}, fmt.Errorf("no sequence row found")
	}

	var confidence *string
	if haveConf {
		c := conf.String()
		confidence = &c
	}
	t, err := NewTriple(seq.String(), model.String(), confidence)
	if err != nil {
		return "", Triple{}, fmt.Errorf("alignment of %s: %w", name, err)
	}
	return name, t, nil
}

// WriteTriple writes t as a single-block Stockholm alignment.
func WriteTriple(w io.Writer, name string, t Triple) error {
	width := len(name)
	if width < len("#=GC RF") {
		width = len("#=GC RF")
	}
	if t.Confidence != nil && len("#=GR "+name+" PP") > width {
		width = len("#=GR " + name + " PP")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, stockholmHeader)
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "%-*s %s\n", width, name, t.Seq)
	if t.Confidence != nil {
		fmt.Fprintf(bw, "%-*s %s\n", width, "#=GR "+name+" PP", *t.Confidence)
	}
	fmt.Fprintf(bw, "%-*s %s\n", width, "#=GC RF", t.Model)
	fmt.Fprintln(bw, "//")
	return bw.Flush()
}
