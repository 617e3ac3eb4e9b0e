package feature

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aria-lang/vannot-go/internal/coords"
)

// NoParent is the upstream marker for a feature without a parent.
const NoParent = "GBNULL"

// InfoError is returned for a model-info line that cannot be read.
type InfoError struct {
	Line   int
	Reason string
}

func (e *InfoError) Error() string {
	return fmt.Sprintf("model info line %d: %s", e.Line, e.Reason)
}

// IsFeatureError marks this as a feature error.
func (e *InfoError) IsFeatureError() {}

// ReadModelInfo reads model-info records:
//
//	MODEL <name> length:"<n>" [circular:"true"]
//	FEATURE <name> type:"CDS" coords:"<coords>" [parent_idx:"<i>"] [product:"..."]
//
// FEATURE lines follow the MODEL line they belong to. parent_idx is the
// 0-based index of an earlier or later feature of the same model.
func ReadModelInfo(r io.Reader) ([]*Table, error) {
	var (
		tables  []*Table
		builder *Builder
		name    string
	)
	flush := func() error {
		if builder == nil {
			return nil
		}
		t, err := builder.Build()
		if err != nil {
			return fmt.Errorf("model %s: %w", name, err)
		}
		tables = append(tables, t)
		return nil
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kind, rest, _ := strings.Cut(line, " ")
		recName, attrText, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if recName == "" {
			return nil, &InfoError{Line: lineNum, Reason: "missing model name"}
		}
		attrs, err := parseAttrs(attrText)
		if err != nil {
			return nil, &InfoError{Line: lineNum, Reason: err.Error()}
		}

		switch kind {
		case "MODEL":
			if err := flush(); err != nil {
				return nil, err
			}
			g, err := genomeFrom(attrs)
			if err != nil {
				return nil, &InfoError{Line: lineNum, Reason: err.Error()}
			}
			name = recName
			builder = NewBuilder(name, g)

		case "FEATURE":
			if builder == nil || recName != name {
				return nil, &InfoError{Line: lineNum, Reason: fmt.Sprintf("feature for %q outside its MODEL block", recName)}
			}
			parent, err := parentFrom(attrs["parent_idx"])
			if err != nil {
				return nil, &InfoError{Line: lineNum, Reason: err.Error()}
			}
			text, ok := attrs["coords"]
			if !ok {
				return nil, &InfoError{Line: lineNum, Reason: "missing coords"}
			}
			if _, err := builder.Add(attrs["type"], attrs["product"], text, parent); err != nil {
				return nil, fmt.Errorf("model info line %d: %w", lineNum, err)
			}

		default:
			return nil, &InfoError{Line: lineNum, Reason: fmt.Sprintf("unknown record %q", kind)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading model info: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return tables, nil
}

// parseAttrs splits `key:"value" key:"value"` pairs. Values may hold spaces.
func parseAttrs(text string) (map[string]string, error) {
	attrs := make(map[string]string)
	rest := strings.TrimSpace(text)
	for rest != "" {
		key, after, ok := strings.Cut(rest, ":\"")
		if !ok || key == "" || strings.ContainsAny(key, " \t\"") {
			return nil, fmt.Errorf("expected key:\"value\" at %q", rest)
		}
		value, tail, ok := strings.Cut(after, "\"")
		if !ok {
			return nil, fmt.Errorf("unterminated value for %s", key)
		}
		if _, dup := attrs[key]; dup {
			return nil, fmt.Errorf("duplicate key %s", key)
		}
		attrs[key] = value
		rest = strings.TrimSpace(tail)
	}
	return attrs, nil
}

func genomeFrom(attrs map[string]string) (coords.Genome, error) {
	var g coords.Genome
	n, err := strconv.ParseUint(attrs["length"], 10, 64)
	if err != nil || n == 0 {
		return g, fmt.Errorf("invalid length %q", attrs["length"])
	}
	g.Length = n
	if v, ok := attrs["circular"]; ok {
		g.Circular, err = strconv.ParseBool(v)
		if err != nil {
			return g, fmt.Errorf("invalid circular %q", v)
		}
	}
	return g, nil
}

// parentFrom converts the parent index attribute; absent, empty and
// NoParent all mean no parent.
func parentFrom(v string) (*int, error) {
	if v == "" || v == NoParent {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid parent_idx %q", v)
	}
	return &n, nil
}
