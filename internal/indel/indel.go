// Package indel parses the insertion/deletion descriptions produced by the
// approximate-alignment summarizer.
//
// A description is empty or a ';'-separated list of tokens
//
//	Q<seq_pos>:S<model_pos>+<len>   insertion (residues only in the sequence)
//	Q<seq_pos>:S<model_pos>-<len>   deletion  (positions only in the model)
//
// 'M' is accepted in place of 'S'. Each token names the sequence and model
// positions after which the event occurs.
package indel

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes insertions from deletions.
type Kind int

const (
	// Insertion means residues present in the sequence but not the model.
	Insertion Kind = iota
	// Deletion means model positions with no sequence residue.
	Deletion
)

func (k Kind) String() string {
	if k == Insertion {
		return "insertion"
	}
	return "deletion"
}

func (k Kind) sign() byte {
	if k == Insertion {
		return '+'
	}
	return '-'
}

// Token is one parsed indel event.
type Token struct {
	SeqPos   uint64
	ModelPos uint64
	Len      uint64
	Kind     Kind
}

func (t Token) String() string {
	return fmt.Sprintf("Q%d:S%d%c%d", t.SeqPos, t.ModelPos, t.Kind.sign(), t.Len)
}

// MalformedTokenError is returned for text that breaks the token grammar.
// It terminates the run.
type MalformedTokenError struct {
	Token  string
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed indel token %q: %s", e.Token, e.Reason)
}

// IsIndelError marks errors from this package.
func (e *MalformedTokenError) IsIndelError() {}

// IsFatal marks the error as run-terminating.
func (e *MalformedTokenError) IsFatal() {}

// Parse reads a description whose tokens must all be of the given kind.
func Parse(text string, kind Kind) ([]Token, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	fields := strings.Split(text, ";")
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tok, err := parseToken(f)
		if err != nil {
			return nil, err
		}
		if tok.Kind != kind {
			return nil, &MalformedTokenError{
				Token:  f,
				Reason: fmt.Sprintf("%s sign in a %s description", tok.Kind, kind),
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// ParseInsertions reads an insertion description.
func ParseInsertions(text string) ([]Token, error) {
	return Parse(text, Insertion)
}

// ParseDeletions reads a deletion description.
func ParseDeletions(text string) ([]Token, error) {
	return Parse(text, Deletion)
}

// Format writes tokens back in description form.
func Format(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, ";")
}

func parseToken(f string) (Token, error) {
	bad := func(reason string) (Token, error) {
		return Token{}, &MalformedTokenError{Token: f, Reason: reason}
	}

	if len(f) < 2 || f[0] != 'Q' {
		return bad("expected leading 'Q'")
	}
	q, rest, ok := strings.Cut(f[1:], ":")
	if !ok {
		return bad("missing ':'")
	}
	if rest == "" || (rest[0] != 'S' && rest[0] != 'M') {
		return bad("expected 'S' or 'M' after ':'")
	}
	rest = rest[1:]

	signAt := strings.IndexAny(rest, "+-")
	if signAt < 0 {
		return bad("missing '+' or '-'")
	}
	kind := Insertion
	if rest[signAt] == '-' {
		kind = Deletion
	}

	seqPos, err := parseUint(q)
	if err != nil {
		return bad("sequence position: " + err.Error())
	}
	modelPos, err := parseUint(rest[:signAt])
	if err != nil {
		return bad("model position: " + err.Error())
	}
	n, err := parseUint(rest[signAt+1:])
	if err != nil {
		return bad("length: " + err.Error())
	}
	if n == 0 {
		return bad("zero length")
	}
	return Token{SeqPos: seqPos, ModelPos: modelPos, Len: n, Kind: kind}, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a non-negative integer", s)
		}
	}
	return strconv.ParseUint(s, 10, 64)
}
