package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/termstore/internal/queryir"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/term"
)

// ParseFilter parses a --where expression into a predicate.
//
// Grammar:
//
//	expr    := conj (OR conj)*
//	conj    := cmp (AND cmp)*
//	cmp     := field op operand
//	op      := == | = | != | < | <= | > | >=
//	operand := literal | ?N | field
//	literal := number | 'string' | "string" | true | false | null
//
// AND binds tighter than OR. ?N refers to the N-th --param value,
// counting from 1. A bare name on the right of an operator is a field.
// An empty expression yields a nil predicate.
//
// OR parses, so that the error for it names the real limitation: the
// store cannot evaluate disjunctions.
func ParseFilter(expr string) (queryir.Predicate, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}
	p := &filterParser{toks: toks}
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return pred, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokParam
	tokOp
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '\'' || c == '"':
			text, n, err := scanQuoted(s[i:])
			if err != nil {
				return nil, fmt.Errorf("filter: %w at offset %d", err, i)
			}
			toks = append(toks, token{kind: tokString, text: text, pos: i})
			i += n
		case c == '?':
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("filter: parameter needs a number at offset %d", i)
			}
			toks = append(toks, token{kind: tokParam, text: s[i+1 : j], pos: i})
			i = j
		case strings.ContainsRune("=!<>", rune(c)):
			j := i + 1
			if j < len(s) && s[j] == '=' {
				j++
			}
			toks = append(toks, token{kind: tokOp, text: s[i:j], pos: i})
			i = j
		case isDigit(c) || ((c == '-' || c == '+') && i+1 < len(s) && isDigit(s[i+1])):
			j := i + 1
			for j < len(s) && (isDigit(s[j]) || strings.IndexByte(".eE", s[j]) >= 0 ||
				((s[j] == '-' || s[j] == '+') && (s[j-1] == 'e' || s[j-1] == 'E'))) {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: s[i:j], pos: i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && (isIdentStart(s[j]) || isDigit(s[j])) {
				j++
			}
			word := s[i:j]
			kind := tokIdent
			switch strings.ToUpper(word) {
			case "AND":
				kind = tokAnd
			case "OR":
				kind = tokOr
			}
			toks = append(toks, token{kind: kind, text: word, pos: i})
			i = j
		default:
			return nil, fmt.Errorf("filter: unexpected character %q at offset %d", c, i)
		}
	}
	return toks, nil
}

// scanQuoted reads a quoted string at the start of s and returns its
// content and the number of bytes consumed. A backslash escapes the next
// byte.
func scanQuoted(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

type filterParser struct {
	toks []token
	pos  int
}

func (p *filterParser) done() bool {
	return p.pos >= len(p.toks)
}

func (p *filterParser) peek() token {
	return p.toks[p.pos]
}

func (p *filterParser) next() (token, error) {
	if p.done() {
		return token{}, fmt.Errorf("filter: unexpected end of expression")
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *filterParser) errorf(format string, args ...any) error {
	offset := 0
	if !p.done() {
		offset = p.peek().pos
	}
	return fmt.Errorf("filter: %s at offset %d", fmt.Sprintf(format, args...), offset)
}

func (p *filterParser) parseOr() (queryir.Predicate, error) {
	var preds []queryir.Predicate
	for {
		pred, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
		if p.done() || p.peek().kind != tokOr {
			break
		}
		p.pos++
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return queryir.Or{Predicates: preds}, nil
}

func (p *filterParser) parseAnd() (queryir.Predicate, error) {
	var preds []queryir.Predicate
	for {
		pred, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
		if p.done() || p.peek().kind != tokAnd {
			break
		}
		p.pos++
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return queryir.And{Predicates: preds}, nil
}

func (p *filterParser) parseComparison() (queryir.Predicate, error) {
	if p.done() || p.peek().kind != tokIdent {
		return nil, p.errorf("expected field name")
	}
	field, _ := p.next()

	if p.done() || p.peek().kind != tokOp {
		return nil, p.errorf("expected comparison operator after %q", field.text)
	}
	opTok, _ := p.next()
	opText := opTok.text
	if opText == "=" {
		opText = "=="
	}
	op, err := queryir.ParseOp(opText)
	if err != nil {
		return nil, fmt.Errorf("filter: %w at offset %d", err, opTok.pos)
	}

	operand, err := p.next()
	if err != nil {
		return nil, err
	}
	switch operand.kind {
	case tokParam:
		n, err := strconv.Atoi(operand.text)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("filter: parameters are numbered from ?1, got ?%s", operand.text)
		}
		return queryir.BoundCompare{Field: field.text, Op: op, Param: n - 1}, nil
	case tokString:
		return queryir.Compare{Field: field.text, Op: op, Value: term.String(operand.text)}, nil
	case tokNumber:
		v, err := parseNumber(operand.text)
		if err != nil {
			return nil, fmt.Errorf("filter: %w at offset %d", err, operand.pos)
		}
		return queryir.Compare{Field: field.text, Op: op, Value: v}, nil
	case tokIdent:
		switch operand.text {
		case "true":
			return queryir.Compare{Field: field.text, Op: op, Value: term.Bool(true)}, nil
		case "false":
			return queryir.Compare{Field: field.text, Op: op, Value: term.Bool(false)}, nil
		case "null":
			return queryir.Compare{Field: field.text, Op: op, Value: term.Null{}}, nil
		}
		return queryir.FieldCompare{Left: field.text, Op: op, Right: operand.text}, nil
	default:
		return nil, fmt.Errorf("filter: expected value after %s at offset %d", opTok.text, operand.pos)
	}
}

func parseNumber(s string) (term.Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return term.Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return term.Float(f), nil
}

// ParseOrder parses --order values of the form field, field:asc or
// field:desc.
func ParseOrder(specs []string) (queryir.Ordering, error) {
	var ordering queryir.Ordering
	for _, spec := range specs {
		field, dir, _ := strings.Cut(spec, ":")
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("invalid order %q: missing field", spec)
		}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
			ordering = append(ordering, queryir.OrderBy{Field: field, Dir: queryir.Asc})
		case "desc":
			ordering = append(ordering, queryir.OrderBy{Field: field, Dir: queryir.Desc})
		default:
			return nil, fmt.Errorf("invalid order %q: direction must be asc or desc", spec)
		}
	}
	return ordering, nil
}

// ParseValue parses a command-line value. JSON literals (numbers, quoted
// strings, true, false, null, arrays) are decoded as terms; anything else
// is taken as a plain string.
func ParseValue(s string) term.Value {
	if v, err := term.Decode([]byte(s)); err == nil {
		return v
	}
	return term.String(s)
}

// ParseRow parses a JSON object into a row.
func ParseRow(s string) (schema.Row, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid JSON row: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("invalid JSON row: expected an object")
	}
	row := make(schema.Row, len(obj))
	for name, raw := range obj {
		v, err := term.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON row: field %q: %w", name, err)
		}
		row[name] = v
	}
	return row, nil
}
