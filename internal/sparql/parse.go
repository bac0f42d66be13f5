package sparql

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/knakk/rdf"
)

const (
	rdfTypeIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	xsdInteger = "http://www.w3.org/2001/XMLSchema#integer"
	xsdDecimal = "http://www.w3.org/2001/XMLSchema#decimal"
)

// PatternTerm is one position of a triple pattern: either a variable name or
// a concrete RDF term.
type PatternTerm struct {
	Var  string
	Term rdf.Term
}

func (p PatternTerm) IsVar() bool { return p.Var != "" }

// TriplePattern is a subject-predicate-object pattern inside WHERE.
type TriplePattern struct {
	S, P, O PatternTerm
}

// SelectQuery is the parsed form of the supported SELECT subset.
type SelectQuery struct {
	Distinct bool
	Star     bool
	Vars     []string
	Patterns []TriplePattern
	OrderBy  string
	Limit    int // -1 when absent
	Offset   int
}

// Parse parses a restricted SPARQL SELECT query: PREFIX/BASE declarations,
// SELECT [DISTINCT] with a projection list or *, a WHERE block of triple
// patterns (".", ";" and "," separators, "a" for rdf:type), ORDER BY on a
// single variable, LIMIT and OFFSET. Everything else is ErrUnsupported.
func Parse(text string) (*SelectQuery, error) {
	s := &scanner{input: text}
	p := &parser{s: s, prefixes: map[string]string{}}
	return p.parseQuery()
}

type parser struct {
	s        *scanner
	prefixes map[string]string
	base     string
}

var unsupportedKeywords = map[string]bool{
	"FILTER": true, "OPTIONAL": true, "UNION": true, "GRAPH": true,
	"MINUS": true, "BIND": true, "VALUES": true, "SERVICE": true,
	"CONSTRUCT": true, "ASK": true, "DESCRIBE": true, "GROUP": true,
	"HAVING": true, "EXISTS": true,
}

func (p *parser) parseQuery() (*SelectQuery, error) {
	q := &SelectQuery{Limit: -1}

	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}

	// Prologue
	for {
		if tok.kind != tokIdent {
			break
		}
		switch strings.ToUpper(tok.text) {
		case "PREFIX":
			if err := p.parsePrefix(); err != nil {
				return nil, err
			}
		case "BASE":
			iri, err := p.s.next()
			if err != nil {
				return nil, err
			}
			if iri.kind != tokIRI {
				return nil, fmt.Errorf("%w: BASE expects an IRI", ErrSyntax)
			}
			p.base = iri.text
		default:
			goto prologueDone
		}
		tok, err = p.s.next()
		if err != nil {
			return nil, err
		}
	}
prologueDone:

	if tok.kind != tokIdent || strings.ToUpper(tok.text) != "SELECT" {
		if tok.kind == tokIdent && unsupportedKeywords[strings.ToUpper(tok.text)] {
			return nil, fmt.Errorf("%w: %s queries", ErrUnsupported, strings.ToUpper(tok.text))
		}
		return nil, fmt.Errorf("%w: expected SELECT, got %q", ErrSyntax, tok.text)
	}

	tok, err = p.s.next()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokIdent && strings.ToUpper(tok.text) == "DISTINCT" {
		q.Distinct = true
		tok, err = p.s.next()
		if err != nil {
			return nil, err
		}
	}

	// Projection
	switch {
	case tok.kind == tokPunct && tok.text == "*":
		q.Star = true
		tok, err = p.s.next()
		if err != nil {
			return nil, err
		}
	case tok.kind == tokVar:
		for tok.kind == tokVar {
			q.Vars = append(q.Vars, tok.text)
			tok, err = p.s.next()
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: expected projection variables or *", ErrSyntax)
	}

	// Optional WHERE keyword
	if tok.kind == tokIdent && strings.ToUpper(tok.text) == "WHERE" {
		tok, err = p.s.next()
		if err != nil {
			return nil, err
		}
	}
	if tok.kind != tokPunct || tok.text != "{" {
		return nil, fmt.Errorf("%w: expected { to open the pattern block", ErrSyntax)
	}

	if err := p.parsePatterns(q); err != nil {
		return nil, err
	}

	return q, p.parseModifiers(q)
}

func (p *parser) parsePrefix() error {
	name, err := p.s.next()
	if err != nil {
		return err
	}
	if name.kind != tokPName || !strings.HasSuffix(name.text, ":") {
		return fmt.Errorf("%w: PREFIX expects a name ending in :", ErrSyntax)
	}
	iri, err := p.s.next()
	if err != nil {
		return err
	}
	if iri.kind != tokIRI {
		return fmt.Errorf("%w: PREFIX expects an IRI", ErrSyntax)
	}
	p.prefixes[strings.TrimSuffix(name.text, ":")] = iri.text
	return nil
}

func (p *parser) parsePatterns(q *SelectQuery) error {
	for {
		tok, err := p.s.next()
		if err != nil {
			return err
		}
		if tok.kind == tokPunct && tok.text == "}" {
			return nil
		}

		subj, err := p.term(tok)
		if err != nil {
			return err
		}

		// Predicate-object lists share the subject across ";" and the
		// predicate across ",".
		for {
			tok, err = p.s.next()
			if err != nil {
				return err
			}
			pred, err := p.term(tok)
			if err != nil {
				return err
			}

			for {
				tok, err = p.s.next()
				if err != nil {
					return err
				}
				obj, err := p.term(tok)
				if err != nil {
					return err
				}
				q.Patterns = append(q.Patterns, TriplePattern{S: subj, P: pred, O: obj})

				tok, err = p.s.next()
				if err != nil {
					return err
				}
				if tok.kind == tokPunct && tok.text == "," {
					continue
				}
				break
			}

			if tok.kind == tokPunct && tok.text == ";" {
				continue
			}
			break
		}

		switch {
		case tok.kind == tokPunct && tok.text == ".":
			continue
		case tok.kind == tokPunct && tok.text == "}":
			return nil
		case tok.kind == tokIdent && unsupportedKeywords[strings.ToUpper(tok.text)]:
			return fmt.Errorf("%w: %s", ErrUnsupported, strings.ToUpper(tok.text))
		default:
			return fmt.Errorf("%w: expected . ; , or } after pattern, got %q", ErrSyntax, tok.text)
		}
	}
}

func (p *parser) parseModifiers(q *SelectQuery) error {
	for {
		tok, err := p.s.next()
		if err != nil {
			return err
		}
		switch {
		case tok.kind == tokEOF:
			return nil
		case tok.kind == tokIdent && strings.ToUpper(tok.text) == "ORDER":
			by, err := p.s.next()
			if err != nil {
				return err
			}
			if by.kind != tokIdent || strings.ToUpper(by.text) != "BY" {
				return fmt.Errorf("%w: ORDER must be followed by BY", ErrSyntax)
			}
			v, err := p.s.next()
			if err != nil {
				return err
			}
			if v.kind != tokVar {
				return fmt.Errorf("%w: ORDER BY supports a single variable", ErrUnsupported)
			}
			q.OrderBy = v.text
		case tok.kind == tokIdent && strings.ToUpper(tok.text) == "LIMIT":
			n, err := p.intModifier("LIMIT")
			if err != nil {
				return err
			}
			q.Limit = n
		case tok.kind == tokIdent && strings.ToUpper(tok.text) == "OFFSET":
			n, err := p.intModifier("OFFSET")
			if err != nil {
				return err
			}
			q.Offset = n
		case tok.kind == tokIdent && unsupportedKeywords[strings.ToUpper(tok.text)]:
			return fmt.Errorf("%w: %s", ErrUnsupported, strings.ToUpper(tok.text))
		default:
			return fmt.Errorf("%w: unexpected %q after pattern block", ErrSyntax, tok.text)
		}
	}
}

func (p *parser) intModifier(name string) (int, error) {
	tok, err := p.s.next()
	if err != nil {
		return 0, err
	}
	if tok.kind != tokNumber {
		return 0, fmt.Errorf("%w: %s expects an integer", ErrSyntax, name)
	}
	n, err := strconv.Atoi(tok.text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s expects a non-negative integer", ErrSyntax, name)
	}
	return n, nil
}

// term converts a scanned token into a pattern term.
func (p *parser) term(tok token) (PatternTerm, error) {
	switch tok.kind {
	case tokVar:
		return PatternTerm{Var: tok.text}, nil
	case tokIRI:
		iri := tok.text
		if p.base != "" && !strings.Contains(iri, ":") {
			iri = p.base + iri
		}
		t, err := rdf.NewIRI(iri)
		if err != nil {
			return PatternTerm{}, fmt.Errorf("%w: bad IRI %q: %v", ErrSyntax, tok.text, err)
		}
		return PatternTerm{Term: t}, nil
	case tokPName:
		iri, err := p.expandPName(tok.text)
		if err != nil {
			return PatternTerm{}, err
		}
		t, err := rdf.NewIRI(iri)
		if err != nil {
			return PatternTerm{}, fmt.Errorf("%w: bad IRI %q: %v", ErrSyntax, iri, err)
		}
		return PatternTerm{Term: t}, nil
	case tokIdent:
		if tok.text == "a" {
			t, err := rdf.NewIRI(rdfTypeIRI)
			if err != nil {
				return PatternTerm{}, err
			}
			return PatternTerm{Term: t}, nil
		}
		if unsupportedKeywords[strings.ToUpper(tok.text)] {
			return PatternTerm{}, fmt.Errorf("%w: %s", ErrUnsupported, strings.ToUpper(tok.text))
		}
		return PatternTerm{}, fmt.Errorf("%w: unexpected %q in pattern", ErrSyntax, tok.text)
	case tokLiteral:
		return p.literalTerm(tok)
	case tokNumber:
		dt := xsdInteger
		if strings.ContainsAny(tok.text, ".eE") {
			dt = xsdDecimal
		}
		dtIRI, err := rdf.NewIRI(dt)
		if err != nil {
			return PatternTerm{}, err
		}
		return PatternTerm{Term: rdf.NewTypedLiteral(tok.text, dtIRI)}, nil
	default:
		return PatternTerm{}, fmt.Errorf("%w: unexpected %q in pattern", ErrSyntax, tok.text)
	}
}

func (p *parser) literalTerm(tok token) (PatternTerm, error) {
	switch {
	case tok.lang != "":
		t, err := rdf.NewLangLiteral(tok.text, tok.lang)
		if err != nil {
			return PatternTerm{}, fmt.Errorf("%w: bad literal: %v", ErrSyntax, err)
		}
		return PatternTerm{Term: t}, nil
	case tok.datatype != "":
		dt := tok.datatype
		if !strings.HasPrefix(dt, "<") && strings.Contains(dt, ":") && !strings.HasPrefix(dt, "http") {
			expanded, err := p.expandPName(dt)
			if err != nil {
				return PatternTerm{}, err
			}
			dt = expanded
		}
		dt = strings.Trim(dt, "<>")
		dtIRI, err := rdf.NewIRI(dt)
		if err != nil {
			return PatternTerm{}, fmt.Errorf("%w: bad datatype IRI %q: %v", ErrSyntax, dt, err)
		}
		return PatternTerm{Term: rdf.NewTypedLiteral(tok.text, dtIRI)}, nil
	default:
		t, err := rdf.NewLiteral(tok.text)
		if err != nil {
			return PatternTerm{}, fmt.Errorf("%w: bad literal: %v", ErrSyntax, err)
		}
		return PatternTerm{Term: t}, nil
	}
}

func (p *parser) expandPName(pname string) (string, error) {
	idx := strings.Index(pname, ":")
	if idx < 0 {
		return "", fmt.Errorf("%w: expected prefixed name, got %q", ErrSyntax, pname)
	}
	prefix, local := pname[:idx], pname[idx+1:]
	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", fmt.Errorf("%w: undeclared prefix %q", ErrSyntax, prefix)
	}
	return ns + local, nil
}

// --- scanner ---

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVar
	tokIRI
	tokPName
	tokLiteral
	tokNumber
	tokPunct
)

type token struct {
	kind     tokenKind
	text     string
	lang     string // literals only
	datatype string // literals only
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	if s.pos >= len(s.input) {
		return token{kind: tokEOF}, nil
	}

	c := s.input[s.pos]
	switch {
	case c == '?' || c == '$':
		s.pos++
		name := s.readWhile(isNameChar)
		if name == "" {
			return token{}, fmt.Errorf("%w: empty variable name", ErrSyntax)
		}
		return token{kind: tokVar, text: name}, nil
	case c == '<':
		end := strings.IndexByte(s.input[s.pos:], '>')
		if end < 0 {
			return token{}, fmt.Errorf("%w: unterminated IRI", ErrSyntax)
		}
		iri := s.input[s.pos+1 : s.pos+end]
		s.pos += end + 1
		return token{kind: tokIRI, text: iri}, nil
	case c == '"' || c == '\'':
		return s.readLiteral(c)
	case strings.IndexByte("{}.;,*", c) >= 0:
		// "." can also start a decimal; treat it as punctuation when not
		// followed by a digit.
		if c == '.' && s.pos+1 < len(s.input) && isDigit(s.input[s.pos+1]) {
			return s.readNumber()
		}
		s.pos++
		return token{kind: tokPunct, text: string(c)}, nil
	case isDigit(c) || (c == '-' && s.pos+1 < len(s.input) && isDigit(s.input[s.pos+1])):
		return s.readNumber()
	default:
		word := s.readWhile(func(r byte) bool { return isNameChar(r) || r == ':' })
		if word == "" {
			return token{}, fmt.Errorf("%w: unexpected character %q", ErrSyntax, string(c))
		}
		if strings.Contains(word, ":") {
			return token{kind: tokPName, text: word}, nil
		}
		return token{kind: tokIdent, text: word}, nil
	}
}

func (s *scanner) readLiteral(quote byte) (token, error) {
	s.pos++ // opening quote
	var b strings.Builder
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c == '\\' && s.pos+1 < len(s.input) {
			s.pos++
			switch s.input[s.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s.input[s.pos])
			}
			s.pos++
			continue
		}
		if c == quote {
			s.pos++
			tok := token{kind: tokLiteral, text: b.String()}
			// Optional language tag or datatype.
			if s.pos < len(s.input) && s.input[s.pos] == '@' {
				s.pos++
				tok.lang = s.readWhile(func(r byte) bool { return isNameChar(r) || r == '-' })
			} else if strings.HasPrefix(s.input[s.pos:], "^^") {
				s.pos += 2
				if s.pos < len(s.input) && s.input[s.pos] == '<' {
					end := strings.IndexByte(s.input[s.pos:], '>')
					if end < 0 {
						return token{}, fmt.Errorf("%w: unterminated datatype IRI", ErrSyntax)
					}
					tok.datatype = s.input[s.pos+1 : s.pos+end]
					s.pos += end + 1
				} else {
					tok.datatype = s.readWhile(func(r byte) bool { return isNameChar(r) || r == ':' })
				}
			}
			return tok, nil
		}
		b.WriteByte(c)
		s.pos++
	}
	return token{}, fmt.Errorf("%w: unterminated string literal", ErrSyntax)
}

func (s *scanner) readNumber() (token, error) {
	start := s.pos
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		// A "." is part of the number only when a digit follows; otherwise
		// it is the statement terminator.
		if c == '.' {
			if s.pos+1 < len(s.input) && isDigit(s.input[s.pos+1]) {
				s.pos++
				continue
			}
			break
		}
		if isDigit(c) || c == '-' || c == '+' || c == 'e' || c == 'E' {
			s.pos++
			continue
		}
		break
	}
	return token{kind: tokNumber, text: s.input[start:s.pos]}, nil
}

func (s *scanner) readWhile(pred func(byte) bool) string {
	start := s.pos
	for s.pos < len(s.input) && pred(s.input[s.pos]) {
		s.pos++
	}
	return s.input[start:s.pos]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) {
		c := s.input[s.pos]
		if c == '#' {
			for s.pos < len(s.input) && s.input[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(c)) {
			return
		}
		s.pos++
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameChar(c byte) bool {
	return c == '_' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
