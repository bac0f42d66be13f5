package sparql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"ontocat/internal/rdfgraph"
)

// Binding maps a variable name to the term bound for one solution.
type Binding map[string]rdf.Term

// Results holds the projected variables, in projection order, and one
// binding row per solution.
type Results struct {
	Vars []string
	Rows []Binding
}

// Execute parses and evaluates a query against a graph.
func Execute(g *rdfgraph.Graph, q *Query) (*Results, error) {
	parsed, err := Parse(q.Text)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Name, err)
	}
	return Eval(g, parsed)
}

// Eval evaluates a parsed SELECT query with a left-to-right backtracking
// join over the triple patterns.
func Eval(g *rdfgraph.Graph, q *SelectQuery) (*Results, error) {
	vars := q.Vars
	if q.Star {
		vars = patternVars(q.Patterns)
	}

	var solutions []Binding
	match(g, q.Patterns, Binding{}, &solutions)

	rows := make([]Binding, 0, len(solutions))
	for _, sol := range solutions {
		row := make(Binding, len(vars))
		for _, v := range vars {
			if t, ok := sol[v]; ok {
				row[v] = t
			}
		}
		rows = append(rows, row)
	}

	if q.Distinct {
		rows = dedupe(vars, rows)
	}
	if q.OrderBy != "" {
		sortRows(q.OrderBy, rows)
	}
	if q.Offset > 0 {
		if q.Offset >= len(rows) {
			rows = nil
		} else {
			rows = rows[q.Offset:]
		}
	}
	if q.Limit >= 0 && q.Limit < len(rows) {
		rows = rows[:q.Limit]
	}

	return &Results{Vars: vars, Rows: rows}, nil
}

func match(g *rdfgraph.Graph, patterns []TriplePattern, bound Binding, out *[]Binding) {
	if len(patterns) == 0 {
		row := make(Binding, len(bound))
		for k, v := range bound {
			row[k] = v
		}
		*out = append(*out, row)
		return
	}

	p := patterns[0]
	s := resolve(p.S, bound)
	pr := resolve(p.P, bound)
	o := resolve(p.O, bound)

	for _, t := range g.Match(s, pr, o) {
		added, ok := unify(bound, p, t)
		if ok {
			match(g, patterns[1:], bound, out)
		}
		for _, v := range added {
			delete(bound, v)
		}
	}
}

// resolve returns the concrete term for a pattern position, or nil when the
// position is an unbound variable (wildcard).
func resolve(pt PatternTerm, bound Binding) rdf.Term {
	if !pt.IsVar() {
		return pt.Term
	}
	return bound[pt.Var]
}

// unify extends the binding with the variables the matched triple settles.
// A variable repeated within one pattern must resolve to the same term each
// time; unify reports false when it does not. It always returns the names it
// bound so the caller can backtrack either way.
func unify(bound Binding, p TriplePattern, t rdf.Triple) (added []string, ok bool) {
	positions := []struct {
		pt   PatternTerm
		term rdf.Term
	}{
		{p.S, t.Subj},
		{p.P, t.Pred},
		{p.O, t.Obj},
	}
	for _, pos := range positions {
		if !pos.pt.IsVar() {
			continue
		}
		if existing, bound0 := bound[pos.pt.Var]; bound0 {
			if !rdfgraph.TermsEqual(existing, pos.term) {
				return added, false
			}
			continue
		}
		bound[pos.pt.Var] = pos.term
		added = append(added, pos.pt.Var)
	}
	return added, true
}

func patternVars(patterns []TriplePattern) []string {
	var vars []string
	seen := make(map[string]bool)
	add := func(pt PatternTerm) {
		if pt.IsVar() && !seen[pt.Var] {
			seen[pt.Var] = true
			vars = append(vars, pt.Var)
		}
	}
	for _, p := range patterns {
		add(p.S)
		add(p.P)
		add(p.O)
	}
	return vars
}

func rowKey(vars []string, row Binding) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		if t, ok := row[v]; ok {
			parts[i] = t.Serialize(rdf.NTriples)
		}
	}
	return strings.Join(parts, "\x1f")
}

func dedupe(vars []string, rows []Binding) []Binding {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		key := rowKey(vars, row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func sortRows(orderBy string, rows []Binding) {
	sort.SliceStable(rows, func(i, j int) bool {
		var a, b string
		if t, ok := rows[i][orderBy]; ok {
			a = t.String()
		}
		if t, ok := rows[j][orderBy]; ok {
			b = t.String()
		}
		return a < b
	})
}
