// Package rdf provides the small in-memory triple graph that FAIR Data Point
// metadata is parsed into, together with decoders for the serializations FDPs
// publish (Turtle, JSON-LD and RDF/XML).
//
// The graph keeps triples in insertion order. Lookups that return several
// objects return them in that order, which for most serializers is document
// order; callers must not rely on it across serializations.
package rdf

import "fmt"

// TermKind distinguishes the three kinds of RDF terms.
type TermKind int

const (
	KindIRI TermKind = iota
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return fmt.Sprintf("TermKind(%d)", int(k))
	}
}

// Term is an RDF node. Datatype and Lang are only set for literals.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
	Lang     string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term with the given label.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

// Literal returns a plain literal term.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// key identifies a node for indexing. Literals never appear as subjects, so
// datatype and language are left out.
func (t Term) key() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	default:
		return "\"" + t.Value + "\""
	}
}

func (t Term) String() string {
	switch t.Kind {
	case KindLiteral:
		s := fmt.Sprintf("%q", t.Value)
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return t.key()
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

// Graph is an ordered set of triples indexed by subject.
type Graph struct {
	triples   []Triple
	seen      map[string]struct{}
	bySubject map[string][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		seen:      make(map[string]struct{}),
		bySubject: make(map[string][]int),
	}
}

// Add inserts a triple. Duplicate statements are ignored.
func (g *Graph) Add(subject Term, predicate string, object Term) {
	k := subject.key() + " <" + predicate + "> " + object.String()
	if _, ok := g.seen[k]; ok {
		return
	}
	g.seen[k] = struct{}{}
	g.triples = append(g.triples, Triple{Subject: subject, Predicate: predicate, Object: object})
	sk := subject.key()
	g.bySubject[sk] = append(g.bySubject[sk], len(g.triples)-1)
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns all triples in insertion order. The slice must not be modified.
func (g *Graph) Triples() []Triple { return g.triples }

// Objects returns every object of (subject, predicate, ?) in insertion order.
func (g *Graph) Objects(subject Term, predicate string) []Term {
	var out []Term
	for _, i := range g.bySubject[subject.key()] {
		if t := g.triples[i]; t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// SubjectsWith returns every subject of (?, predicate, object) in insertion order.
func (g *Graph) SubjectsWith(predicate string, object Term) []Term {
	ok := object.key()
	var out []Term
	for _, t := range g.triples {
		if t.Predicate == predicate && t.Object.key() == ok && t.Object.Kind == object.Kind {
			out = append(out, t.Subject)
		}
	}
	return out
}

// HasSubject reports whether any triple has the given subject.
func (g *Graph) HasSubject(subject Term) bool {
	return len(g.bySubject[subject.key()]) > 0
}
