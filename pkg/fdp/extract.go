package fdp

import (
	"strings"
	"time"

	"github.com/datavisiting/fdp-explorer/pkg/models"
	"github.com/datavisiting/fdp-explorer/pkg/rdf"
	"github.com/datavisiting/fdp-explorer/pkg/vocab"
)

// Literal returns the first usable value of (subject, predicate, ?).
// A literal object is returned as-is. An IRI object is resolved through its
// rdfs:label, then its foaf:name, so that e.g. a publisher node yields a
// display name. Blank-node objects are skipped.
//
// When the predicate has several values the first in graph order wins, which
// is not stable across serializations of the same data.
func Literal(g *rdf.Graph, subject rdf.Term, predicate string) string {
	for _, obj := range g.Objects(subject, predicate) {
		switch obj.Kind {
		case rdf.KindLiteral:
			return obj.Value
		case rdf.KindIRI:
			if v := firstLiteral(g, obj, vocab.RDFSLabel); v != "" {
				return v
			}
			if v := firstLiteral(g, obj, vocab.FOAFName); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstLiteral(g *rdf.Graph, subject rdf.Term, predicate string) string {
	for _, obj := range g.Objects(subject, predicate) {
		if obj.IsLiteral() {
			return obj.Value
		}
	}
	return ""
}

// URIList returns every IRI object of (subject, predicate, ?) in graph order.
// Duplicates are kept; literal and blank objects are dropped.
func URIList(g *rdf.Graph, subject rdf.Term, predicate string) []string {
	var out []string
	for _, obj := range g.Objects(subject, predicate) {
		if obj.IsIRI() {
			out = append(out, obj.Value)
		}
	}
	return out
}

// ExtractContactPoint reads the first dcat:contactPoint of subject that has a
// name, email or URL. Returns nil when there is none.
func ExtractContactPoint(g *rdf.Graph, subject rdf.Term) *models.ContactPoint {
	for _, node := range g.Objects(subject, vocab.DCATContactPoint) {
		if node.IsLiteral() {
			continue
		}
		cp := models.ContactPoint{
			Name:  termValue(g, node, vocab.VCARDFn),
			Email: strings.TrimPrefix(termValue(g, node, vocab.VCARDHasEmail), "mailto:"),
			URL:   termValue(g, node, vocab.VCARDHasURL),
		}
		if !cp.IsEmpty() {
			return &cp
		}
	}
	return nil
}

// termValue returns the string form of the first object, IRI or literal.
// vcard:hasEmail and vcard:hasURL are usually IRIs, vcard:fn a literal.
func termValue(g *rdf.Graph, subject rdf.Term, predicate string) string {
	for _, obj := range g.Objects(subject, predicate) {
		if !obj.IsBlank() {
			return obj.Value
		}
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseDate parses an ISO-8601 timestamp or a plain YYYY-MM-DD date. A
// trailing Z means UTC. Returns nil for empty or unparsable input; it never
// fails.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
