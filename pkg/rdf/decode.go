package rdf

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	krdf "github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"
)

// Format is an RDF serialization.
type Format string

const (
	Turtle Format = "turtle"
	JSONLD Format = "json-ld"
	RDFXML Format = "rdf+xml"
)

// FormatFromContentType picks a serialization from a Content-Type header value
// by substring match. Anything unrecognized, including an empty header, is
// treated as Turtle.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "turtle"):
		return Turtle
	case strings.Contains(ct, "json"):
		return JSONLD
	case strings.Contains(ct, "xml"):
		return RDFXML
	default:
		return Turtle
	}
}

// Decoder parses RDF documents into a Graph. The HTTP client is only used by
// the JSON-LD processor to resolve remote @context documents.
type Decoder struct {
	httpClient *http.Client
}

// NewDecoder creates a decoder. A nil client falls back to http.DefaultClient.
func NewDecoder(httpClient *http.Client) *Decoder {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Decoder{httpClient: httpClient}
}

// Decode reads the whole document from r. base is the document URI, used to
// resolve relative IRIs in JSON-LD.
func (d *Decoder) Decode(r io.Reader, format Format, base string) (*Graph, error) {
	switch format {
	case JSONLD:
		return d.decodeJSONLD(r, base)
	case RDFXML:
		return decodeTriples(r, krdf.RDFXML)
	case Turtle, "":
		return decodeTriples(r, krdf.Turtle)
	default:
		return nil, fmt.Errorf("unsupported rdf format %q", format)
	}
}

// Parse decodes with a default decoder.
func Parse(r io.Reader, format Format, base string) (*Graph, error) {
	return NewDecoder(nil).Decode(r, format, base)
}

func decodeTriples(r io.Reader, f krdf.Format) (*Graph, error) {
	dec := krdf.NewTripleDecoder(r, f)
	g := NewGraph()
	for {
		tr, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode triples: %w", err)
		}
		g.Add(fromKnakk(tr.Subj), tr.Pred.String(), fromKnakk(tr.Obj))
	}
	return g, nil
}

func fromKnakk(t krdf.Term) Term {
	switch v := t.(type) {
	case krdf.IRI:
		return IRI(v.String())
	case krdf.Blank:
		return Blank(strings.TrimPrefix(v.String(), "_:"))
	case krdf.Literal:
		return Term{
			Kind:     KindLiteral,
			Value:    v.String(),
			Datatype: v.DataType.String(),
			Lang:     v.Lang(),
		}
	default:
		return Literal(t.String())
	}
}

func (d *Decoder) decodeJSONLD(r io.Reader, base string) (*Graph, error) {
	doc, err := ld.DocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json-ld document: %w", err)
	}

	opts := ld.NewJsonLdOptions(base)
	opts.DocumentLoader = ld.NewDefaultDocumentLoader(d.httpClient)

	out, err := ld.NewJsonLdProcessor().ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to expand json-ld: %w", err)
	}
	dataset, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("unexpected json-ld result %T", out)
	}

	// Named graphs are flattened into one graph, default graph first.
	names := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		if name != "@default" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{"@default"}, names...)

	g := NewGraph()
	for _, name := range names {
		for _, q := range dataset.Graphs[name] {
			pred, ok := q.Predicate.(*ld.IRI)
			if !ok {
				continue
			}
			g.Add(fromLD(q.Subject), pred.Value, fromLD(q.Object))
		}
	}
	return g, nil
}

func fromLD(n ld.Node) Term {
	switch v := n.(type) {
	case *ld.IRI:
		return IRI(v.Value)
	case *ld.BlankNode:
		return Blank(strings.TrimPrefix(v.Attribute, "_:"))
	case *ld.Literal:
		return Term{Kind: KindLiteral, Value: v.Value, Datatype: v.Datatype, Lang: v.Language}
	default:
		return Literal(n.GetValue())
	}
}
