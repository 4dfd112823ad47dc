package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TurtlePrefixes declares the prefixes FDP fixtures use. NewFDPServer
// prepends it to every document.
const TurtlePrefixes = `
@prefix dct: <http://purl.org/dc/terms/> .
@prefix dcat: <http://www.w3.org/ns/dcat#> .
@prefix fdp: <https://w3id.org/fdp/fdp-o#> .
@prefix ldp: <http://www.w3.org/ns/ldp#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix vcard: <http://www.w3.org/2006/vcard/ns#> .
`

// NewFDPServer serves Turtle documents keyed by request path. {{base}} inside
// a document is replaced with the server URL. Unknown paths get a 404. The
// server is closed when the test ends.
func NewFDPServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/turtle; charset=utf-8")
		_, _ = w.Write([]byte(TurtlePrefixes + strings.ReplaceAll(doc, "{{base}}", server.URL)))
	}))
	t.Cleanup(server.Close)
	return server
}

// SampleFDPDocs is a small FDP with one catalog of two datasets, used by
// handler and tool tests.
func SampleFDPDocs() map[string]string {
	return map[string]string{
		"/fdp": `
<{{base}}/fdp> dct:title "Sample FDP" ;
    fdp:metadataCatalog <{{base}}/catalog/1> .
`,
		"/catalog/1": `
<{{base}}/catalog/1> dct:title "Sample catalog" ;
    dcat:dataset <{{base}}/dataset/cancer>, <{{base}}/dataset/weather> .
<{{base}}/dataset/cancer> dct:title "Cancer Registry" ;
    dct:description "Population-based cancer incidence" ;
    dcat:theme <http://example.org/theme/Oncology> .
<{{base}}/dataset/weather> dct:title "Weather stations" ;
    dct:description "Hourly temperature" ;
    dcat:theme <http://example.org/theme/Climate> .
`,
		"/dataset/cancer": `
<{{base}}/dataset/cancer> dct:title "Cancer Registry" ;
    dct:description "Population-based cancer incidence" ;
    dct:modified "2024-05-01" ;
    dcat:theme <http://example.org/theme/Oncology> ;
    dcat:keyword "oncology" ;
    dcat:contactPoint [ vcard:fn "Registry Steward" ; vcard:hasEmail <mailto:steward@registry.example> ] .
<http://example.org/theme/Oncology> rdfs:label "Oncology" .
`,
	}
}
