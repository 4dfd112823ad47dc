package fdp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datavisiting/fdp-explorer/pkg/rdf"
	"github.com/datavisiting/fdp-explorer/pkg/vocab"
)

func TestLiteral(t *testing.T) {
	g := rdf.NewGraph()
	ds := rdf.IRI("https://x.org/ds")
	labelled := rdf.IRI("https://x.org/org/1")
	named := rdf.IRI("https://x.org/person/1")
	anonymous := rdf.IRI("https://x.org/org/2")

	g.Add(ds, vocab.DCTTitle, rdf.Literal("Title"))
	g.Add(ds, vocab.DCTPublisher, labelled)
	g.Add(labelled, vocab.RDFSLabel, rdf.Literal("Org label"))
	g.Add(labelled, vocab.FOAFName, rdf.Literal("Org name"))
	g.Add(ds, vocab.DCTCreator, named)
	g.Add(named, vocab.FOAFName, rdf.Literal("Person name"))
	g.Add(ds, vocab.DCTDescription, rdf.Blank("b0"))
	g.Add(ds, vocab.DCTDescription, anonymous)

	assert.Equal(t, "Title", Literal(g, ds, vocab.DCTTitle))
	assert.Equal(t, "Org label", Literal(g, ds, vocab.DCTPublisher), "rdfs:label wins over foaf:name")
	assert.Equal(t, "Person name", Literal(g, ds, vocab.DCTCreator))
	assert.Equal(t, "", Literal(g, ds, vocab.DCTDescription), "blank and unlabelled IRI objects yield nothing")
	assert.Equal(t, "", Literal(g, ds, vocab.DCTModified))
}

func TestLiteral_SkipsUnlabelledIRIForLaterLiteral(t *testing.T) {
	g := rdf.NewGraph()
	ds := rdf.IRI("https://x.org/ds")
	g.Add(ds, vocab.DCTPublisher, rdf.IRI("https://x.org/nobody"))
	g.Add(ds, vocab.DCTPublisher, rdf.Literal("Fallback"))

	assert.Equal(t, "Fallback", Literal(g, ds, vocab.DCTPublisher))
}

func TestURIList(t *testing.T) {
	g := rdf.NewGraph()
	ds := rdf.IRI("https://x.org/ds")
	g.Add(ds, vocab.DCATTheme, rdf.IRI("https://x.org/t/1"))
	g.Add(ds, vocab.DCATTheme, rdf.Literal("not a uri"))
	g.Add(ds, vocab.DCATTheme, rdf.IRI("https://x.org/t/2"))

	assert.Equal(t, []string{"https://x.org/t/1", "https://x.org/t/2"}, URIList(g, ds, vocab.DCATTheme))
	assert.Nil(t, URIList(g, ds, vocab.DCATKeyword))
}

func TestExtractContactPoint(t *testing.T) {
	t.Run("mailto unwrapped", func(t *testing.T) {
		g := rdf.NewGraph()
		ds := rdf.IRI("https://x.org/ds")
		cp := rdf.Blank("cp")
		g.Add(ds, vocab.DCATContactPoint, cp)
		g.Add(cp, vocab.VCARDFn, rdf.Literal("Jane Doe"))
		g.Add(cp, vocab.VCARDHasEmail, rdf.IRI("mailto:test@example.org"))
		g.Add(cp, vocab.VCARDHasURL, rdf.IRI("https://example.org/jane"))

		got := ExtractContactPoint(g, ds)
		require.NotNil(t, got)
		assert.Equal(t, "Jane Doe", got.Name)
		assert.Equal(t, "test@example.org", got.Email)
		assert.Equal(t, "https://example.org/jane", got.URL)
	})

	t.Run("plain literal email", func(t *testing.T) {
		g := rdf.NewGraph()
		ds := rdf.IRI("https://x.org/ds")
		cp := rdf.IRI("https://x.org/contact")
		g.Add(ds, vocab.DCATContactPoint, cp)
		g.Add(cp, vocab.VCARDHasEmail, rdf.Literal("plain@example.org"))

		got := ExtractContactPoint(g, ds)
		require.NotNil(t, got)
		assert.Equal(t, "plain@example.org", got.Email)
		assert.Empty(t, got.Name)
	})

	t.Run("empty node skipped", func(t *testing.T) {
		g := rdf.NewGraph()
		ds := rdf.IRI("https://x.org/ds")
		g.Add(ds, vocab.DCATContactPoint, rdf.Blank("empty"))

		assert.Nil(t, ExtractContactPoint(g, ds))
	})

	t.Run("first non-empty node wins", func(t *testing.T) {
		g := rdf.NewGraph()
		ds := rdf.IRI("https://x.org/ds")
		g.Add(ds, vocab.DCATContactPoint, rdf.Blank("empty"))
		g.Add(ds, vocab.DCATContactPoint, rdf.Blank("full"))
		g.Add(rdf.Blank("full"), vocab.VCARDFn, rdf.Literal("Second"))

		got := ExtractContactPoint(g, ds)
		require.NotNil(t, got)
		assert.Equal(t, "Second", got.Name)
	})
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *time.Time
	}{
		{"empty", "", nil},
		{"garbage", "last tuesday", nil},
		{"zulu", "2023-01-15T10:30:00Z", ptr(time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC))},
		{"offset", "2023-01-15T10:30:00+02:00", ptr(time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC))},
		{"fractional", "2023-01-15T10:30:00.123Z", ptr(time.Date(2023, 1, 15, 10, 30, 0, 123000000, time.UTC))},
		{"no zone", "2023-01-15T10:30:00", ptr(time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC))},
		{"space separator", "2023-01-15 10:30:00", ptr(time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC))},
		{"space separator with offset", "2023-01-15 10:30:00+02:00", ptr(time.Date(2023, 1, 15, 8, 30, 0, 0, time.UTC))},
		{"space separator zulu", "2023-01-15 10:30:00.5Z", ptr(time.Date(2023, 1, 15, 10, 30, 0, 500000000, time.UTC))},
		{"date only", "2023-01-15", ptr(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"invalid month", "2023-13-01", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s, want %s", got, tt.want)
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
