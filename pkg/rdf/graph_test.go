package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraph_AddIgnoresDuplicates(t *testing.T) {
	g := NewGraph()
	s := IRI("https://example.org/s")
	g.Add(s, "https://example.org/p", Literal("x"))
	g.Add(s, "https://example.org/p", Literal("x"))
	g.Add(s, "https://example.org/p", IRI("x"))

	assert.Equal(t, 2, g.Len())
}

func TestGraph_ObjectsPreservesInsertionOrder(t *testing.T) {
	g := NewGraph()
	s := IRI("https://example.org/s")
	for _, v := range []string{"c", "a", "b"} {
		g.Add(s, "https://example.org/p", Literal(v))
	}
	g.Add(IRI("https://example.org/other"), "https://example.org/p", Literal("z"))

	var got []string
	for _, o := range g.Objects(s, "https://example.org/p") {
		got = append(got, o.Value)
	}
	assert.Equal(t, []string{"c", "a", "b"}, got)
	assert.Empty(t, g.Objects(s, "https://example.org/missing"))
}

func TestGraph_SubjectsWith(t *testing.T) {
	g := NewGraph()
	target := IRI("https://example.org/fdp")
	g.Add(Blank("c1"), "https://example.org/member", target)
	g.Add(IRI("https://example.org/c2"), "https://example.org/member", target)
	g.Add(IRI("https://example.org/c3"), "https://example.org/member", Literal("https://example.org/fdp"))

	subjects := g.SubjectsWith("https://example.org/member", target)
	assert.Equal(t, []Term{Blank("c1"), IRI("https://example.org/c2")}, subjects)
}

func TestGraph_BlankAndIRIWithSameValueAreDistinct(t *testing.T) {
	g := NewGraph()
	g.Add(Blank("n1"), "https://example.org/p", Literal("blank"))
	g.Add(IRI("n1"), "https://example.org/p", Literal("iri"))

	assert.Equal(t, "blank", g.Objects(Blank("n1"), "https://example.org/p")[0].Value)
	assert.Equal(t, "iri", g.Objects(IRI("n1"), "https://example.org/p")[0].Value)
	assert.True(t, g.HasSubject(IRI("n1")))
	assert.False(t, g.HasSubject(IRI("n2")))
}
