package seeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`
- uri: https://fdp.example.org/
- uri: https://index.example.org
  index: true
- uri: https://fdp.example.org
`)

	seeds, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, seeds, 2)
	assert.Equal(t, Seed{URI: "https://fdp.example.org"}, seeds[0])
	assert.Equal(t, Seed{URI: "https://index.example.org", Index: true}, seeds[1])
	assert.Equal(t, []string{"https://fdp.example.org", "https://index.example.org"}, URIs(seeds))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing uri", data: "- index: true\n"},
		{name: "unsupported scheme", data: "- uri: ftp://fdp.example.org\n"},
		{name: "no host", data: "- uri: https://\n"},
		{name: "not a list", data: "uri: https://fdp.example.org\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		seeds, err := Load("")
		require.NoError(t, err)
		assert.Empty(t, seeds)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fdps.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- uri: https://fdp.example.org\n"), 0644))

		seeds, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://fdp.example.org"}, URIs(seeds))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	a := []Seed{{URI: "https://a.org"}, {URI: "https://b.org"}}
	b := []Seed{{URI: "https://b.org", Index: true}, {URI: "https://c.org"}}

	merged := Merge(a, b)

	assert.Equal(t, []string{"https://a.org", "https://b.org", "https://c.org"}, URIs(merged))
	assert.False(t, merged[1].Index)
}
