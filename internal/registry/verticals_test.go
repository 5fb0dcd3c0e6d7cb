package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestDefault_ContainsKnownVerticals(t *testing.T) {
	reg := Default()

	for _, name := range []string{"healthcare", "finance", "manufacturing", "technology", "other"} {
		assert.True(t, reg.Valid(name), "missing vertical %s", name)
	}
	assert.False(t, reg.Valid("underwater_basket_weaving"))
}

func TestDefault_KeywordsLowercase(t *testing.T) {
	// Keyword scoring matches against lowercased text.
	for _, def := range Default().Defs() {
		for _, kw := range def.Keywords {
			assert.Equal(t, strings.ToLower(kw), kw, "keyword %q in vertical %s", kw, def.Name)
		}
	}
}

func TestLoadVerticals_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verticals.yaml")
	data := `verticals:
  - name: aerospace
    description: Aerospace and defense
    keywords: [aerospace, defense, aviation]
  - name: other
    description: Catch-all
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	reg, err := LoadVerticals(path)
	require.NoError(t, err)
	assert.True(t, reg.Valid("aerospace"))
	assert.True(t, reg.Valid("other"))
	assert.False(t, reg.Valid("healthcare"))
}

func TestLoadVerticals_MissingFile(t *testing.T) {
	_, err := LoadVerticals(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadVerticals_EmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verticals.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verticals: []\n"), 0o644))

	_, err := LoadVerticals(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no verticals defined")
}

func TestNormalize(t *testing.T) {
	reg := Default()
	assert.Equal(t, "healthcare", reg.Normalize("healthcare"))
	assert.Equal(t, model.VerticalOther, reg.Normalize("made-up"))
}
