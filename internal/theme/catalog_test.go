package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/tmplplay/internal/highlight"
)

func TestNewCatalog_SortsCaseInsensitively(t *testing.T) {
	c, err := NewCatalog([]Theme{
		{ID: "z", Name: "zenburn"},
		{ID: "a", Name: "Abap"},
		{ID: "m", Name: "monokai"},
		{ID: "b", Name: "Base"},
	}, "m")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "m", "z"}, c.Names())
	require.Equal(t, "m", c.Default().ID)
	require.Equal(t, 4, c.Len())
}

func TestNewCatalog_Empty(t *testing.T) {
	_, err := NewCatalog(nil, DefaultID)
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestResolve_FallsBackToFirstTheme(t *testing.T) {
	c, err := NewCatalog([]Theme{{ID: "B", Name: "B"}, {ID: "A", Name: "A"}}, DefaultID)
	require.NoError(t, err)

	got, found := c.Resolve("missing")
	require.False(t, found)
	require.Equal(t, "A", got.ID)

	got, found = c.Resolve("B")
	require.True(t, found)
	require.Equal(t, "B", got.ID)
}

func TestNext_Wraps(t *testing.T) {
	c, err := NewCatalog([]Theme{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}}, "A")
	require.NoError(t, err)
	require.Equal(t, "B", c.Next("A").ID)
	require.Equal(t, "A", c.Next("B").ID)
	require.Equal(t, "A", c.Next("unknown").ID)
}

func TestFilter(t *testing.T) {
	c, err := NewCatalog([]Theme{
		{ID: "github", Name: "GitHub"},
		{ID: "github-dark", Name: "GitHub Dark"},
		{ID: "monokai", Name: "Monokai"},
	}, "monokai")
	require.NoError(t, err)

	require.Len(t, c.Filter(""), 3)
	got := c.Filter("gith")
	require.Len(t, got, 2)
	require.Equal(t, "github", got[0].ID)
	require.Empty(t, c.Filter("zzz"))
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := NewCatalog([]Theme{{ID: "A", Name: "A"}}, "A")
	require.NoError(t, err)
	all := c.All()
	all[0].ID = "mutated"
	require.Equal(t, "A", c.Default().ID)
}

func TestFromChroma(t *testing.T) {
	c, err := FromChroma(DefaultID)
	require.NoError(t, err)
	require.Greater(t, c.Len(), 10)

	def := c.Default()
	require.Equal(t, DefaultID, def.ID)
	require.NotNil(t, def.Background)
	require.NotNil(t, def.Palette().Style)

	all := c.All()
	for i := 1; i < len(all); i++ {
		require.LessOrEqual(t, strings.ToLower(all[i-1].Name), strings.ToLower(all[i].Name))
	}
}

func TestDefaults_MissingColoursUseBlackOnWhite(t *testing.T) {
	th := Theme{ID: "bare", Name: "bare"}
	require.Equal(t, highlight.Defaults{Foreground: highlight.Black, Background: highlight.White}, th.Defaults())
}
