package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	list := List()
	require.Len(t, list, 4)
	ids := make([]string, 0, len(list))
	for _, tpl := range list {
		ids = append(ids, tpl.ID)
		require.NotEmpty(t, tpl.Name)
		require.NotEmpty(t, tpl.Voice)
		require.Less(t, tpl.Words.Min, tpl.Words.Max)
	}
	require.Equal(t, []string{"opinion-piece", "industry-analysis", "position-paper", "executive-commentary"}, ids)

	tpl, ok := Lookup("position-paper")
	require.True(t, ok)
	require.Equal(t, "Position Paper", tpl.Name)
	require.Equal(t, WordRange{Min: 1500, Max: 2500}, tpl.Words)

	_, ok = Lookup("limerick")
	require.False(t, ok)
}

func TestList_ReturnsCopy(t *testing.T) {
	l := List()
	l[0].ID = "mutated"
	_, ok := Lookup("opinion-piece")
	require.True(t, ok)
	require.Equal(t, "opinion-piece", List()[0].ID)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("templates: []"))
	require.Error(t, err)

	_, err = Parse([]byte("templates:\n  - id: a\n  - id: a\n"))
	require.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("templates:\n  - name: nameless\n"))
	require.ErrorContains(t, err, "no id")

	_, err = Parse([]byte("templates: [unterminated"))
	require.Error(t, err)
}
