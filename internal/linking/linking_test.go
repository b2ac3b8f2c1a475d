// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package linking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	pages := map[string][]string{
		"espresso-guide":  {"espresso machine", "Milk Frother", "grinder", "tamper"},
		"milk-frothing":   {"milk frother ", "latte art"},
		"grinder-reviews": {"grinder", "tamper", "burr grinder"},
		"tea":             {"green tea", ""},
		"accessories":     {"tamper", "milk frother"},
	}

	got := Suggest(pages, 0)

	require.Len(t, got, len(pages))
	assert.Equal(t, []Link{
		{Page: "accessories", Overlap: 2},
		{Page: "grinder-reviews", Overlap: 2},
		{Page: "milk-frothing", Overlap: 1},
	}, got["espresso-guide"])
	assert.Equal(t, []Link{
		{Page: "accessories", Overlap: 1},
		{Page: "espresso-guide", Overlap: 1},
	}, got["milk-frothing"])
	assert.Equal(t, []Link{}, got["tea"])
}

func TestSuggestTopK(t *testing.T) {
	pages := map[string][]string{
		"a": {"x", "y", "z"},
		"b": {"x"},
		"c": {"x", "y"},
		"d": {"x", "y", "z"},
	}
	got := Suggest(pages, 2)
	assert.Equal(t, []Link{{Page: "d", Overlap: 3}, {Page: "c", Overlap: 2}}, got["a"])
	assert.Len(t, got["b"], 2)
}

func TestSuggestEmpty(t *testing.T) {
	assert.Empty(t, Suggest(nil, 3))
}

func TestReadPages(t *testing.T) {
	pages, err := ReadPages(strings.NewReader("home:\n  - espresso machine\n  - grinder\nabout: []\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"home":  {"espresso machine", "grinder"},
		"about": {},
	}, pages)

	pages, err = ReadPages(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, pages)

	_, err = ReadPages(strings.NewReader("- not\n- a map\n"))
	assert.Error(t, err)
}
