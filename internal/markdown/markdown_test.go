package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_TrimsTrailingWhitespace(t *testing.T) {
	out, err := NewRenderer().Render([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "<p>hello</p>", out)
}

func TestRender_Extensions(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render([]byte("~~gone~~"))
	require.NoError(t, err)
	require.Contains(t, out, "<del>gone</del>")

	out, err = r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	require.NoError(t, err)
	require.Contains(t, out, "<table>")

	out, err = r.Render([]byte("- [x] done\n- [ ] todo"))
	require.NoError(t, err)
	require.Contains(t, out, `type="checkbox"`)

	out, err = r.Render([]byte("Text[^1]\n\n[^1]: note"))
	require.NoError(t, err)
	require.Contains(t, out, "footnote")
}

func TestRender_RawHTMLPassThrough(t *testing.T) {
	out, err := NewRenderer().Render([]byte("<div class=\"x\">raw</div>"))
	require.NoError(t, err)
	require.Contains(t, out, `<div class="x">raw</div>`)
}
