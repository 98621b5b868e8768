package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Hello World":         "hello-world",
		"  Über   Café  ":     "uber-cafe",
		"Go 1.24 -- released": "go-1-24-released",
		"already-a-slug":      "already-a-slug",
		"!!!":                 "",
		"Ærø naïve":           "ærø-naive",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestFromFilename(t *testing.T) {
	assert.Equal(t, "my-first-post", FromFilename("My First Post.md"))
	assert.Equal(t, "readme", FromFilename("README"))
	assert.Equal(t, "hidden", FromFilename(".hidden"))
}
