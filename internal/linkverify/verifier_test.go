package linkverify

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":             {Data: []byte(`<a href="/">Home</a><a href="/about/">About</a><a href="/posts/hello">Hello</a><link rel="stylesheet" href="/style.css">`)},
		"about/index.html":       {Data: []byte(`<a href="../posts/hello/">rel</a><a href="missing/">gone</a><img src="/img/logo.png" alt="logo">`)},
		"posts/hello/index.html": {Data: []byte(`<a href="#top">top</a><a href="mailto:a@b.c">mail</a><a href="https://example.com/x">ext</a><a href="?page=2">q</a>`)},
		"style.css":              {Data: []byte("body{}")},
	}
}

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(`<p><a href="/a">A <b>bold</b></a><img src="x.png" alt="X"><script src="/app.js"></script></p>`))
	require.NoError(t, err)
	require.Equal(t, []Link{
		{URL: "/a", Text: "Abold", Tag: "a", Attribute: "href"},
		{URL: "x.png", Text: "X", Tag: "img", Attribute: "src"},
		{URL: "/app.js", Tag: "script", Attribute: "src"},
	}, links)
}

func TestCheckAll(t *testing.T) {
	broken, err := NewVerifier(siteFS()).CheckAll()
	require.NoError(t, err)
	require.Len(t, broken, 2)
	require.Equal(t, "about/index.html", broken[0].Page)
	require.Equal(t, "missing/", broken[0].URL)
	require.Equal(t, "/img/logo.png", broken[1].URL)
	require.Contains(t, broken[1].String(), "<img>")
}

func TestResolve(t *testing.T) {
	cases := []struct {
		page, link, want string
		ok               bool
	}{
		{"index.html", "/", "index.html", true},
		{"index.html", "/about/", "about/index.html", true},
		{"index.html", "/posts/hello", "posts/hello/index.html", true},
		{"about/index.html", "../style.css", "style.css", true},
		{"about/index.html", "../posts/hello/", "posts/hello/index.html", true},
		{"index.html", "http://[::1", "", false},
	}
	for _, tc := range cases {
		got, ok := resolve(tc.page, tc.link)
		require.Equal(t, tc.ok, ok, tc.link)
		require.Equal(t, tc.want, got, tc.link)
	}
}
