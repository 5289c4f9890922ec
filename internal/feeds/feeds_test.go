package feeds

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func testModel() *site.Model {
	d1 := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	newer := &site.Item{
		File: content.File{
			Class: content.ClassPost,
			Slug:  "hello-world",
			Date:  d1,
			Meta:  content.Metadata{Title: "Hello & World"},
		},
		Doc:     render.Document{HTML: "<p>Hello</p>", Plain: "Hello"},
		Route:   "/posts/hello-world/",
		Excerpt: "Hello",
	}
	older := &site.Item{
		File: content.File{
			Class: content.ClassPost,
			Slug:  "second",
			Date:  d2,
			Meta:  content.Metadata{Title: "Second"},
		},
		Doc:   render.Document{HTML: "<p>Two</p>", Plain: "Two"},
		Route: "/posts/second/",
	}
	about := &site.Item{
		File:  content.File{Class: content.ClassPage, Slug: "about", Meta: content.Metadata{Title: "About"}},
		Doc:   render.Document{HTML: "<p>About</p>", Plain: "About"},
		Route: "/about/",
	}
	notFound := &site.Item{
		File:  content.File{Class: content.ClassPage, Slug: "404", Meta: content.Metadata{Title: "Not Found"}},
		Route: "/404/",
	}

	return &site.Model{
		Config: &config.Config{
			Title:        "Test Blog",
			BaseURL:      "https://example.com",
			Description:  "A test blog",
			Author:       "Author",
			Language:     "en",
			PostsPerPage: 10,
		},
		Posts:   []*site.Item{newer, older},
		Pages:   []*site.Item{about, notFound},
		BuiltAt: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRSS(t *testing.T) {
	out, err := RSS(testModel())
	require.NoError(t, err)
	rss := string(out)

	assert.Contains(t, rss, `<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	assert.Contains(t, rss, "<title>Test Blog</title>")
	assert.Contains(t, rss, "<link>https://example.com</link>")
	assert.Contains(t, rss, "<language>en</language>")
	assert.Contains(t, rss, `<atom:link href="https://example.com/rss.xml" rel="self" type="application/rss+xml"/>`)

	// escaped title, absolute link, RFC-1123-style date
	assert.Contains(t, rss, "<title>Hello &amp; World</title>")
	assert.Contains(t, rss, "<link>https://example.com/posts/hello-world/</link>")
	assert.Contains(t, rss, "<pubDate>Sat, 15 Jun 2024 00:00:00 +0000</pubDate>")

	// newest first
	assert.Less(t, strings.Index(rss, "hello-world"), strings.Index(rss, "second"))
}

func TestAtom(t *testing.T) {
	out, err := Atom(testModel())
	require.NoError(t, err)
	atom := string(out)

	assert.Contains(t, atom, `<feed xmlns="http://www.w3.org/2005/Atom">`)
	// feed updated = newest post date
	assert.Contains(t, atom, "<updated>2024-06-15T00:00:00Z</updated>")
	assert.Contains(t, atom, "<name>Author</name>")
	assert.Contains(t, atom, "<subtitle>A test blog</subtitle>")
	// html content is escaped
	assert.Contains(t, atom, "&lt;p&gt;Hello&lt;/p&gt;")
	assert.Contains(t, atom, `<link href="https://example.com/posts/hello-world/" rel="alternate"/>`)
}

func TestAtomEmptySiteUsesBuildTime(t *testing.T) {
	m := testModel()
	m.Posts = nil
	out, err := Atom(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<updated>2024-07-01T12:00:00Z</updated>")
}

func TestAtomAuthorFallsBackToTitle(t *testing.T) {
	m := testModel()
	m.Config.Author = ""
	out, err := Atom(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<name>Test Blog</name>")
}

func TestSitemap(t *testing.T) {
	out := string(Sitemap(testModel()))

	assert.Contains(t, out, "<loc>https://example.com/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/about/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/posts/hello-world/</loc>")
	assert.Contains(t, out, "<lastmod>2024-06-15</lastmod>")
	assert.NotContains(t, out, "/404/")

	// sorted by location
	locs := []string{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "<loc>") {
			locs = append(locs, line)
		}
	}
	require.NotEmpty(t, locs)
	for i := 1; i < len(locs); i++ {
		assert.LessOrEqual(t, locs[i-1], locs[i])
	}
}

func TestSitemapPagination(t *testing.T) {
	m := testModel()
	m.Config.PostsPerPage = 1
	out := string(Sitemap(m))
	assert.Contains(t, out, "<loc>https://example.com/page/2/</loc>")
	assert.NotContains(t, out, "/page/1/")
	assert.NotContains(t, out, "/page/3/")
}

func TestSitemapTaxonomiesAndCollections(t *testing.T) {
	m := testModel()
	m.Collections = map[string][]*site.Item{
		"docs": {{
			File:  content.File{Class: content.ClassCollectionItem, Collection: "docs", Slug: "intro"},
			Route: "/docs/intro/",
		}},
	}
	m.Terms = map[string][]*site.Term{
		"tags": {{Taxonomy: "tags", Name: "Go", Slug: "go", Route: "/tags/go/", Posts: m.Posts}},
	}

	out := string(Sitemap(m))
	assert.Contains(t, out, "<loc>https://example.com/docs/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/docs/intro/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/tags/</loc>")
	assert.Contains(t, out, "<loc>https://example.com/tags/go/</loc>")
}

func TestSitemapByteIdentical(t *testing.T) {
	m := testModel()
	assert.Equal(t, Sitemap(m), Sitemap(m))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&apos;", Escape(`&<>"'`))
	assert.Equal(t, "plain", Escape("plain"))
}
