package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func decodeIndex(t *testing.T, m *site.Model) []Entry {
	t.Helper()
	out, err := Index(m)
	require.NoError(t, err)
	var entries []Entry
	require.NoError(t, json.Unmarshal(out, &entries))
	return entries
}

func TestIndexEntries(t *testing.T) {
	m := &site.Model{
		Config: &config.Config{Title: "T", BaseURL: "https://example.com"},
		Home: &site.Item{
			File:  content.File{Class: content.ClassDirectoryIndex, Slug: "index", Meta: content.Metadata{Title: "Home"}},
			Doc:   render.Document{Plain: "welcome   to the\nsite"},
			Route: "/",
		},
		Posts: []*site.Item{{
			File:  content.File{Class: content.ClassPost, Slug: "hello", Meta: content.Metadata{Title: "Hello"}},
			Doc:   render.Document{Plain: "post body"},
			Route: "/posts/hello/",
		}},
		Pages: []*site.Item{
			{
				File:  content.File{Class: content.ClassPage, Slug: "about", Meta: content.Metadata{Title: "About"}},
				Doc:   render.Document{Plain: "about body"},
				Route: "/about/",
			},
			{
				File:  content.File{Class: content.ClassPage, Slug: "404", Meta: content.Metadata{Title: "Not Found"}},
				Route: "/404/",
			},
		},
		Collections: map[string][]*site.Item{
			"docs": {{
				File:  content.File{Class: content.ClassCollectionItem, Slug: "intro", Meta: content.Metadata{Title: "Intro"}},
				Doc:   render.Document{Plain: "doc body"},
				Route: "/docs/intro/",
			}},
		},
	}

	entries := decodeIndex(t, m)
	require.Len(t, entries, 4) // 404 excluded

	assert.Equal(t, "Home", entries[0].Title)
	assert.Equal(t, "/", entries[0].URL)
	assert.Equal(t, "welcome to the site", entries[0].Snippet) // whitespace collapsed

	assert.Equal(t, "/posts/hello/", entries[1].URL)
	assert.Equal(t, "/about/", entries[2].URL)
	assert.Equal(t, "/docs/intro/", entries[3].URL)
}

func TestIndexEmptySiteIsEmptyArray(t *testing.T) {
	out, err := Index(&site.Model{Config: &config.Config{}})
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(out)))
}

func TestIndexSnippetTruncation(t *testing.T) {
	long := strings.Repeat("word ", 2000) // 10000 chars once collapsed
	m := &site.Model{
		Config: &config.Config{},
		Posts: []*site.Item{{
			File:  content.File{Class: content.ClassPost, Slug: "long", Meta: content.Metadata{Title: "Long"}},
			Doc:   render.Document{Plain: long},
			Route: "/posts/long/",
		}},
	}
	entries := decodeIndex(t, m)
	require.Len(t, entries, 1)
	assert.Len(t, []rune(entries[0].Snippet), maxSnippetChars)
}

func TestIndexFieldNames(t *testing.T) {
	m := &site.Model{
		Config: &config.Config{},
		Posts: []*site.Item{{
			File:  content.File{Class: content.ClassPost, Slug: "a", Meta: content.Metadata{Title: "A"}},
			Route: "/posts/a/",
		}},
	}
	out, err := Index(m)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"title"`)
	assert.Contains(t, string(out), `"url"`)
	assert.Contains(t, string(out), `"content_snippet"`)
}
