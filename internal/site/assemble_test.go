package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Title:   "Test Site",
		BaseURL: "https://example.com",
		Taxonomies: map[string]string{
			"tags":       "tags",
			"categories": "categories",
		},
	}
}

func post(sourcePath, slug, date string, meta content.Metadata) Rendered {
	d, _ := time.Parse("2006-01-02", date)
	meta.Date = &d
	if meta.Title == "" {
		meta.Title = slug
	}
	return Rendered{File: content.File{
		SourcePath: sourcePath,
		Class:      content.ClassPost,
		Slug:       slug,
		Date:       d,
		Meta:       meta,
	}}
}

func page(slug string, meta content.Metadata) Rendered {
	if meta.Title == "" {
		meta.Title = slug
	}
	return Rendered{File: content.File{
		SourcePath: "content/" + slug + ".md",
		Class:      content.ClassPage,
		Slug:       slug,
		Meta:       meta,
	}}
}

func TestAssembleRoutes(t *testing.T) {
	items := []Rendered{
		page("about", content.Metadata{}),
		post("content/posts/2024-01-15-hello.md", "hello", "2024-01-15", content.Metadata{}),
		{File: content.File{
			SourcePath: "content/_index.md",
			Class:      content.ClassDirectoryIndex,
			Slug:       "index",
			Meta:       content.Metadata{Title: "Home"},
		}},
		{File: content.File{
			SourcePath: "content/projects/tool.md",
			Class:      content.ClassCollectionItem,
			Collection: "projects",
			Slug:       "tool",
			Meta:       content.Metadata{Title: "Tool"},
		}},
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)

	require.NotNil(t, m.Home)
	assert.Equal(t, "/", m.Home.Route)
	assert.Equal(t, "index.html", m.Home.OutPath)

	require.Len(t, m.Pages, 1)
	assert.Equal(t, "/about/", m.Pages[0].Route)
	assert.Equal(t, "about/index.html", m.Pages[0].OutPath)

	require.Len(t, m.Posts, 1)
	assert.Equal(t, "/posts/hello/", m.Posts[0].Route)

	require.Len(t, m.Collections["projects"], 1)
	assert.Equal(t, "/projects/tool/", m.Collections["projects"][0].Route)
}

func TestAssembleExplicitURLWins(t *testing.T) {
	items := []Rendered{
		page("special", content.Metadata{URL: "/custom/place"}),
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)
	require.Len(t, m.Pages, 1)
	assert.Equal(t, "/custom/place/", m.Pages[0].Route)
}

func TestAssembleRouteConflict(t *testing.T) {
	items := []Rendered{
		page("about", content.Metadata{}),
		page("other", content.Metadata{URL: "/about/"}),
	}

	_, err := Assemble(testConfig(), items)
	require.Error(t, err)
	assert.True(t, builderrors.IsCategory(err, builderrors.CategoryConflict))
	assert.Contains(t, err.Error(), "/about/")

	be, ok := builderrors.AsBuildError(err)
	require.True(t, ok)
	assert.Contains(t, be.Context, "path")
	assert.Contains(t, be.Context, "existing_path")
}

func TestAssemblePostOrderAndLinks(t *testing.T) {
	items := []Rendered{
		post("content/posts/b.md", "older", "2024-01-10", content.Metadata{}),
		post("content/posts/a.md", "newest", "2024-03-01", content.Metadata{}),
		post("content/posts/c.md", "middle", "2024-02-01", content.Metadata{}),
		// same date as middle, path tiebreak puts c.md first
		post("content/posts/d.md", "middle-two", "2024-02-01", content.Metadata{}),
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)
	require.Len(t, m.Posts, 4)

	slugs := []string{m.Posts[0].File.Slug, m.Posts[1].File.Slug, m.Posts[2].File.Slug, m.Posts[3].File.Slug}
	assert.Equal(t, []string{"newest", "middle", "middle-two", "older"}, slugs)

	assert.Nil(t, m.Posts[0].Prev)
	assert.Equal(t, m.Posts[0], m.Posts[1].Prev)
	assert.Equal(t, m.Posts[2], m.Posts[1].Next)
	assert.Nil(t, m.Posts[3].Next)
}

func TestAssembleTaxonomies(t *testing.T) {
	items := []Rendered{
		post("content/posts/a.md", "a", "2024-01-10", content.Metadata{Tags: []string{"go", "web"}}),
		post("content/posts/b.md", "b", "2024-02-10", content.Metadata{Tags: []string{"go"}}),
		post("content/posts/c.md", "c", "2024-03-10", content.Metadata{Categories: []string{"Dev Notes"}}),
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)

	tags := m.Terms["tags"]
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Slug)
	assert.Equal(t, "web", tags[1].Slug)
	assert.Equal(t, "/tags/go/", tags[0].Route)

	// newest first within a term
	require.Len(t, tags[0].Posts, 2)
	assert.Equal(t, "b", tags[0].Posts[0].File.Slug)
	assert.Equal(t, "a", tags[0].Posts[1].File.Slug)

	cats := m.Terms["categories"]
	require.Len(t, cats, 1)
	assert.Equal(t, "dev-notes", cats[0].Slug)
	assert.Equal(t, "Dev Notes", cats[0].Name)
}

func TestAssemblePageWeightOrder(t *testing.T) {
	items := []Rendered{
		page("zeta", content.Metadata{Weight: 1}),
		page("alpha", content.Metadata{Weight: 2}),
		page("beta", content.Metadata{Weight: 1}),
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)
	require.Len(t, m.Pages, 3)
	assert.Equal(t, "beta", m.Pages[0].File.Slug)
	assert.Equal(t, "zeta", m.Pages[1].File.Slug)
	assert.Equal(t, "alpha", m.Pages[2].File.Slug)
}

func TestAssembleRedirects(t *testing.T) {
	items := []Rendered{
		page("about", content.Metadata{RedirectFrom: []string{"/old-about/", "/company"}}),
		// a redirect claiming an authored route is dropped
		page("team", content.Metadata{RedirectFrom: []string{"/about/"}}),
	}

	m, err := Assemble(testConfig(), items)
	require.NoError(t, err)

	require.Len(t, m.Redirects, 2)
	assert.Equal(t, Redirect{From: "/company/", To: "/about/"}, m.Redirects[0])
	assert.Equal(t, Redirect{From: "/old-about/", To: "/about/"}, m.Redirects[1])
}

func TestAssembleDataMerge(t *testing.T) {
	dataFile := func(path, body string) Rendered {
		return Rendered{File: content.File{
			SourcePath: path,
			Class:      content.ClassDataFile,
			Body:       body,
		}}
	}

	t.Run("deep merge across files", func(t *testing.T) {
		m, err := Assemble(testConfig(), []Rendered{
			dataFile("data/site.yaml", "nav:\n  home: /\n"),
			dataFile("data/site.toml", "[footer]\ncopyright = \"2026\"\n"),
		})
		require.NoError(t, err)

		siteData, ok := m.Data["site"].(map[string]any)
		require.True(t, ok)
		nav := siteData["nav"].(map[string]any)
		assert.Equal(t, "/", nav["home"])
		footer := siteData["footer"].(map[string]any)
		assert.Equal(t, "2026", footer["copyright"])
	})

	t.Run("directory and file share a key", func(t *testing.T) {
		m, err := Assemble(testConfig(), []Rendered{
			dataFile("data/authors/jane.json", `{"name": "Jane"}`),
			dataFile("data/authors.yaml", "joe:\n  name: Joe\n"),
		})
		require.NoError(t, err)

		authors := m.Data["authors"].(map[string]any)
		assert.Equal(t, "Jane", authors["jane"].(map[string]any)["name"])
		assert.Equal(t, "Joe", authors["joe"].(map[string]any)["name"])
	})

	t.Run("leaf conflict", func(t *testing.T) {
		_, err := Assemble(testConfig(), []Rendered{
			dataFile("data/site.yaml", "title: one\n"),
			dataFile("data/site.toml", "title = \"two\"\n"),
		})
		require.Error(t, err)
		assert.True(t, builderrors.IsCategory(err, builderrors.CategoryConflict))
	})
}

func TestBuildRefRegistry(t *testing.T) {
	files := []content.File{
		{SourcePath: "content/about.md", Class: content.ClassPage, Slug: "about"},
		{SourcePath: "content/posts/2024-01-15-hello.md", Class: content.ClassPost, Slug: "hello"},
		{SourcePath: "data/x.toml", Class: content.ClassDataFile},
	}

	registry := BuildRefRegistry(files)
	assert.Equal(t, "/about/", registry["about.md"])
	assert.Equal(t, "/about/", registry["about"])
	assert.Equal(t, "/posts/hello/", registry["posts/2024-01-15-hello.md"])
	assert.Equal(t, "/posts/hello/", registry["2024-01-15-hello.md"])
	assert.NotContains(t, registry, "x.toml")
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "index.html", OutputPath("/"))
	assert.Equal(t, "about/index.html", OutputPath("/about/"))
	assert.Equal(t, "posts/hello/index.html", OutputPath("/posts/hello/"))
}
