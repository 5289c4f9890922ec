// Package feeds renders the RSS and Atom feeds and the sitemap from an
// assembled site model. All output is deterministic for a given model.
package feeds

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

const rssTimeLayout = "Mon, 02 Jan 2006 15:04:05 +0000"

var feedFuncs = template.FuncMap{"escape": Escape}

var rssTemplate = template.Must(template.New("rss").Funcs(feedFuncs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>{{escape .Title}}</title>
    <link>{{escape .BaseURL}}</link>
    <description>{{escape .Description}}</description>
    <language>{{escape .Language}}</language>
    <atom:link href="{{escape .BaseURL}}/rss.xml" rel="self" type="application/rss+xml"/>
{{- range .Items}}
    <item>
      <title>{{escape .Title}}</title>
      <link>{{escape .URL}}</link>
      <guid>{{escape .URL}}</guid>
      <pubDate>{{.PubDate}}</pubDate>
      <description>{{escape .Excerpt}}</description>
    </item>
{{- end}}
  </channel>
</rss>
`))

var atomTemplate = template.Must(template.New("atom").Funcs(feedFuncs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>{{escape .Title}}</title>
  <link href="{{escape .BaseURL}}/" rel="alternate"/>
  <link href="{{escape .BaseURL}}/atom.xml" rel="self"/>
  <id>{{escape .BaseURL}}/</id>
  <updated>{{.Updated}}</updated>
  <author>
    <name>{{escape .Author}}</name>
  </author>
  <subtitle>{{escape .Description}}</subtitle>
{{- range .Items}}
  <entry>
    <title>{{escape .Title}}</title>
    <link href="{{escape .URL}}" rel="alternate"/>
    <id>{{escape .URL}}</id>
    <updated>{{.Updated}}</updated>
    <summary type="text">{{escape .Excerpt}}</summary>
    <content type="html">{{escape .HTML}}</content>
  </entry>
{{- end}}
</feed>
`))

type feedItem struct {
	Title   string
	URL     string
	PubDate string
	Updated string
	Excerpt string
	HTML    string
}

type feedContext struct {
	Title       string
	BaseURL     string
	Description string
	Language    string
	Author      string
	Updated     string
	Items       []feedItem
}

func feedContextFor(m *site.Model) feedContext {
	ctx := feedContext{
		Title:       m.Config.Title,
		BaseURL:     strings.TrimRight(m.Config.BaseURL, "/"),
		Description: m.Config.Description,
		Language:    m.Config.Language,
		Author:      m.Config.Author,
	}
	if ctx.Language == "" {
		ctx.Language = "en"
	}
	if ctx.Author == "" {
		ctx.Author = ctx.Title
	}

	if len(m.Posts) > 0 && !m.Posts[0].File.Date.IsZero() {
		ctx.Updated = m.Posts[0].File.Date.UTC().Format(time.RFC3339)
	} else {
		ctx.Updated = m.BuiltAt.UTC().Format(time.RFC3339)
	}

	for _, post := range m.Posts {
		item := feedItem{
			Title:   post.File.Meta.Title,
			URL:     ctx.BaseURL + post.Route,
			Excerpt: post.Excerpt,
			HTML:    post.Doc.HTML,
		}
		if !post.File.Date.IsZero() {
			item.PubDate = post.File.Date.UTC().Format(rssTimeLayout)
			item.Updated = post.File.Date.UTC().Format(time.RFC3339)
		}
		ctx.Items = append(ctx.Items, item)
	}
	return ctx
}

// RSS renders the RSS 2.0 feed of all posts, newest first.
func RSS(m *site.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := rssTemplate.Execute(&buf, feedContextFor(m)); err != nil {
		return nil, builderrors.InternalError("render rss feed", err)
	}
	return buf.Bytes(), nil
}

// Atom renders the Atom feed of all posts, newest first. The feed-level
// updated stamp is the newest post's date, or the build time for an empty
// site.
func Atom(m *site.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := atomTemplate.Execute(&buf, feedContextFor(m)); err != nil {
		return nil, builderrors.InternalError("render atom feed", err)
	}
	return buf.Bytes(), nil
}
