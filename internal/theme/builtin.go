package theme

// Builtin theme. Each page template includes the shared partials; sites
// override any of these by dropping a file with the same name under
// templates/.

const builtinHeader = `<!DOCTYPE html>
<html lang="{{with .site.config.Language}}{{.}}{{else}}en{{end}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{with .title}}{{.}} &middot; {{end}}{{.site.config.Title}}</title>
{{with .site.config.Description}}<meta name="description" content="{{.}}">{{end}}
<link rel="stylesheet" href="/style.css">
<link rel="alternate" type="application/rss+xml" href="/rss.xml" title="{{.site.config.Title}}">
</head>
<body>
{{template "partials/nav.html" .}}
<main>
`

const builtinFooter = `</main>
<footer>
<p>&copy; {{with .site.config.Author}}{{.}}{{else}}{{.site.config.Title}}{{end}}</p>
</footer>
</body>
</html>
`

const builtinNav = `<nav>
<a href="/">{{.site.config.Title}}</a>
{{range .site.pages}}{{if ne .File.Slug "404"}}<a href="{{.Route}}">{{.File.Meta.Title}}</a>
{{end}}{{end}}</nav>
`

const builtinPostList = `<ul class="post-list">
{{range .posts}}<li>
<time datetime="{{.File.Date.Format "2006-01-02"}}">{{.File.Date.Format "Jan 2, 2006"}}</time>
<a href="{{.Route}}">{{.File.Meta.Title}}</a>
{{with .Excerpt}}<p>{{.}}</p>{{end}}
</li>
{{end}}</ul>
`

const builtinPagination = `{{if gt .total_pages 1}}<nav class="pagination">
{{with .prev_page_url}}<a rel="prev" href="{{.}}">&larr; Newer</a>{{end}}
<span>Page {{.current_page}} of {{.total_pages}}</span>
{{with .next_page_url}}<a rel="next" href="{{.}}">Older &rarr;</a>{{end}}
</nav>{{end}}
`

const builtinIndex = `{{template "partials/header.html" .}}
{{with .home}}<section class="home">{{.Doc.HTML | raw}}</section>{{end}}
{{template "partials/post_list.html" .}}
{{template "partials/pagination.html" .}}
{{template "partials/footer.html" .}}`

const builtinListPage = `{{template "partials/header.html" .}}
<h1>{{.title}}</h1>
{{template "partials/post_list.html" .}}
{{template "partials/pagination.html" .}}
{{template "partials/footer.html" .}}`

const builtinPage = `{{template "partials/header.html" .}}
<article>
<h1>{{.page.File.Meta.Title}}</h1>
{{.page.Doc.HTML | raw}}
</article>
{{template "partials/footer.html" .}}`

const builtinPost = `{{template "partials/header.html" .}}
<article class="post">
<header>
<h1>{{.post.File.Meta.Title}}</h1>
<time datetime="{{.post.File.Date.Format "2006-01-02"}}">{{.post.File.Date.Format "January 2, 2006"}}</time>
<span>{{.post.Doc.ReadingTime}} min read</span>
</header>
{{.post.Doc.HTML | raw}}
{{with .post.File.Meta.Tags}}<ul class="tags">
{{range .}}<li><a href="/tags/{{slugify .}}/">{{.}}</a></li>
{{end}}</ul>{{end}}
<nav class="post-nav">
{{with .prev_post}}<a rel="prev" href="{{.Route}}">&larr; {{.File.Meta.Title}}</a>{{end}}
{{with .next_post}}<a rel="next" href="{{.Route}}">{{.File.Meta.Title}} &rarr;</a>{{end}}
</nav>
</article>
{{template "partials/footer.html" .}}`

const builtinCollection = `{{template "partials/header.html" .}}
<h1>{{.collection_name}}</h1>
<ul class="collection">
{{range .items}}<li><a href="{{.Route}}">{{.File.Meta.Title}}</a></li>
{{end}}</ul>
{{template "partials/footer.html" .}}`

const builtinCollectionItem = `{{template "partials/header.html" .}}
<article>
<h1>{{.item.File.Meta.Title}}</h1>
{{.item.Doc.HTML | raw}}
</article>
{{template "partials/footer.html" .}}`

const builtinTaxonomyTerms = `{{template "partials/header.html" .}}
<h1>{{.taxonomy}}</h1>
<ul class="terms">
{{range .terms}}<li><a href="{{.Route}}">{{.Name}}</a> ({{len .Posts}})</li>
{{end}}</ul>
{{template "partials/footer.html" .}}`

const builtinNotFound = `{{template "partials/header.html" .}}
<h1>Page not found</h1>
<p><a href="/">Back to {{.site.config.Title}}</a></p>
{{template "partials/footer.html" .}}`

const builtinSearch = `{{template "partials/header.html" .}}
<h1>Search</h1>
<input type="search" id="search-input" placeholder="Search&hellip;">
<ul id="search-results"></ul>
<script>
(function () {
  var index = null;
  var input = document.getElementById('search-input');
  var results = document.getElementById('search-results');
  input.addEventListener('input', function () {
    var q = input.value.trim().toLowerCase();
    if (!q) { results.innerHTML = ''; return; }
    var render = function () {
      results.innerHTML = '';
      index.filter(function (e) {
        return e.title.toLowerCase().indexOf(q) >= 0 ||
          e.content_snippet.toLowerCase().indexOf(q) >= 0;
      }).slice(0, 20).forEach(function (e) {
        var li = document.createElement('li');
        var a = document.createElement('a');
        a.href = e.url;
        a.textContent = e.title;
        li.appendChild(a);
        results.appendChild(li);
      });
    };
    if (index) { render(); return; }
    fetch('/search-index.json').then(function (r) { return r.json(); }).then(function (data) {
      index = data;
      render();
    });
  });
})();
</script>
{{template "partials/footer.html" .}}`

// builtinTemplates maps template names to their sources. Page templates are
// looked up by these names; partials are referenced from inside them.
var builtinTemplates = map[string]string{
	"partials/header.html":     builtinHeader,
	"partials/footer.html":     builtinFooter,
	"partials/nav.html":        builtinNav,
	"partials/post_list.html":  builtinPostList,
	"partials/pagination.html": builtinPagination,
	"index.html":               builtinIndex,
	"list.html":                builtinListPage,
	"page.html":                builtinPage,
	"post.html":                builtinPost,
	"collection.html":          builtinCollection,
	"collection_item.html":     builtinCollectionItem,
	"taxonomy_terms.html":      builtinTaxonomyTerms,
	"404.html":                 builtinNotFound,
	"search.html":              builtinSearch,
}

// DefaultStylesheet is written to style.css when the builtin theme is used.
const DefaultStylesheet = `:root {
  --fg: #1a1a1a;
  --bg: #ffffff;
  --muted: #6a6a6a;
  --accent: #0a66c2;
}
* { box-sizing: border-box; }
body {
  margin: 0 auto;
  max-width: 46rem;
  padding: 0 1rem;
  color: var(--fg);
  background: var(--bg);
  font-family: system-ui, sans-serif;
  line-height: 1.6;
}
nav a { margin-right: 1rem; color: var(--accent); text-decoration: none; }
main { min-height: 70vh; }
a { color: var(--accent); }
time, .post header span { color: var(--muted); font-size: 0.9em; }
pre { overflow-x: auto; padding: 1rem; background: #f4f4f4; }
code { font-family: ui-monospace, monospace; }
ul.post-list, ul.tags, ul.terms, ul.collection { list-style: none; padding: 0; }
ul.tags li { display: inline-block; margin-right: 0.5rem; }
.pagination { display: flex; gap: 1rem; margin: 2rem 0; }
footer { margin-top: 3rem; color: var(--muted); }
img { max-width: 100%; height: auto; }
`
