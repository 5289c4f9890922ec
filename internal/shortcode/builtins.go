package shortcode

// Built-in directive templates. User templates in
// templates/shortcodes/<name>.html override these by name.
var builtinTemplates = map[string]string{
	"youtube": `<div class="video-embed">
  <iframe src="https://www.youtube.com/embed/{{.id}}"
          title="{{with .title}}{{.}}{{else}}YouTube video{{end}}"
          frameborder="0"
          allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"
          allowfullscreen></iframe>
</div>`,

	"figure": `<figure>
  <img src="{{.src}}" alt="{{.alt}}"{{with .width}} width="{{.}}"{{end}}>
  {{with .caption}}<figcaption>{{.}}</figcaption>{{end}}
</figure>`,

	"gist": `<script src="https://gist.github.com/{{.user}}/{{.id}}.js"></script>`,

	"note": `<div class="note note-{{with .type}}{{.}}{{else}}info{{end}}">
  {{with .title}}<p class="note-title">{{.}}</p>{{end}}
  {{.body}}
</div>`,

	"details": `<details{{if .open}} open{{end}}>
  <summary>{{with .summary}}{{.}}{{else}}Details{{end}}</summary>
  {{.body}}
</details>`,
}
