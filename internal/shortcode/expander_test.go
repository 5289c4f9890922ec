package shortcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func newTestExpander(t *testing.T) *Expander {
	t.Helper()
	e, err := NewExpander(nil, nil)
	require.NoError(t, err)
	return e
}

func TestExpandInlineBuiltin(t *testing.T) {
	e := newTestExpander(t)

	out, err := e.Expand(`before {{< youtube id="abc" >}} after`, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
	assert.Contains(t, out, "youtube.com/embed/abc")
}

func TestExpandBlockBuiltin(t *testing.T) {
	e := newTestExpander(t)

	out, err := e.Expand(`{{% note type="warning" %}}Careful now{{% /note %}}`, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, "note-warning")
	assert.Contains(t, out, "Careful now")
}

func TestExpandNestedBlocks(t *testing.T) {
	e := newTestExpander(t)

	src := `{{% note %}}outer {{% details summary="More" %}}inner{{% /details %}}{{% /note %}}`
	out, err := e.Expand(src, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, "outer")
	assert.Contains(t, out, "inner")
	assert.Contains(t, out, "<summary>More</summary>")
}

func TestExpandBlockBodyRenderer(t *testing.T) {
	e, err := NewExpander(nil, func(md string) (string, error) {
		return "<p>" + md + "</p>", nil
	})
	require.NoError(t, err)

	out, err := e.Expand(`{{% note %}}text{{% /note %}}`, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, "<p>text</p>")
}

func TestExpandUnknownDirective(t *testing.T) {
	e := newTestExpander(t)

	_, err := e.Expand(`{{< nope id="x" >}}`, "content/x.md")
	require.Error(t, err)
	assert.True(t, builderrors.IsCategory(err, builderrors.CategoryShortcode))
	assert.Contains(t, err.Error(), "nope")
	assert.Contains(t, err.Error(), "content/x.md")
}

func TestExpandFenceContentUntouched(t *testing.T) {
	e := newTestExpander(t)

	src := "```\n{{< youtube id=\"skip\" >}}\n```\n"
	out, err := e.Expand(src, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, `{{< youtube id="skip" >}}`)
}

func TestExpandRef(t *testing.T) {
	e := newTestExpander(t)
	e.SetRefRegistry(map[string]string{
		"about.md":       "/about/",
		"posts/hello.md": "/posts/hello/",
	})

	t.Run("positional", func(t *testing.T) {
		out, err := e.Expand(`[About]({{< ref "about.md" >}})`, "content/x.md")
		require.NoError(t, err)
		assert.Equal(t, "[About](/about/)", out)
	})

	t.Run("path key", func(t *testing.T) {
		out, err := e.Expand(`{{< ref path="posts/hello.md" >}}`, "content/x.md")
		require.NoError(t, err)
		assert.Equal(t, "/posts/hello/", out)
	})

	t.Run("broken reference", func(t *testing.T) {
		_, err := e.Expand(`{{< ref "missing.md" >}}`, "content/x.md")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.md")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := e.Expand(`{{< ref >}}`, "content/x.md")
		require.Error(t, err)
		assert.True(t, builderrors.IsCategory(err, builderrors.CategoryShortcode))
	})
}

func TestExpandUserTemplateOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "youtube.html"),
		[]byte(`<span class="custom-video">{{.id}}</span>`), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "badge.html"),
		[]byte(`<span class="badge">{{.text}}</span>`), 0o644))

	e, err := NewExpander([]string{dir}, nil)
	require.NoError(t, err)

	out, err := e.Expand(`{{< youtube id="abc" >}} {{< badge text="new" >}}`, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, `custom-video`)
	assert.NotContains(t, out, "iframe")
	assert.Contains(t, out, `<span class="badge">new</span>`)
}

func TestExpandArgumentEscaping(t *testing.T) {
	e := newTestExpander(t)

	out, err := e.Expand(`{{< figure src="x.png" alt="a \"quoted\" word" >}}`, "content/x.md")
	require.NoError(t, err)
	assert.Contains(t, out, "quoted")
}
