package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

func TestTakeSnapshot(t *testing.T) {
	root := writeProject(t, map[string]string{
		"config.toml":            `title = "x"`,
		"content/posts/a.md":     "hello",
		"data/menu.toml":         "x = 1",
		"static/css/style.css":   "body{}",
		"templates/base.html":    "<html>",
		"output/index.html":      "never tracked",
		"content/posts/draft.md": "draft",
	})

	snap, err := TakeSnapshot(root, filepath.Join(root, "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, KindContent, snap["content/posts/a.md"].Kind)
	assert.Equal(t, KindData, snap["data/menu.toml"].Kind)
	assert.Equal(t, KindStatic, snap["static/css/style.css"].Kind)
	assert.Equal(t, KindTemplate, snap["templates/base.html"].Kind)
	assert.Equal(t, KindConfig, snap["config.toml"].Kind)
	assert.NotContains(t, snap, "output/index.html")
	assert.NotEmpty(t, snap["content/posts/a.md"].Hash)

	// identical content in two files hashes identically
	assert.Equal(t, snap["content/posts/a.md"].Hash, func() string {
		h, err := HashFile(filepath.Join(root, "content", "posts", "a.md"))
		require.NoError(t, err)
		return h
	}())
}

func TestDiff(t *testing.T) {
	prev := Snapshot{
		"content/a.md": {Hash: "h1", Kind: KindContent},
		"content/b.md": {Hash: "h2", Kind: KindContent},
		"templates/x":  {Hash: "h3", Kind: KindTemplate},
	}
	cur := Snapshot{
		"content/a.md": {Hash: "h1", Kind: KindContent},  // unchanged
		"content/b.md": {Hash: "new", Kind: KindContent}, // edited
		"content/c.md": {Hash: "h4", Kind: KindContent},  // added
		// templates/x deleted
	}

	changes := Diff(prev, cur)
	require.Len(t, changes, 3)
	assert.Equal(t, Change{Path: "content/b.md", Kind: KindContent, Op: OpModified}, changes[0])
	assert.Equal(t, Change{Path: "content/c.md", Kind: KindContent, Op: OpModified}, changes[1])
	assert.Equal(t, Change{Path: "templates/x", Kind: KindTemplate, Op: OpDeleted}, changes[2])
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		changes []Change
		want    Scope
	}{
		{"no changes", nil, ScopeNone},
		{"content edit", []Change{{Path: "content/a.md", Kind: KindContent, Op: OpModified}}, ScopeTargeted},
		{"data edit", []Change{{Path: "data/m.toml", Kind: KindData, Op: OpModified}}, ScopeTargeted},
		{"config edit", []Change{{Path: "config.toml", Kind: KindConfig, Op: OpModified}}, ScopeFull},
		{"template edit", []Change{{Path: "templates/b.html", Kind: KindTemplate, Op: OpModified}}, ScopeFull},
		{"static edit", []Change{{Path: "static/a.css", Kind: KindStatic, Op: OpModified}}, ScopeFull},
		{"content deletion", []Change{{Path: "content/a.md", Kind: KindContent, Op: OpDeleted}}, ScopeFull},
		{
			"content edit alongside template edit",
			[]Change{
				{Path: "content/a.md", Kind: KindContent, Op: OpModified},
				{Path: "templates/b.html", Kind: KindTemplate, Op: OpModified},
			},
			ScopeFull,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.changes))
		})
	}
}

func TestStoreSnapshotRoundTrip(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Empty(t, empty)

	snap := Snapshot{
		"content/a.md": {Hash: "h1", Kind: KindContent},
		"config.toml":  {Hash: "h2", Kind: KindConfig},
	}
	require.NoError(t, store.SaveSnapshot(snap))

	loaded, err := store.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)

	// saving replaces, never merges
	require.NoError(t, store.SaveSnapshot(Snapshot{"content/b.md": {Hash: "h3", Kind: KindContent}}))
	loaded, err = store.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"content/b.md": {Hash: "h3", Kind: KindContent}}, loaded)
}

func TestStoreVariantCache(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.IsFresh("img/a.png", "key1"))
	require.NoError(t, store.Mark("img/a.png", "key1"))
	assert.True(t, store.IsFresh("img/a.png", "key1"))
	assert.False(t, store.IsFresh("img/a.png", "key2"))

	// re-marking updates the key
	require.NoError(t, store.Mark("img/a.png", "key2"))
	assert.True(t, store.IsFresh("img/a.png", "key2"))
}
