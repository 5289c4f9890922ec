package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	builderrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func TestWriterWriteFile(t *testing.T) {
	w := NewWriter(t.TempDir())
	require.NoError(t, w.WriteFile("posts/hello/index.html", []byte("<p>hi</p>")))

	content, err := os.ReadFile(filepath.Join(w.Dir(), "posts", "hello", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(content))
	assert.True(t, w.Exists("posts/hello/index.html"))
	assert.False(t, w.Exists("posts/other/index.html"))
}

func TestWriterCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "css", "style.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "robots.txt"), []byte("User-agent: *"), 0o644))

	w := NewWriter(t.TempDir())
	require.NoError(t, w.CopyTree(src))
	assert.True(t, w.Exists("css/style.css"))
	assert.True(t, w.Exists("robots.txt"))

	// missing source is a no-op
	require.NoError(t, w.CopyTree(filepath.Join(src, "nope")))
}

func TestCleanMissingDirIsNoop(t *testing.T) {
	require.NoError(t, Clean(filepath.Join(t.TempDir(), "never-created")))
}

func TestCleanRemovesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644))

	require.NoError(t, Clean(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func requireGuard(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	be, ok := builderrors.AsBuildError(err)
	require.True(t, ok)
	assert.Equal(t, builderrors.CategoryGuard, be.Category)
}

func TestCleanRefusesWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	requireGuard(t, Clean(cwd))

	// cwd must still exist
	_, err = os.Stat(cwd)
	assert.NoError(t, err)
}

func TestCleanRefusesProjectRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte("title: x"), 0o644))
	requireGuard(t, Clean(dir))

	// nothing deleted
	_, err := os.Stat(filepath.Join(dir, config.DefaultFileName))
	assert.NoError(t, err)
}

func TestCleanRefusesHomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	requireGuard(t, Clean(home))
}

func TestIsSafeRedirectPath(t *testing.T) {
	cases := []struct {
		path string
		safe bool
	}{
		{"old-post", true},
		{"2020/old-post", true},
		{"", false},
		{"../escape", false},
		{"a/../b", false},
		{"c:/windows", false},
		{"/absolute", false},
		{`\unc`, false},
		{"con/page", false},
		{"aux.html", false},
		{"normal/con.txt", false},
		{"bad\x01control", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.safe, isSafeRedirectPath(tc.path), tc.path)
	}
}

func TestWriteRedirects(t *testing.T) {
	w := NewWriter(t.TempDir())
	require.NoError(t, w.WriteFile("kept/index.html", []byte("authored")))

	m := &site.Model{
		Config: &config.Config{BaseURL: "https://example.com"},
		Redirects: []site.Redirect{
			{From: "/old-post/", To: "/posts/new-post/"},
			{From: "/kept/", To: "/posts/other/"},  // existing page wins
			{From: "/../escape/", To: "/posts/x/"}, // unsafe, skipped
		},
	}
	require.NoError(t, WriteRedirects(w, m))

	stub, err := os.ReadFile(filepath.Join(w.Dir(), "old-post", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(stub), `url=https://example.com/posts/new-post/`)
	assert.Contains(t, string(stub), `<link rel="canonical" href="https://example.com/posts/new-post/">`)

	kept, err := os.ReadFile(filepath.Join(w.Dir(), "kept", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "authored", string(kept))

	assert.False(t, w.Exists("escape/index.html"))
}
