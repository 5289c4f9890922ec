package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, test.err.Error())
		})
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := ParseError("content/bad.md", "unterminated frontmatter")

	require.NotNil(t, err.Context)
	assert.Equal(t, "content/bad.md", err.Context["path"])
	assert.Contains(t, err.Error(), "content/bad.md")
}

func TestIsCategory(t *testing.T) {
	assert.True(t, IsCategory(ConfigNotFound("config.yaml"), CategoryConfig))
	assert.False(t, IsCategory(ConfigNotFound("config.yaml"), CategoryParse))
	assert.False(t, IsCategory(fmt.Errorf("plain"), CategoryConfig))
}

func TestIsCategory_Wrapped(t *testing.T) {
	inner := RouteConflictError("/about/", "a.md", "b.md")
	wrapped := fmt.Errorf("assemble: %w", inner)
	assert.True(t, IsCategory(wrapped, CategoryConflict))
}

func TestFatalForBuild(t *testing.T) {
	assert.True(t, FatalForBuild(RouteConflictError("/x/", "a.md", "b.md")))
	assert.True(t, FatalForBuild(GuardViolation("/", "filesystem root")))
	assert.True(t, FatalForBuild(IOError("write", "out/index.html", fmt.Errorf("disk full"))))
	assert.False(t, FatalForBuild(ParseError("content/bad.md", "unterminated header")))
	assert.False(t, FatalForBuild(ValidationError("content/bad.md", "date", "invalid month")))
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 2, adapter.ExitCodeFor(ParseError("a.md", "bad header")))
	assert.Equal(t, 7, adapter.ExitCodeFor(ConfigNotFound("config.yaml")))
	assert.Equal(t, 9, adapter.ExitCodeFor(RouteConflictError("/x/", "a.md", "b.md")))
	assert.Equal(t, 13, adapter.ExitCodeFor(GuardViolation("/home/user", "home directory")))
	assert.Equal(t, 1, adapter.ExitCodeFor(fmt.Errorf("plain")))
}
