package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		name, args, err := parseArgs(`youtube id="abc123"`)
		require.NoError(t, err)
		assert.Equal(t, "youtube", name)
		assert.Equal(t, "abc123", args["id"])
	})

	t.Run("multiple keys", func(t *testing.T) {
		name, args, err := parseArgs(`figure src="img.png" alt="a chart"`)
		require.NoError(t, err)
		assert.Equal(t, "figure", name)
		assert.Equal(t, "img.png", args["src"])
		assert.Equal(t, "a chart", args["alt"])
	})

	t.Run("escape sequences", func(t *testing.T) {
		_, args, err := parseArgs(`note title="he said \"hi\" and used a \\"`)
		require.NoError(t, err)
		assert.Equal(t, `he said "hi" and used a \`, args["title"])
	})

	t.Run("positional", func(t *testing.T) {
		name, args, err := parseArgs(`ref "about.md"`)
		require.NoError(t, err)
		assert.Equal(t, "ref", name)
		assert.Equal(t, "about.md", args[positionalKey])
	})

	errorCases := []struct {
		label string
		input string
	}{
		{"empty", ""},
		{"missing equals", "test key"},
		{"unquoted value", `test key=value`},
		{"unclosed string", `test key="unclosed`},
	}
	for _, tc := range errorCases {
		t.Run(tc.label, func(t *testing.T) {
			_, _, err := parseArgs(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestParseTextOnly(t *testing.T) {
	nodes, err := Parse("just plain markdown\n\nwith paragraphs")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeText, nodes[0].Kind)
	assert.Equal(t, "just plain markdown\n\nwith paragraphs", nodes[0].Text)
}

func TestParseInlineDirective(t *testing.T) {
	nodes, err := Parse(`before {{< youtube id="abc" >}} after`)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "before ", nodes[0].Text)
	assert.Equal(t, NodeInline, nodes[1].Kind)
	assert.Equal(t, "youtube", nodes[1].Name)
	assert.Equal(t, "abc", nodes[1].Args["id"])
	assert.Equal(t, " after", nodes[2].Text)
}

func TestParseBlockDirective(t *testing.T) {
	nodes, err := Parse(`{{% note type="info" %}}Inner *markdown*{{% /note %}}`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	block := nodes[0]
	assert.Equal(t, NodeBlock, block.Kind)
	assert.Equal(t, "note", block.Name)
	assert.Equal(t, "info", block.Args["type"])
	require.Len(t, block.Children, 1)
	assert.Equal(t, "Inner *markdown*", block.Children[0].Text)
}

func TestParseNestedBlocks(t *testing.T) {
	src := `{{% note type="info" %}}outer {{% details summary="More" %}}inner{{% /details %}}{{% /note %}}`
	nodes, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	note := nodes[0]
	require.Len(t, note.Children, 2)
	assert.Equal(t, "outer ", note.Children[0].Text)
	details := note.Children[1]
	assert.Equal(t, NodeBlock, details.Kind)
	assert.Equal(t, "details", details.Name)
}

// Same-named nested blocks must pair with their own closing tag.
func TestParseSameNameNesting(t *testing.T) {
	src := `{{% note %}}a {{% note %}}b{{% /note %}} c{{% /note %}} tail`
	nodes, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, " tail", nodes[1].Text)

	outer := nodes[0]
	require.Len(t, outer.Children, 3)
	assert.Equal(t, NodeBlock, outer.Children[1].Kind)
}

func TestParseFenceShielding(t *testing.T) {
	for _, marker := range []string{"```", "~~~"} {
		src := marker + "\n{{< youtube id=\"skip\" >}}\n" + marker + "\n\noutside {{< youtube id=\"real\" >}}"
		nodes, err := Parse(src)
		require.NoError(t, err, marker)

		require.Len(t, nodes, 2, marker)
		assert.Contains(t, nodes[0].Text, `{{< youtube id="skip" >}}`)
		assert.Equal(t, NodeInline, nodes[1].Kind)
		assert.Equal(t, "real", nodes[1].Args["id"])
	}
}

func TestParseIndentedCodeShielding(t *testing.T) {
	src := "para\n\n    {{< youtube id=\"skip\" >}}\n\nafter"
	nodes, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Contains(t, nodes[0].Text, `{{< youtube id="skip" >}}`)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		label string
		input string
	}{
		{"unclosed inline", `{{< youtube id="abc"`},
		{"missing block closing tag", `{{% note %}}content without close`},
		{"bad args", `{{< youtube id=abc >}}`},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			_, err := Parse(tc.input)
			assert.Error(t, err)
		})
	}
}

func TestParseDepthBound(t *testing.T) {
	var b strings.Builder
	for range MaxNestingDepth + 1 {
		b.WriteString(`{{% note %}}`)
	}
	b.WriteString("deep")
	for range MaxNestingDepth + 1 {
		b.WriteString(`{{% /note %}}`)
	}

	_, err := Parse(b.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting exceeds depth")
}
