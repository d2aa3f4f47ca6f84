package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMenu_Columns(t *testing.T) {
	var buf bytes.Buffer
	candidates := []string{"1.abs", "1.allbits?", "1.anybits?", "1.ceil", "1.chr"}
	RenderMenu(&buf, candidates, MenuOptions{Width: 40})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// cells are 12 wide, so three columns of two rows
	require.Len(t, lines, 2)
	assert.Equal(t, "1.abs       1.anybits?  1.chr", lines[0])
	assert.Equal(t, "1.allbits?  1.ceil", lines[1])
}

func TestRenderMenu_SingleColumnWhenNarrow(t *testing.T) {
	var buf bytes.Buffer
	RenderMenu(&buf, []string{"show_cmds", "show_doc", "show_source"}, MenuOptions{Width: 5})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"show_cmds", "show_doc", "show_source"}, lines)
}

func TestRenderMenu_WideCharacters(t *testing.T) {
	var buf bytes.Buffer
	RenderMenu(&buf, []string{"日本", "ab"}, MenuOptions{Width: 80})

	// 日本 is four columns wide, so cells are six columns
	assert.Equal(t, "日本  ab\n", buf.String())
}

func TestRenderMenu_Max(t *testing.T) {
	var buf bytes.Buffer
	candidates := make([]string, 1205)
	for i := range candidates {
		candidates[i] = "m"
	}
	RenderMenu(&buf, candidates, MenuOptions{Width: 80, Max: 5})

	assert.Contains(t, buf.String(), "… and 1,200 more")
}

func TestRenderMenu_Empty(t *testing.T) {
	var buf bytes.Buffer
	RenderMenu(&buf, nil, MenuOptions{})
	assert.Empty(t, buf.String())
}

func TestRenderMenu_Selected(t *testing.T) {
	var buf bytes.Buffer
	RenderMenu(&buf, []string{"1.abs", "1.ceil"}, MenuOptions{Width: 80, Selected: "1.ceil"})

	assert.Contains(t, buf.String(), "1.abs")
	assert.Contains(t, buf.String(), "1.ceil")
}
