package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDoc(t *testing.T) {
	var buf bytes.Buffer
	RenderDoc(&buf, DocEntry{
		Namespace: "String#upcase",
		Signature: "upcase -> String",
		Doc:       "Returns a copy of the receiver with all lowercase letters replaced with their uppercase counterparts.",
		Source:    "core.yaml",
	}, 40)
	output := buf.String()

	assert.Contains(t, output, "String#upcase")
	assert.Contains(t, output, "upcase -> String")
	assert.Contains(t, output, "defined in core.yaml")
	assert.Contains(t, output, "╭")
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 40, "line %q exceeds the width", line)
	}
}

func TestRenderDoc_NoDocumentation(t *testing.T) {
	var buf bytes.Buffer
	RenderDoc(&buf, DocEntry{Namespace: "Foo"}, 80)

	assert.Contains(t, buf.String(), "Foo")
	assert.Contains(t, buf.String(), "(no documentation)")
	assert.NotContains(t, buf.String(), "defined in")
}

func TestRenderSource(t *testing.T) {
	var buf bytes.Buffer
	RenderSource(&buf, DocEntry{Namespace: "Integer#abs", Signature: "abs -> Integer", Source: "core.yaml"})
	assert.Equal(t, "From: core.yaml\n\n  abs -> Integer\n", buf.String())

	buf.Reset()
	RenderSource(&buf, DocEntry{Namespace: "Integer#abs"})
	assert.Equal(t, "From: (unknown)\n\n", buf.String())
}
