package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStylesKeepText(t *testing.T) {
	for name, style := range map[string]func(string) string{
		"ERROR": ERROR,
		"HINT":  HINT,
		"TYPE":  TYPE,
		"LOG":   LOG,
	} {
		assert.Contains(t, style("String#upcase"), "String#upcase", name)
	}
}
