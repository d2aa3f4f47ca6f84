package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		code     string
		wantType string
	}{
		{"1", "Integer"},
		{`"a".upcase`, "String"},
		{"[1, 2].first", "Integer | NilClass"},
		{"n = 10; n.to_s", "String"},
		{"", "untyped"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			ev, err := Evaluate(tt.code, nil, store)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ev.Type())
		})
	}
}

func TestEvaluate_Assignments(t *testing.T) {
	store := newTestStore(t)
	binding := NewStaticBinding()
	binding.SetLocal("s", "String")

	ev, err := Evaluate(`n = 10; @name = s.upcase; $count = n; m = "x"`, binding, store)
	require.NoError(t, err)
	require.Len(t, ev.Assignments, 4)

	assert.Equal(t, "n", ev.Assignments[0].Name)
	assert.True(t, ev.Assignments[0].Local)
	assert.Equal(t, "@name", ev.Assignments[1].Name)
	assert.False(t, ev.Assignments[1].Local)
	assert.Equal(t, "String", ev.Type())

	global := ev.Assignments[2]
	assert.Equal(t, "$count", global.Name)
	require.Len(t, global.Types, 1)
	assert.Equal(t, "Integer", global.Types[0].String())
}

func TestEvaluate_SyntaxError(t *testing.T) {
	_, err := Evaluate("1 +", nil, newTestStore(t))
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = Evaluate("foo(1, 2", nil, newTestStore(t))
	assert.ErrorIs(t, err, ErrSyntax)
}
