package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Names(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{
		"exit", "help", "history", "irb_info", "ls",
		"show_cmds", "show_doc", "show_source", "whatis",
	}, r.Names())
}

func TestRegistry_Complete(t *testing.T) {
	r := Default()

	tests := []struct {
		prefix   string
		expected []string
	}{
		{"show_s", []string{"show_source"}},
		{"show_", []string{"show_cmds", "show_doc", "show_source"}},
		{"s", []string{"show_cmds", "show_doc", "show_source"}},
		{"h", []string{"help", "history"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Complete(tt.prefix))
		})
	}
}

func TestRegistry_CompleteEmptyPrefix(t *testing.T) {
	assert.Empty(t, Default().Complete(""))
}

func TestRegistry_Lookup(t *testing.T) {
	r := Default()

	cmd, ok := r.Lookup("?")
	require.True(t, ok)
	assert.Equal(t, "show_doc", cmd.Name)

	cmd, ok = r.Lookup("$")
	require.True(t, ok)
	assert.Equal(t, "show_source", cmd.Name)

	cmd, ok = r.Lookup("quit")
	require.True(t, ok)
	assert.Equal(t, "exit", cmd.Name)

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Command{Name: "edit", Aliases: []string{"e"}}))

	err := r.Register(Command{Name: "e"})
	assert.Error(t, err)

	err = r.Register(Command{Name: "other", Aliases: []string{"edit"}})
	assert.Error(t, err)

	err = r.Register(Command{})
	assert.Error(t, err)
}

func TestRegistry_Suggest(t *testing.T) {
	r := Default()
	assert.Equal(t, []string{"show_doc"}, r.Suggest("shdoc"))
	assert.Nil(t, r.Suggest(""))
	assert.Empty(t, r.Suggest("qqq"))
}

func TestRegistry_IsCommandArgumentPosition(t *testing.T) {
	r := Default()

	tests := []struct {
		preposing string
		expected  bool
	}{
		{"help ", true},
		{"help   ", true},
		{"help", false},
		{"", false},
		{"ls ", false},
		{"helpme ", false},
		{"x = 1; help ", false},
	}

	for _, tt := range tests {
		t.Run(tt.preposing, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.IsCommandArgumentPosition(tt.preposing))
		})
	}
}

func TestRegistry_Parse(t *testing.T) {
	r := Default()

	cmd, args, err := r.Parse("show_doc String#upcase")
	require.NoError(t, err)
	assert.Equal(t, "show_doc", cmd.Name)
	assert.Equal(t, []string{"String#upcase"}, args)

	cmd, args, err = r.Parse(`history -g "a b"`)
	require.NoError(t, err)
	assert.Equal(t, "history", cmd.Name)
	assert.Equal(t, []string{"-g", "a b"}, args)

	cmd, args, err = r.Parse("whatis [1, 2].map { |x| x.to_s }")
	require.NoError(t, err)
	assert.Equal(t, "whatis", cmd.Name)
	assert.Equal(t, []string{"[1, 2].map { |x| x.to_s }"}, args)

	_, args, err = r.Parse("ls")
	require.NoError(t, err)
	assert.Empty(t, args)

	cmd, args, err = r.Parse("help\tshow_doc")
	require.NoError(t, err)
	assert.Equal(t, "help", cmd.Name)
	assert.Equal(t, []string{"show_doc"}, args)

	cmd, args, err = r.Parse("whatis \t 1 +  2 ")
	require.NoError(t, err)
	assert.Equal(t, "whatis", cmd.Name)
	assert.Equal(t, []string{"1 +  2"}, args)

	_, _, err = r.Parse("frobnicate 1")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, _, err = r.Parse(`show_doc "unterminated`)
	assert.Error(t, err)
}

func TestRegistry_IsCommand(t *testing.T) {
	r := Default()

	assert.True(t, r.IsCommand("ls"))
	assert.True(t, r.IsCommand("  help show_doc"))
	assert.True(t, r.IsCommand("? String#upcase"))
	assert.True(t, r.IsCommand("ls == 1"))
	assert.False(t, r.IsCommand("ls = 1"))
	assert.False(t, r.IsCommand("ls += 1"))
	assert.False(t, r.IsCommand("help ||= x"))
	assert.False(t, r.IsCommand("ls <<= 1"))
	assert.False(t, r.IsCommand("ls\t-= 1"))
	assert.True(t, r.IsCommand("help\tshow_doc"))
	assert.True(t, r.IsCommand("ls 1"))
	assert.False(t, r.IsCommand("1 + 2"))
	assert.False(t, r.IsCommand(""))
}

func TestRegistry_Run(t *testing.T) {
	r := Default()

	var got []string
	require.NoError(t, r.SetHandler("?", func(_ context.Context, args []string) error {
		got = args
		return nil
	}))
	require.NoError(t, r.SetHandler("exit", func(context.Context, []string) error {
		return ErrExit
	}))

	require.NoError(t, r.Run(context.Background(), "show_doc Integer.sqrt"))
	assert.Equal(t, []string{"Integer.sqrt"}, got)

	err := r.Run(context.Background(), "quit")
	assert.True(t, errors.Is(err, ErrExit))

	err = r.Run(context.Background(), "irb_info")
	assert.Error(t, err)

	err = r.SetHandler("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistry_Commands(t *testing.T) {
	r := Default()
	cmds := r.Commands()
	require.Len(t, cmds, 9)
	assert.Equal(t, "Context", cmds[0].Category)
	assert.Equal(t, "ls", cmds[0].Name)
}
