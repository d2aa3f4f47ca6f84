package completion

import (
	"testing"

	"github.com/atinylittleshell/typecomp/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"type", KindType, false},
		{":type", KindType, false},
		{"Regexp", KindRegexp, false},
		{"  regexp ", KindRegexp, false},
		{"", "", false},
		{"bogus", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		version    string
		expected   Kind
		wantErr    bool
	}{
		{name: "default on 3.4", version: "3.4.0", expected: KindType},
		{name: "default on 3.4 preview", version: "3.4.0-preview1", expected: KindType},
		{name: "default on 3.5", version: "3.5", expected: KindType},
		{name: "default on 3.3", version: "3.3.6", expected: KindRegexp},
		{name: "configured type on old runtime", configured: "type", version: "2.7.0", expected: KindType},
		{name: "configured regexp on new runtime", configured: "regexp", version: "3.4.1", expected: KindRegexp},
		{name: "bad version", version: "not-a-version", expected: KindRegexp, wantErr: true},
		{name: "bad kind", configured: "bogus", version: "3.4.0", expected: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ResolveKind(tt.configured, tt.version)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestNew(t *testing.T) {
	store := coreStore(t)
	logger := zaptest.NewLogger(t)

	p, err := New(Options{Store: store, Logger: logger})
	require.NoError(t, err)
	assert.IsType(t, &TypeProvider{}, p)

	p, err = New(Options{Store: store, RuntimeVersion: "3.3.0", Logger: logger})
	require.NoError(t, err)
	assert.IsType(t, &RegexpProvider{}, p)

	p, err = New(Options{Kind: "regexp", Store: store, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, "RegexpCompletor", p.Name())

	p, err = New(Options{Store: signature.NewStore(), RuntimeVersion: "", Logger: logger})
	require.NoError(t, err)
	assert.IsType(t, &RegexpProvider{}, p, "an empty store has no version")

	_, err = New(Options{Kind: "bogus", Store: store})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(Options{Store: store, Encoding: "no-such-encoding"})
	assert.Error(t, err)
}

func TestEncodingFilter(t *testing.T) {
	utf8, err := NewEncodingFilter("")
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", utf8.Name())
	assert.True(t, utf8.Encodable("abc"))
	assert.True(t, utf8.Encodable("héllo"))
	assert.False(t, utf8.Encodable("b\xff"))

	latin1, err := NewEncodingFilter("ISO-8859-1")
	require.NoError(t, err)
	assert.True(t, latin1.Encodable("héllo"))
	assert.False(t, latin1.Encodable("price€"))
	assert.False(t, latin1.Encodable("b\xff"))

	binary, err := NewEncodingFilter("binary")
	require.NoError(t, err)
	assert.True(t, binary.Encodable("b\xff"))

	assert.Equal(t, []string{"a", "c"}, latin1.Filter([]string{"a", "b€", "c"}))

	var none *EncodingFilter
	assert.True(t, none.Encodable("abc"))
	assert.False(t, none.Encodable("\xff"))
	assert.Equal(t, "UTF-8", none.Name())

	_, err = NewEncodingFilter("klingon")
	assert.Error(t, err)
}
