package completion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncoding is used when no external encoding is configured.
const DefaultEncoding = "UTF-8"

// EncodingFilter drops names that cannot be written in the external
// encoding of the terminal.
type EncodingFilter struct {
	name   string
	enc    encoding.Encoding
	binary bool
}

// NewEncodingFilter looks up an IANA encoding name. "ASCII-8BIT" and
// "BINARY" accept any bytes.
func NewEncodingFilter(name string) (*EncodingFilter, error) {
	if name == "" {
		name = DefaultEncoding
	}
	switch strings.ToUpper(name) {
	case "ASCII-8BIT", "BINARY":
		return &EncodingFilter{name: name, binary: true}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return &EncodingFilter{name: name, enc: enc}, nil
}

// Name returns the configured encoding name.
func (f *EncodingFilter) Name() string {
	if f == nil {
		return DefaultEncoding
	}
	return f.name
}

// Encodable reports whether s can be converted to the external encoding.
func (f *EncodingFilter) Encodable(s string) bool {
	if f != nil && f.binary {
		return true
	}
	if !utf8.ValidString(s) {
		return false
	}
	if f == nil || f.enc == nil {
		return true
	}
	// Encoders keep state, so each check gets its own.
	_, err := f.enc.NewEncoder().String(s)
	return err == nil
}

// Filter returns the encodable names, preserving order.
func (f *EncodingFilter) Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if f.Encodable(name) {
			out = append(out, name)
		}
	}
	return out
}
