package signature

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CoreSource names the embedded core signatures in Method.Source.
const CoreSource = "core.yaml"

//go:embed core.yaml
var coreSignatures []byte

type fileSchema struct {
	Version string            `yaml:"version"`
	Globals map[string]string `yaml:"globals"`
	Classes []classSchema     `yaml:"classes"`
}

type classSchema struct {
	Name             string                  `yaml:"name"`
	Kind             string                  `yaml:"kind"`
	Superclass       string                  `yaml:"superclass"`
	Includes         []string                `yaml:"includes"`
	TypeParams       []string                `yaml:"type_params"`
	Doc              string                  `yaml:"doc"`
	Methods          map[string]methodSchema `yaml:"methods"`
	PrivateMethods   map[string]methodSchema `yaml:"private_methods"`
	SingletonMethods map[string]methodSchema `yaml:"singleton_methods"`
	Constants        map[string]string       `yaml:"constants"`
}

// methodSchema accepts either a bare return type (`upcase: String`) or a
// mapping with returns, block_returns and doc.
type methodSchema struct {
	Returns      string `yaml:"returns"`
	BlockReturns string `yaml:"block_returns"`
	Doc          string `yaml:"doc"`
}

func (m *methodSchema) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		m.Returns = value.Value
		return nil
	}
	type plain methodSchema
	return value.Decode((*plain)(m))
}

// NewCoreStore returns a ready store holding only the embedded core
// signatures.
func NewCoreStore() (*Store, error) {
	s := NewStore()
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the core signatures followed by the given files and marks the
// store ready. Files that fail to load are reported in the returned error;
// the rest of the store stays usable.
func (s *Store) Load(paths ...string) error {
	defer s.markReady()

	var errs []error
	if err := s.LoadBytes(CoreSource, coreSignatures); err != nil {
		errs = append(errs, err)
	}
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadAsync runs Load in the background. Loaded and Wait report when it
// finishes.
func (s *Store) LoadAsync(logger *zap.Logger, paths ...string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		if err := s.Load(paths...); err != nil {
			logger.Warn("failed to load some signatures", zap.Error(err))
		}
		stats := s.Stats()
		logger.Debug("signatures loaded",
			zap.Int("classes", stats.Classes),
			zap.Int("modules", stats.Modules),
			zap.Int("methods", stats.Methods))
	}()
}

// LoadFile reads a signature file from disk.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read signature file %s: %w", path, err)
	}
	return s.LoadBytes(filepath.Base(path), data)
}

// LoadBytes decodes a YAML signature document. Classes that already exist
// are reopened: their methods are added to, or replace, the existing ones.
func (s *Store) LoadBytes(source string, data []byte) error {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse signatures %s: %w", source, err)
	}

	classes := make([]*Class, 0, len(file.Classes))
	for i, cs := range file.Classes {
		c, err := buildClass(source, cs)
		if err != nil {
			return fmt.Errorf("signatures %s: class #%d: %w", source, i+1, err)
		}
		classes = append(classes, c)
	}

	globals := make(map[string]TypeExpr, len(file.Globals))
	for name, expr := range file.Globals {
		te, err := ParseTypeExpr(expr)
		if err != nil {
			return fmt.Errorf("signatures %s: global %s: %w", source, name, err)
		}
		globals[name] = te
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, te := range globals {
		s.globals[name] = te
	}
	if s.version == "" {
		s.version = file.Version
	}
	for _, c := range classes {
		s.merge(c)
	}
	s.cacheMu.Lock()
	s.ancestors = map[string][]Ancestor{}
	s.cacheMu.Unlock()
	return nil
}

func buildClass(source string, cs classSchema) (*Class, error) {
	if cs.Name == "" {
		return nil, errors.New("missing name")
	}

	kind := KindClass
	switch cs.Kind {
	case "", string(KindClass):
	case string(KindModule):
		kind = KindModule
	default:
		return nil, fmt.Errorf("%s: unknown kind %q", cs.Name, cs.Kind)
	}

	c := newClass(cs.Name, kind)
	c.Doc = cs.Doc
	c.Source = source
	c.TypeParams = cs.TypeParams

	switch {
	case cs.Superclass != "":
		term, err := parseSingleTerm(cs.Superclass)
		if err != nil {
			return nil, fmt.Errorf("%s: superclass: %w", cs.Name, err)
		}
		c.Superclass = &term
	case kind == KindClass && cs.Name != "BasicObject":
		c.Superclass = &TypeTerm{Name: "Object"}
	}
	for _, inc := range cs.Includes {
		term, err := parseSingleTerm(inc)
		if err != nil {
			return nil, fmt.Errorf("%s: include: %w", cs.Name, err)
		}
		c.Includes = append(c.Includes, term)
	}

	for _, set := range []struct {
		from map[string]methodSchema
		to   map[string]*Method
	}{
		{cs.Methods, c.Methods},
		{cs.PrivateMethods, c.PrivateMethods},
		{cs.SingletonMethods, c.SingletonMethods},
	} {
		for name, ms := range set.from {
			m, err := buildMethod(source, name, ms)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", cs.Name, err)
			}
			set.to[name] = m
		}
	}

	for name, expr := range cs.Constants {
		te, err := ParseTypeExpr(expr)
		if err != nil {
			return nil, fmt.Errorf("%s::%s: %w", cs.Name, name, err)
		}
		c.Constants[name] = te
	}
	return c, nil
}

func buildMethod(source, name string, ms methodSchema) (*Method, error) {
	returns := ms.Returns
	if returns == "" {
		returns = "untyped"
	}
	expr, err := ParseTypeExpr(returns)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", name, err)
	}
	m := &Method{Name: name, Returns: expr, Doc: ms.Doc, Source: source}
	if ms.BlockReturns != "" {
		blockExpr, err := ParseTypeExpr(ms.BlockReturns)
		if err != nil {
			return nil, fmt.Errorf("method %s: block_returns: %w", name, err)
		}
		m.BlockReturns = &blockExpr
	}
	return m, nil
}

func parseSingleTerm(input string) (TypeTerm, error) {
	expr, err := ParseTypeExpr(input)
	if err != nil {
		return TypeTerm{}, err
	}
	if len(expr.Alternatives) != 1 {
		return TypeTerm{}, fmt.Errorf("%q must name a single type", input)
	}
	return expr.Alternatives[0], nil
}

// merge adds c to the store, reopening an existing definition.
// Callers hold s.mu.
func (s *Store) merge(c *Class) {
	existing, ok := s.classes[c.Name]
	if !ok {
		s.classes[c.Name] = c
		return
	}
	if existing.Superclass == nil && existing.Kind == KindClass && existing.Name != "BasicObject" {
		existing.Superclass = c.Superclass
	}
	if len(existing.TypeParams) == 0 {
		existing.TypeParams = c.TypeParams
	}
	if existing.Doc == "" {
		existing.Doc = c.Doc
	}
	existing.Includes = append(existing.Includes, c.Includes...)
	for name, m := range c.Methods {
		existing.Methods[name] = m
	}
	for name, m := range c.PrivateMethods {
		existing.PrivateMethods[name] = m
	}
	for name, m := range c.SingletonMethods {
		existing.SingletonMethods[name] = m
	}
	for name, expr := range c.Constants {
		existing.Constants[name] = expr
	}
}
