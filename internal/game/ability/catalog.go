package ability

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

var tracer = otel.Tracer("github.com/cory-johannsen/vennt/internal/game/ability")

// Path is a named grouping of abilities.
type Path struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"desc,omitempty" yaml:"desc,omitempty"`
	Requirement   string `json:"req,omitempty" yaml:"req,omitempty"`
	Boost         string `json:"boost,omitempty" yaml:"boost,omitempty"`
	Completionist string `json:"completionist,omitempty" yaml:"completionist,omitempty"`
}

// catalogFile is the on-disk shape of one catalog YAML file.
type catalogFile struct {
	Paths     []Path    `yaml:"paths"`
	Abilities []Ability `yaml:"abilities"`
}

// Catalog holds the current definitions of every path and ability.
//
// A Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	Paths     []Path
	Abilities []Ability
	byName    map[string]int
}

// NewCatalog indexes paths and abilities by name. When two abilities share a
// name the first one wins lookups, matching a linear search of Abilities.
//
// Postcondition: Returns a non-nil Catalog.
func NewCatalog(paths []Path, abilities []Ability) *Catalog {
	c := &Catalog{
		Paths:     paths,
		Abilities: abilities,
		byName:    make(map[string]int, len(abilities)),
	}
	for i, a := range abilities {
		if _, dup := c.byName[a.Name]; !dup {
			c.byName[a.Name] = i
		}
	}
	return c
}

// Find returns the catalog definition with exactly the given name.
//
// Postcondition: Returns the ability and true, or nil and false if not found.
func (c *Catalog) Find(name string) (*Ability, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.Abilities[i], true
}

// Len returns the number of ability definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Abilities)
}

// LoadCatalog reads every .yaml/.yml file in dir and merges their paths and
// abilities into one Catalog, in lexical file order. When validate is true
// each file is checked against the catalog schema before decoding.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a non-nil Catalog or a non-nil error.
func LoadCatalog(ctx context.Context, dir string, validate bool) (*Catalog, error) {
	_, span := tracer.Start(ctx, "ability.LoadCatalog")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.dir", dir))

	files, err := yamlFiles(dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing catalog files")
		return nil, err
	}

	var schema *Schema
	if validate {
		schema, err = NewSchema()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "compiling catalog schema")
			return nil, err
		}
	}

	var paths []Path
	var abilities []Ability
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if schema != nil {
			if err := schema.ValidateYAML(data); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "catalog schema violation")
				return nil, fmt.Errorf("validating catalog file %s: %w", path, err)
			}
		}
		var f catalogFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "parsing catalog file")
			return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
		}
		paths = append(paths, f.Paths...)
		abilities = append(abilities, f.Abilities...)
	}

	span.SetAttributes(
		attribute.Int("catalog.files", len(files)),
		attribute.Int("catalog.paths", len(paths)),
		attribute.Int("catalog.abilities", len(abilities)),
	)
	return NewCatalog(paths, abilities), nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
