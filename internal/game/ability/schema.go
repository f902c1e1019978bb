package ability

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// Schema validates catalog documents against the embedded CUE definition
// #Catalog.
//
// A Schema is not safe for concurrent use.
type Schema struct {
	ctx     *cue.Context
	catalog cue.Value
}

// NewSchema compiles the embedded catalog schema.
//
// Postcondition: Returns a non-nil Schema or a non-nil error.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling catalog schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Catalog"))
	if !def.Exists() {
		return nil, errors.New("catalog schema has no #Catalog definition")
	}
	return &Schema{ctx: ctx, catalog: def}, nil
}

// ValidateYAML parses data as YAML and validates the document. An empty
// document is valid.
func (s *Schema) ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	return s.Validate(doc)
}

// Validate checks a decoded document (maps, slices and scalars) against
// #Catalog.
//
// Postcondition: Returns nil if doc conforms, or an error naming the violations.
func (s *Schema) Validate(doc any) error {
	v := s.ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := s.catalog.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}
