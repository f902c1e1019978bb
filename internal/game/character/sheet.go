package character

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

var tracer = otel.Tracer("github.com/cory-johannsen/vennt/internal/game/character")

// LoadSheet reads a character sheet YAML file into a CollectedEntity.
// Owned abilities without an ID are assigned a fresh UUID.
//
// Precondition: path must be a readable YAML file.
// Postcondition: Returns a validated CollectedEntity or a non-nil error.
func LoadSheet(ctx context.Context, path string) (*CollectedEntity, error) {
	_, span := tracer.Start(ctx, "character.LoadSheet")
	defer span.End()
	span.SetAttributes(attribute.String("sheet.path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reading sheet")
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	ce, err := ParseSheet(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parsing sheet")
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	span.SetAttributes(attribute.Int("sheet.abilities", len(ce.Abilities)))
	return ce, nil
}

// ParseSheet decodes and validates a character sheet document. Unknown
// fields are rejected.
//
// Postcondition: Returns a validated CollectedEntity or a non-nil error.
func ParseSheet(data []byte) (*CollectedEntity, error) {
	var ce CollectedEntity
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ce); err != nil {
		return nil, err
	}
	if err := ce.Validate(); err != nil {
		return nil, err
	}
	for i := range ce.Abilities {
		if ce.Abilities[i].ID == "" {
			ce.Abilities[i].ID = uuid.New().String()
		}
	}
	return &ce, nil
}

// Validate checks the entity invariants the rules engine relies on.
//
// Postcondition: Returns nil if valid, or an error describing all violations.
func (c *CollectedEntity) Validate() error {
	var errs []string
	if c.Entity.Name == "" {
		errs = append(errs, "entity.name must not be empty")
	}
	switch c.Entity.Type {
	case TypeCharacter, TypeCog:
	default:
		errs = append(errs, fmt.Sprintf("entity.type must be one of [%s, %s], got %q", TypeCharacter, TypeCog, c.Entity.Type))
	}
	if !ValidGift(c.Entity.OtherFields.Gift) {
		errs = append(errs, fmt.Sprintf("entity.other_fields.gift %q is not a known gift", c.Entity.OtherFields.Gift))
	}
	if !ValidGift(c.Entity.OtherFields.SecondGift) {
		errs = append(errs, fmt.Sprintf("entity.other_fields.second_gift %q is not a known gift", c.Entity.OtherFields.SecondGift))
	}
	for i, a := range c.Abilities {
		if a.Name == "" {
			errs = append(errs, fmt.Sprintf("abilities[%d].name must not be empty", i))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
