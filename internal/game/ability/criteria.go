package ability

import (
	"encoding/json"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// CriteriaType is the "type" tag of a criteria node.
type CriteriaType string

const (
	CriteriaBase    CriteriaType = "base"
	CriteriaField   CriteriaType = "field"
	CriteriaKey     CriteriaType = "key"
	CriteriaAttr    CriteriaType = "attr"
	CriteriaSpecial CriteriaType = "special"
)

// Operator compares two string operands.
type Operator string

const (
	// OpEquals is string equality.
	OpEquals Operator = "equals"
	// OpGTE parses both operands as integers and compares with >=.
	OpGTE Operator = "gte"
)

// BaseOperator combines the results of a base node's children.
type BaseOperator string

const (
	Every BaseOperator = "every"
	Some  BaseOperator = "some"
)

// Criteria is one node of a use-criteria tree. The set of implementations is
// closed: BaseCriteria, FieldCriteria, KeyCriteria, AttrCriteria,
// SpecialCriteria, and UnknownCriteria for unrecognised tags.
type Criteria interface {
	Type() CriteriaType
	isCriteria()
}

// BaseCriteria is a boolean AND (Every) or OR (Some) over child nodes.
type BaseCriteria struct {
	Operator BaseOperator
	Tests    []Node
}

// FieldCriteria walks Path inside the evaluated ability and compares the
// string found there with the triggering ability's keys[Key].
type FieldCriteria struct {
	Key      string
	Path     []string
	Operator Operator
}

// KeyCriteria compares the triggering ability's keys[Key] with Value.
type KeyCriteria struct {
	Key      string
	Operator Operator
	Value    string
}

// AttrCriteria compares a character attribute's current value with Value.
type AttrCriteria struct {
	Attr     string
	Operator Operator
	Value    string
}

// SpecialCriteria names a built-in or scripted predicate.
type SpecialCriteria struct {
	Name string
}

// UnknownCriteria preserves a node whose type tag is not recognised. It
// always evaluates false.
type UnknownCriteria struct {
	Kind string
}

func (BaseCriteria) Type() CriteriaType      { return CriteriaBase }
func (FieldCriteria) Type() CriteriaType     { return CriteriaField }
func (KeyCriteria) Type() CriteriaType       { return CriteriaKey }
func (AttrCriteria) Type() CriteriaType      { return CriteriaAttr }
func (SpecialCriteria) Type() CriteriaType   { return CriteriaSpecial }
func (u UnknownCriteria) Type() CriteriaType { return CriteriaType(u.Kind) }

func (BaseCriteria) isCriteria()    {}
func (FieldCriteria) isCriteria()   {}
func (KeyCriteria) isCriteria()     {}
func (AttrCriteria) isCriteria()    {}
func (SpecialCriteria) isCriteria() {}
func (UnknownCriteria) isCriteria() {}

// Node wraps a Criteria so trees can be decoded from and encoded to the
// tagged JSON/YAML form. A zero Node holds no criteria.
type Node struct {
	Criteria Criteria
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	switch c := n.Criteria.(type) {
	case BaseCriteria:
		tests := make([]Node, len(c.Tests))
		for i, t := range c.Tests {
			tests[i] = t.Clone()
		}
		if c.Tests == nil {
			tests = nil
		}
		return Node{Criteria: BaseCriteria{Operator: c.Operator, Tests: tests}}
	case FieldCriteria:
		c.Path = slices.Clone(c.Path)
		return Node{Criteria: c}
	default:
		return n
	}
}

// scalar accepts any YAML/JSON scalar and keeps its literal text, so that
// `value: 10` and `value: "10"` decode identically.
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
		return nil
	}
	if string(data) == "null" {
		*s = ""
		return nil
	}
	*s = scalar(data)
	return nil
}

func (s *scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: criteria value must be a scalar", node.Line)
	}
	*s = scalar(node.Value)
	return nil
}

// rawCriteria is the flat wire form of every criteria node kind.
type rawCriteria struct {
	Type     string   `json:"type" yaml:"type"`
	Operator string   `json:"operator,omitempty" yaml:"operator,omitempty"`
	Tests    []Node   `json:"tests,omitempty" yaml:"tests,omitempty"`
	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Path     []string `json:"path,omitempty" yaml:"path,omitempty"`
	Attr     string   `json:"attr,omitempty" yaml:"attr,omitempty"`
	Value    scalar   `json:"value,omitempty" yaml:"value,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
}

func (r rawCriteria) build() Criteria {
	switch CriteriaType(r.Type) {
	case CriteriaBase:
		return BaseCriteria{Operator: BaseOperator(r.Operator), Tests: r.Tests}
	case CriteriaField:
		return FieldCriteria{Key: r.Key, Path: r.Path, Operator: Operator(r.Operator)}
	case CriteriaKey:
		return KeyCriteria{Key: r.Key, Operator: Operator(r.Operator), Value: string(r.Value)}
	case CriteriaAttr:
		return AttrCriteria{Attr: r.Attr, Operator: Operator(r.Operator), Value: string(r.Value)}
	case CriteriaSpecial:
		return SpecialCriteria{Name: r.Name}
	default:
		return UnknownCriteria{Kind: r.Type}
	}
}

func toRaw(c Criteria) rawCriteria {
	switch c := c.(type) {
	case BaseCriteria:
		return rawCriteria{Type: string(CriteriaBase), Operator: string(c.Operator), Tests: c.Tests}
	case FieldCriteria:
		return rawCriteria{Type: string(CriteriaField), Key: c.Key, Path: c.Path, Operator: string(c.Operator)}
	case KeyCriteria:
		return rawCriteria{Type: string(CriteriaKey), Key: c.Key, Operator: string(c.Operator), Value: scalar(c.Value)}
	case AttrCriteria:
		return rawCriteria{Type: string(CriteriaAttr), Attr: c.Attr, Operator: string(c.Operator), Value: scalar(c.Value)}
	case SpecialCriteria:
		return rawCriteria{Type: string(CriteriaSpecial), Name: c.Name}
	case UnknownCriteria:
		return rawCriteria{Type: c.Kind}
	default:
		return rawCriteria{}
	}
}

// MarshalJSON encodes the node in its tagged form; an empty node is null.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Criteria == nil {
		return []byte("null"), nil
	}
	return json.Marshal(toRaw(n.Criteria))
}

// UnmarshalJSON decodes a tagged node; unrecognised tags become UnknownCriteria.
func (n *Node) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Criteria = nil
		return nil
	}
	var raw rawCriteria
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding criteria: %w", err)
	}
	n.Criteria = raw.build()
	return nil
}

// MarshalYAML encodes the node in its tagged form.
func (n Node) MarshalYAML() (any, error) {
	if n.Criteria == nil {
		return nil, nil
	}
	return toRaw(n.Criteria), nil
}

// UnmarshalYAML decodes a tagged node; unrecognised tags become UnknownCriteria.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw rawCriteria
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: decoding criteria: %w", value.Line, err)
	}
	n.Criteria = raw.build()
	return nil
}
