package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntityType is an entity category the extractor may assign.
type EntityType struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Examples    []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// RelationshipType is a relationship the extractor may assign to entity pairs and claims.
type RelationshipType struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Target      string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Schema is the vocabulary extraction is constrained to.
type Schema struct {
	EntityTypes       []EntityType       `json:"entity_types" yaml:"entity_types"`
	RelationshipTypes []RelationshipType `json:"relationship_types" yaml:"relationship_types"`
}

// Validate checks the schema is usable.
func (s *Schema) Validate() error {
	if s == nil || (len(s.EntityTypes) == 0 && len(s.RelationshipTypes) == 0) {
		return ErrEmptySchema
	}
	for i, et := range s.EntityTypes {
		if strings.TrimSpace(et.ID) == "" {
			return fmt.Errorf("entity type %d: id cannot be empty", i)
		}
	}
	for i, rt := range s.RelationshipTypes {
		if strings.TrimSpace(rt.ID) == "" {
			return fmt.Errorf("relationship type %d: id cannot be empty", i)
		}
	}
	return nil
}

// HasEntityType reports whether id is a declared entity type.
func (s *Schema) HasEntityType(id string) bool {
	for _, et := range s.EntityTypes {
		if et.ID == id {
			return true
		}
	}
	return false
}

// HasRelationshipType reports whether id is a declared relationship type.
func (s *Schema) HasRelationshipType(id string) bool {
	for _, rt := range s.RelationshipTypes {
		if rt.ID == id {
			return true
		}
	}
	return false
}

// JSON renders the schema the way it is embedded in prompts.
func (s *Schema) JSON() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ParseSchema decodes a schema from JSON or YAML.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	// YAML is a superset of JSON so one decoder covers both.
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads a schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return ParseSchema(data)
}
