package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soundprediction/claimgraph/pkg/types"
)

// Property keys written by the ingestor beyond provenance.
const (
	PropTypeID       = "type_id"
	PropSurface      = "surface"
	PropNormalized   = "normalized"
	PropCharStart    = "char_start"
	PropCharEnd      = "char_end"
	PropEvidence     = "evidence"
	PropText         = "text"
	PropRelationID   = "relation_id"
	PropEntities     = "entities"
	PropEntityLabels = "entity_labels"
	PropQualifiers   = "qualifiers"
)

// FlattenProperties prepares a property map for a store that only holds
// scalars. Nil values are omitted; maps, slices and structs become JSON strings.
func FlattenProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case nil:
			continue
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			out[k] = val
		default:
			data, err := json.Marshal(val)
			if err != nil {
				out[k] = fmt.Sprint(val)
				continue
			}
			if string(data) == "null" {
				continue
			}
			out[k] = string(data)
		}
	}
	return out
}

func entityProperties(e types.ExtractedEntity, prov types.Provenance) map[string]any {
	props := map[string]any{
		PropTypeID:           e.TypeID,
		PropSurface:          e.Surface,
		PropCharStart:        e.CharStart,
		PropCharEnd:          e.CharEnd,
		types.PropDocID:      prov.DocID,
		types.PropChunkIndex: prov.ChunkIndex,
	}
	if strings.TrimSpace(e.Normalized) != "" {
		props[PropNormalized] = e.Normalized
	}
	return FlattenProperties(props)
}

func relationshipProperties(r types.ExtractedRelationship) map[string]any {
	props := map[string]any{
		PropTypeID:    r.TypeID,
		PropCharStart: r.CharStart,
		PropCharEnd:   r.CharEnd,
	}
	if strings.TrimSpace(r.Evidence) != "" {
		props[PropEvidence] = r.Evidence
	}
	return FlattenProperties(props)
}

func claimProperties(c types.Claim, prov types.Provenance) map[string]any {
	props := prov.Properties()
	props[PropText] = c.Text
	props[PropRelationID] = c.RelationID
	props[PropEntities] = c.Entities
	props[PropEntityLabels] = c.EntityLabels()
	if len(c.Qualifiers) > 0 {
		props[PropQualifiers] = c.Qualifiers
	}
	return FlattenProperties(props)
}

// EntityLabelsFromProperties reads the entity labels of a stored claim.
// It accepts the flattened JSON form and native string lists.
func EntityLabelsFromProperties(props map[string]any) []string {
	switch v := props[PropEntityLabels].(type) {
	case string:
		var labels []string
		if err := json.Unmarshal([]byte(v), &labels); err == nil {
			return labels
		}
	case []string:
		return v
	case []any:
		labels := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				labels = append(labels, s)
			}
		}
		return labels
	}

	// Fall back to the serialized entities list.
	if raw, ok := props[PropEntities].(string); ok {
		var entities []types.ClaimEntity
		if err := json.Unmarshal([]byte(raw), &entities); err == nil {
			return types.Claim{Entities: entities}.EntityLabels()
		}
	}
	return []string{}
}
