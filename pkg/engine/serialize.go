package engine

import (
	"encoding/json"
	"fmt"

	"lir/pkg/schema"
)

// serializedIndex is the JSON-transfer representation of an IdentityIndex:
// a flat record list plus the build-time stats and collisions. The maps are
// rebuilt on the receiving end.
type serializedIndex struct {
	Records    []*schema.IdentityRecord `json:"records"`
	Stats      IndexStats               `json:"stats"`
	Collisions []KeyCollision           `json:"collisions,omitempty"`
}

// SerializeIndex converts an IdentityIndex to a JSON string so the embedding
// dashboard can hand a built snapshot between workers without re-fetching.
func SerializeIndex(index *IdentityIndex) string {
	seen := make(map[*schema.IdentityRecord]bool)
	var records []*schema.IdentityRecord

	for _, rec := range index.ByFullKey {
		if !seen[rec] {
			seen[rec] = true
			records = append(records, rec)
		}
	}
	for _, rec := range index.ByLocalKey {
		if !seen[rec] {
			seen[rec] = true
			records = append(records, rec)
		}
	}

	si := serializedIndex{
		Records:    records,
		Stats:      index.Stats,
		Collisions: index.Collisions,
	}

	data, err := json.Marshal(si)
	if err != nil {
		return `{"records":[],"stats":{}}`
	}
	return string(data)
}

// DeserializeIndex reconstructs an IdentityIndex from its JSON representation.
// The key maps are rebuilt from the record list; stats and collisions are
// preserved from build time (the record list holds only collision winners, so
// rebuilding would otherwise report zero collisions).
func DeserializeIndex(data []byte) (*IdentityIndex, error) {
	var si serializedIndex
	if err := json.Unmarshal(data, &si); err != nil {
		return nil, fmt.Errorf("failed to deserialize identity index: %w", err)
	}

	index := BuildIdentityIndex(si.Records)
	index.Stats = si.Stats
	index.Collisions = si.Collisions
	return index, nil
}
