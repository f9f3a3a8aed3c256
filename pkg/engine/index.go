package engine

import (
	"strings"

	"go.uber.org/zap"

	"lir/pkg/metrics"
	"lir/pkg/schema"
)

// IdentityIndex provides O(1) lookup of identity records by full email and by
// bare username (the local part before '@'). It is a plain re-buildable value:
// construct one per settled data snapshot and pass it by reference; there is
// no hidden global.
type IdentityIndex struct {
	ByFullKey  map[string]*schema.IdentityRecord `json:"byFullKey"`
	ByLocalKey map[string]*schema.IdentityRecord `json:"byLocalKey"`
	Stats      IndexStats                        `json:"stats"`
	Collisions []KeyCollision                    `json:"collisions,omitempty"`
}

// IndexStats contains aggregate statistics about the identity index.
type IndexStats struct {
	TotalRecords int `json:"totalRecords"`
	Indexed      int `json:"indexed"`
	Dropped      int `json:"dropped"`
	FullKeys     int `json:"fullKeys"`
	LocalKeys    int `json:"localKeys"`
	Collisions   int `json:"collisions"`
	Freelancers  int `json:"freelancers"`
}

// Indexer builds identity indexes, logging and counting dropped records.
type Indexer struct {
	logger *zap.Logger
	rec    metrics.Recorder
}

// NewIndexer creates an Indexer. A nil logger or recorder is replaced with a no-op.
func NewIndexer(logger *zap.Logger, rec metrics.Recorder) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Indexer{logger: logger, rec: rec}
}

// BuildIdentityIndex constructs an IdentityIndex without diagnostics wiring.
func BuildIdentityIndex(records []*schema.IdentityRecord) *IdentityIndex {
	return NewIndexer(nil, nil).Build(records)
}

// Build constructs an IdentityIndex from identity records. For every record the
// full key and local key are derived and inserted into their key spaces. On
// collision the later record in iteration order wins (last-write-wins); every
// overwrite is recorded so operators can see shadowing, notably people sharing
// a local part on different domains.
//
// Records with neither email nor username are dropped: logged and counted,
// never an error.
func (ix *Indexer) Build(records []*schema.IdentityRecord) *IdentityIndex {
	index := &IdentityIndex{
		ByFullKey:  make(map[string]*schema.IdentityRecord, len(records)),
		ByLocalKey: make(map[string]*schema.IdentityRecord, len(records)),
	}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		index.Stats.TotalRecords++

		if !rec.Indexable() {
			index.Stats.Dropped++
			ix.rec.RecordIdentityDropped(rec.Source)
			ix.logger.Debug("identity record dropped: no email or username",
				zap.String("source", rec.Source),
				zap.String("display_name", rec.DisplayName),
			)
			continue
		}
		index.Stats.Indexed++
		if rec.Freelance() {
			index.Stats.Freelancers++
		}

		value := rec.PrimaryEmail
		if value == "" {
			value = rec.Username
		}
		fullKey, localKey := schema.EmailKeys(value)

		ix.insert(index, index.ByFullKey, SpaceFull, fullKey, rec)
		ix.insert(index, index.ByLocalKey, SpaceLocal, localKey, rec)
	}

	index.Stats.FullKeys = len(index.ByFullKey)
	index.Stats.LocalKeys = len(index.ByLocalKey)
	return index
}

func (ix *Indexer) insert(index *IdentityIndex, space map[string]*schema.IdentityRecord, spaceName, key string, rec *schema.IdentityRecord) {
	if key == "" {
		return
	}
	if prev, exists := space[key]; exists && prev != rec {
		collision := newKeyCollision(spaceName, key, prev, rec)
		index.Collisions = append(index.Collisions, collision)
		index.Stats.Collisions++
		ix.rec.RecordKeyCollision()
		ix.logger.Warn("index key collision, last write wins",
			zap.String("space", spaceName),
			zap.String("key", key),
			zap.String("previous_source", prev.Source),
			zap.String("replacement_source", rec.Source),
		)
	}
	space[key] = rec
}

// LookupFull returns the record indexed under the full-key space, or nil.
// Matching is case-insensitive and exact; no fuzzy matching anywhere.
func (idx *IdentityIndex) LookupFull(key string) *schema.IdentityRecord {
	if idx == nil {
		return nil
	}
	return idx.ByFullKey[strings.ToLower(strings.TrimSpace(key))]
}

// LookupLocal returns the record indexed under the local-key space, or nil.
func (idx *IdentityIndex) LookupLocal(key string) *schema.IdentityRecord {
	if idx == nil {
		return nil
	}
	return idx.ByLocalKey[strings.ToLower(strings.TrimSpace(key))]
}

// Lookup performs a case-insensitive exact match against the full-key space
// and then the local-key space.
func (idx *IdentityIndex) Lookup(key string) *schema.IdentityRecord {
	if rec := idx.LookupFull(key); rec != nil {
		return rec
	}
	return idx.LookupLocal(key)
}
