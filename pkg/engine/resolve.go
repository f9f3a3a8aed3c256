package engine

import (
	"lir/pkg/metrics"
	"lir/pkg/schema"
)

// Match types reported by the resolver.
const (
	MatchFullEmail = "full_email"
	MatchLocalPart = "local_part"
	MatchNone      = "none"
)

// ResolvedRecord pairs a foreign value with the identity it matched.
type ResolvedRecord struct {
	Value     string                 `json:"value"`
	MatchType string                 `json:"matchType"`
	Identity  *schema.IdentityRecord `json:"identity"`
}

// ResolveStats contains aggregate statistics about a batch resolution.
type ResolveStats struct {
	TotalProcessed int `json:"totalProcessed"`
	FullEmail      int `json:"fullEmail"`
	LocalPart      int `json:"localPart"`
	Misses         int `json:"misses"`
}

// ResolveResult contains the outcome of resolving a batch of foreign values.
type ResolveResult struct {
	Matched   []ResolvedRecord `json:"matched"`
	Unmatched []string         `json:"unmatched"`
	Stats     ResolveStats     `json:"stats"`
}

// Resolver matches foreign records (license ledger emails, vendor group
// members) against a built identity index.
type Resolver struct {
	rec metrics.Recorder
}

// NewResolver creates a Resolver. A nil recorder is replaced with a no-op.
func NewResolver(rec metrics.Recorder) *Resolver {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Resolver{rec: rec}
}

// Resolve matches a single foreign email or username without diagnostics wiring.
func Resolve(value string, index *IdentityIndex) *schema.IdentityRecord {
	rec, _ := resolve(value, index)
	return rec
}

// Resolve matches a single foreign email or username. A nil result is an
// expected, common outcome; absence of a cross-reference is not an error.
func (r *Resolver) Resolve(value string, index *IdentityIndex) *schema.IdentityRecord {
	rec, matchType := resolve(value, index)
	if rec == nil {
		r.rec.RecordResolveMiss()
	} else {
		r.rec.RecordResolveHit(matchType)
	}
	return rec
}

// ResolveAll resolves a batch of foreign values against the index.
func (r *Resolver) ResolveAll(values []string, index *IdentityIndex) *ResolveResult {
	result := &ResolveResult{
		Matched:   make([]ResolvedRecord, 0, len(values)),
		Unmatched: make([]string, 0),
	}

	for _, v := range values {
		rec, matchType := resolve(v, index)
		result.Stats.TotalProcessed++

		if rec == nil {
			result.Unmatched = append(result.Unmatched, v)
			result.Stats.Misses++
			r.rec.RecordResolveMiss()
			continue
		}

		result.Matched = append(result.Matched, ResolvedRecord{
			Value:     v,
			MatchType: matchType,
			Identity:  rec,
		})
		switch matchType {
		case MatchFullEmail:
			result.Stats.FullEmail++
		case MatchLocalPart:
			result.Stats.LocalPart++
		}
		r.rec.RecordResolveHit(matchType)
	}

	return result
}

// resolve implements the match cascade, first match wins:
//  1. exact match on the full lowercased value against the full-key space
//  2. everything from '@' onward stripped, matched against the local-key space
//  3. no match: nil, never an error
//
// Deterministic, side-effect free, O(1) after the index is built.
func resolve(value string, index *IdentityIndex) (*schema.IdentityRecord, string) {
	fullKey, localKey := schema.EmailKeys(value)
	if fullKey == "" || index == nil {
		return nil, MatchNone
	}
	if rec := index.LookupFull(fullKey); rec != nil {
		return rec, MatchFullEmail
	}
	if rec := index.LookupLocal(localKey); rec != nil {
		return rec, MatchLocalPart
	}
	return nil, MatchNone
}
