package engine

import "lir/pkg/schema"

// Key space names.
const (
	SpaceFull  = "full"
	SpaceLocal = "local"
)

// KeyCollision records two source records normalizing to the same index key.
// Resolution is always "last_write_wins": the later record replaces the
// earlier one. This is a documented policy, not a merge: the shadowed record
// disappears from lookups, so collisions are surfaced for operators.
type KeyCollision struct {
	Space             string `json:"space"`
	Key               string `json:"key"`
	PreviousSource    string `json:"previousSource"`
	PreviousEmail     string `json:"previousEmail"`
	ReplacementSource string `json:"replacementSource"`
	ReplacementEmail  string `json:"replacementEmail"`
	Resolution        string `json:"resolution"` // always "last_write_wins"
}

func newKeyCollision(space, key string, prev, next *schema.IdentityRecord) KeyCollision {
	return KeyCollision{
		Space:             space,
		Key:               key,
		PreviousSource:    prev.Source,
		PreviousEmail:     prev.PrimaryEmail,
		ReplacementSource: next.Source,
		ReplacementEmail:  next.PrimaryEmail,
		Resolution:        "last_write_wins",
	}
}
