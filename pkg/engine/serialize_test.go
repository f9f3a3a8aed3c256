package engine

import (
	"testing"

	"lir/pkg/schema"
)

func TestSerializeRoundTrip(t *testing.T) {
	original := BuildIdentityIndex([]*schema.IdentityRecord{
		identity("jdoe@corp.example", "", "staff"),
		identity("maria.lopez@corp.example", "", "staff"),
		identity("jdoe@vendor.example", "", "adobe"), // shadows local key "jdoe"
	})
	if original.Stats.Collisions != 1 {
		t.Fatalf("setup: Collisions = %d, want 1", original.Stats.Collisions)
	}

	restored, err := DeserializeIndex([]byte(SerializeIndex(original)))
	if err != nil {
		t.Fatalf("DeserializeIndex returned error: %v", err)
	}

	for _, key := range []string{"jdoe@corp.example", "maria.lopez@corp.example", "jdoe@vendor.example"} {
		if restored.Lookup(key) == nil {
			t.Errorf("restored Lookup(%q) = nil", key)
		}
	}
	if restored.Stats != original.Stats {
		t.Errorf("restored stats = %+v, want %+v", restored.Stats, original.Stats)
	}
	// Collisions are preserved from build time: the record list holds only
	// winners, so a plain rebuild could not reproduce them.
	if len(restored.Collisions) != 1 {
		t.Errorf("restored collisions = %d, want 1", len(restored.Collisions))
	}
}

func TestDeserializeIndexRejectsGarbage(t *testing.T) {
	if _, err := DeserializeIndex([]byte("{not json")); err == nil {
		t.Error("DeserializeIndex returned nil error for invalid JSON")
	}
}
