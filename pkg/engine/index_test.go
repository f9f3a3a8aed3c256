package engine

import (
	"testing"

	"lir/pkg/schema"
)

func identity(email, username, source string) *schema.IdentityRecord {
	return &schema.IdentityRecord{
		PrimaryEmail: email,
		Username:     username,
		Source:       source,
	}
}

func TestBuildIdentityIndexKeysAreCaseInsensitive(t *testing.T) {
	index := BuildIdentityIndex([]*schema.IdentityRecord{
		identity("JDoe@Example.com", "", "staff"),
	})

	for _, key := range []string{"jdoe@example.com", "JDOE@EXAMPLE.COM", "JDoe@Example.com"} {
		if index.Lookup(key) == nil {
			t.Errorf("Lookup(%q) = nil, want record", key)
		}
	}
	if index.LookupLocal("jdoe") == nil {
		t.Error("LookupLocal(jdoe) = nil, want record")
	}
	if index.LookupLocal("JDOE") == nil {
		t.Error("LookupLocal(JDOE) = nil, want record")
	}
}

func TestBuildIdentityIndexDropsUnkeyedRecords(t *testing.T) {
	index := BuildIdentityIndex([]*schema.IdentityRecord{
		identity("a@x.com", "", "staff"),
		{DisplayName: "No Keys", Source: "staff"},
		identity("", "bname", "freelance"),
	})

	if index.Stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", index.Stats.TotalRecords)
	}
	if index.Stats.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", index.Stats.Indexed)
	}
	if index.Stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", index.Stats.Dropped)
	}
	// A username-only record is keyed under both spaces by its bare value.
	if index.LookupFull("bname") == nil {
		t.Error("LookupFull(bname) = nil, want username-only record")
	}
}

func TestBuildIdentityIndexLastWriteWins(t *testing.T) {
	first := identity("dup@x.com", "", "staff")
	second := identity("dup@x.com", "", "freelance")
	index := BuildIdentityIndex([]*schema.IdentityRecord{first, second})

	got := index.Lookup("dup@x.com")
	if got != second {
		t.Fatalf("Lookup returned record from %q, want later record from %q", got.Source, "freelance")
	}
	// Both key spaces collided: full and local.
	if index.Stats.Collisions != 2 {
		t.Errorf("Collisions = %d, want 2", index.Stats.Collisions)
	}
	if len(index.Collisions) != 2 {
		t.Fatalf("len(Collisions) = %d, want 2", len(index.Collisions))
	}
	c := index.Collisions[0]
	if c.PreviousSource != "staff" || c.ReplacementSource != "freelance" {
		t.Errorf("collision sources = (%q, %q)", c.PreviousSource, c.ReplacementSource)
	}
	if c.Resolution != "last_write_wins" {
		t.Errorf("Resolution = %q", c.Resolution)
	}
}

func TestBuildIdentityIndexLocalPartShadowingAcrossDomains(t *testing.T) {
	corp := identity("jdoe@corp.example", "", "staff")
	vendor := identity("jdoe@vendor.example", "", "adobe")
	index := BuildIdentityIndex([]*schema.IdentityRecord{corp, vendor})

	// Full keys stay distinct; the shared local part is shadowed.
	if index.Lookup("jdoe@corp.example") != corp {
		t.Error("full-key lookup for corp record failed")
	}
	if index.Lookup("jdoe@vendor.example") != vendor {
		t.Error("full-key lookup for vendor record failed")
	}
	if index.LookupLocal("jdoe") != vendor {
		t.Error("local-key lookup should return the later record")
	}
	if index.Stats.Collisions != 1 {
		t.Errorf("Collisions = %d, want 1", index.Stats.Collisions)
	}
	if len(index.Collisions) == 1 && index.Collisions[0].Space != SpaceLocal {
		t.Errorf("collision space = %q, want %q", index.Collisions[0].Space, SpaceLocal)
	}
}

func TestBuildIdentityIndexCountsFreelancers(t *testing.T) {
	index := BuildIdentityIndex([]*schema.IdentityRecord{
		{PrimaryEmail: "a@x.com", CostCenter: "FREELANCE"},
		{PrimaryEmail: "b@x.com", CostCenter: "R&D"},
		{PrimaryEmail: "c@x.com", CostCenter: "freelance"},
	})
	if index.Stats.Freelancers != 2 {
		t.Errorf("Freelancers = %d, want 2", index.Stats.Freelancers)
	}
}

func TestLookupOnNilIndex(t *testing.T) {
	var index *IdentityIndex
	if index.Lookup("a@x.com") != nil {
		t.Error("Lookup on nil index should return nil")
	}
}
