package report

import (
	"testing"
	"time"

	"lir/pkg/schema"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return ts
}

func grant(email, product, issued, expires string) schema.LicenseRecord {
	return schema.LicenseRecord{Email: email, Product: product, IssuedAt: issued, ExpiresAt: expires}
}

func TestCountByProduct(t *testing.T) {
	licenses := []schema.LicenseRecord{
		grant("a@x.com", "figma", "", ""),
		grant("b@x.com", "figma", "", ""),
		grant("c@x.com", "figjam", "", ""),
		grant("d@x.com", "figmafigjam", "", ""),
	}

	if got := CountByProduct(licenses, "figma"); got != 2 {
		t.Errorf("CountByProduct(figma) = %d, want 2", got)
	}
	// Exact string equality: "figma" must not match "figmafigjam".
	if got := CountByProduct(licenses, "figmafigjam"); got != 1 {
		t.Errorf("CountByProduct(figmafigjam) = %d, want 1", got)
	}
	if got := CountByProduct(licenses, "mso365"); got != 0 {
		t.Errorf("CountByProduct(mso365) = %d, want 0", got)
	}
}

func TestProductCounts(t *testing.T) {
	counts := ProductCounts([]schema.LicenseRecord{
		grant("a@x.com", "figma", "", ""),
		grant("b@x.com", "figma", "", ""),
		grant("c@x.com", "adobe", "", ""),
	})
	if counts["figma"] != 2 || counts["adobe"] != 1 {
		t.Errorf("ProductCounts = %v", counts)
	}
}

func TestCountUniqueUsers(t *testing.T) {
	licenses := []schema.LicenseRecord{
		grant("a@x.com", "figma", "", ""),
		grant("a@x.com", "figjam", "", ""),
		grant("a@x.com", "adobe", "", ""),
		grant("b@x.com", "figma", "", ""),
	}
	// Distinct emails, not record count.
	if got := CountUniqueUsers(licenses); got != 2 {
		t.Errorf("CountUniqueUsers = %d, want 2", got)
	}
}

func TestCountByStatus(t *testing.T) {
	now := mustTime(t, "2024-06-01T12:00:00Z")
	licenses := []schema.LicenseRecord{
		// Active, and extended (span far over the 4-day default threshold).
		grant("a@x.com", "figma", "2024-05-01T00:00:00Z", "2024-06-10T00:00:00Z"),
		// Expiring (90 minutes out), not extended.
		grant("b@x.com", "figma", "2024-06-01T10:00:00Z", "2024-06-01T13:30:00Z"),
		// Expired.
		grant("c@x.com", "figma", "2024-05-01T00:00:00Z", "2024-05-02T00:00:00Z"),
		// Unparseable expiry counts as expired.
		grant("d@x.com", "figma", "2024-05-01T00:00:00Z", "whenever"),
	}

	got := CountByStatus(licenses, now)
	want := StatusSummary{Active: 1, Expiring: 1, Expired: 2, Extended: 1}
	if got != want {
		t.Errorf("CountByStatus = %+v, want %+v", got, want)
	}
}
