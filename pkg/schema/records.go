package schema

import "strings"

// IdentityRecord represents one human as reported by a single directory source
// (workspace directory, LDAP export, license-vendor member list, ...).
type IdentityRecord struct {
	PrimaryEmail   string `json:"primaryEmail"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	NormalizedName string `json:"normalizedName"`
	PhotoURL       string `json:"photoUrl"`
	Department     string `json:"department"`
	CostCenter     string `json:"costCenter"`
	Title          string `json:"title"`
	Source         string `json:"source"`
}

// Indexable reports whether the record carries at least one join key.
// Records that are not indexable are dropped during index construction.
func (r *IdentityRecord) Indexable() bool {
	return r != nil && (r.PrimaryEmail != "" || r.Username != "")
}

// Freelance reports whether the record's cost center marks the person as a
// freelancer. The comparison is case-insensitive.
func (r *IdentityRecord) Freelance() bool {
	return r != nil && strings.EqualFold(r.CostCenter, "freelance")
}

// LicenseRecord represents one grant of one product to one user, as delivered
// by the self-service license ledger. Timestamps are carried as the raw strings
// the ledger emits; parsing happens at classification time.
type LicenseRecord struct {
	Email     string `json:"email"`
	Product   string `json:"product"`
	IssuedAt  string `json:"timestamp"`
	ExpiresAt string `json:"expiry"`
}

// Valid reports whether the grant carries every field required for grouping
// and classification. Invalid grants are skipped, never fatal.
func (l LicenseRecord) Valid() bool {
	return l.Email != "" && l.Product != "" && l.ExpiresAt != ""
}

// Key returns the identity tuple of the grant, used for dedup and keying.
func (l LicenseRecord) Key() string {
	return l.Email + "|" + l.Product + "|" + l.IssuedAt
}

// UserLicenseGroup collects all grants held by a single user.
// Products is an ordered set in first-seen order; Licenses preserves input order.
type UserLicenseGroup struct {
	Email    string          `json:"email"`
	Products []string        `json:"products"`
	Licenses []LicenseRecord `json:"licenses"`
}
