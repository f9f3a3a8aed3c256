package engine

import (
	"go.uber.org/zap"

	"lir/pkg/metrics"
	"lir/pkg/schema"
)

// Grouper partitions license grants into per-user groups.
type Grouper struct {
	logger *zap.Logger
	rec    metrics.Recorder
}

// NewGrouper creates a Grouper. A nil logger or recorder is replaced with a no-op.
func NewGrouper(logger *zap.Logger, rec metrics.Recorder) *Grouper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Grouper{logger: logger, rec: rec}
}

// GroupByUser partitions grants per user without diagnostics wiring.
func GroupByUser(licenses []schema.LicenseRecord) []*schema.UserLicenseGroup {
	return NewGrouper(nil, nil).Group(licenses)
}

// Group partitions grants into groups keyed by email (case-sensitive, as
// stored). Grants are appended in input order; a product enters Products only
// the first time it is seen for that user. Group order is first-seen-user
// order. Grants missing email, product, or expiry are skipped, never fatal.
func (g *Grouper) Group(licenses []schema.LicenseRecord) []*schema.UserLicenseGroup {
	groups := make([]*schema.UserLicenseGroup, 0)
	byEmail := make(map[string]*schema.UserLicenseGroup)

	for _, lic := range licenses {
		if reason, ok := validateGrant(lic); !ok {
			g.rec.RecordInvalidLicense(reason)
			g.logger.Debug("license grant skipped",
				zap.String("reason", reason),
				zap.String("email", lic.Email),
				zap.String("product", lic.Product),
			)
			continue
		}

		group, exists := byEmail[lic.Email]
		if !exists {
			group = &schema.UserLicenseGroup{Email: lic.Email}
			byEmail[lic.Email] = group
			groups = append(groups, group)
		}

		if !containsProduct(group.Products, lic.Product) {
			group.Products = append(group.Products, lic.Product)
		}
		group.Licenses = append(group.Licenses, lic)
	}

	return groups
}

// validateGrant reports the first missing required field.
func validateGrant(lic schema.LicenseRecord) (string, bool) {
	switch {
	case lic.Email == "":
		return "missing_email", false
	case lic.Product == "":
		return "missing_product", false
	case lic.ExpiresAt == "":
		return "missing_expiry", false
	}
	return "", true
}

func containsProduct(products []string, product string) bool {
	for _, p := range products {
		if p == product {
			return true
		}
	}
	return false
}
