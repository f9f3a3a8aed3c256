// Package report computes the aggregate views the dashboard renders.
package report

import (
	"time"

	"lir/pkg/engine"
	"lir/pkg/schema"
)

// StatusSummary contains lifecycle tallies over a license set. Extended is
// independent of the other three: a grant can be both Active and extended.
type StatusSummary struct {
	Active   int `json:"active"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
	Extended int `json:"extended"`
}

// CountByProduct counts grants whose product equals product exactly.
func CountByProduct(licenses []schema.LicenseRecord, product string) int {
	count := 0
	for _, lic := range licenses {
		if lic.Product == product {
			count++
		}
	}
	return count
}

// ProductCounts tallies grants per product.
func ProductCounts(licenses []schema.LicenseRecord) map[string]int {
	counts := make(map[string]int)
	for _, lic := range licenses {
		if lic.Product != "" {
			counts[lic.Product]++
		}
	}
	return counts
}

// CountUniqueUsers counts distinct email values, not records.
func CountUniqueUsers(licenses []schema.LicenseRecord) int {
	seen := make(map[string]bool, len(licenses))
	for _, lic := range licenses {
		if lic.Email != "" {
			seen[lic.Email] = true
		}
	}
	return len(seen)
}

// CountByStatus classifies every grant under the default timing rules and
// tallies the results. Cheap to recompute on every poll tick.
func CountByStatus(licenses []schema.LicenseRecord, now time.Time) StatusSummary {
	return CountByStatusWith(nil, licenses, now)
}

// CountByStatusWith classifies with a specific classifier (nil means default).
func CountByStatusWith(c *engine.Classifier, licenses []schema.LicenseRecord, now time.Time) StatusSummary {
	var summary StatusSummary
	for _, lic := range licenses {
		var cl engine.ClassifiedLicense
		if c != nil {
			cl = c.Classify(lic, now)
		} else {
			cl = engine.Classify(lic, now)
		}
		tally(&summary, cl)
	}
	return summary
}

func tally(summary *StatusSummary, cl engine.ClassifiedLicense) {
	switch cl.Status {
	case engine.StatusActive:
		summary.Active++
	case engine.StatusExpiring:
		summary.Expiring++
	case engine.StatusExpired:
		summary.Expired++
	}
	if cl.IsExtended {
		summary.Extended++
	}
}
