package report

import (
	"time"

	"go.uber.org/zap"

	"lir/pkg/engine"
	"lir/pkg/metrics"
	"lir/pkg/schema"
)

// UserRow is one dashboard row: a user's grouped licenses enriched with the
// identity resolved from the directory snapshot.
type UserRow struct {
	Email       string                     `json:"email"`
	DisplayName string                     `json:"displayName"`
	PhotoURL    string                     `json:"photoUrl"`
	Freelance   bool                       `json:"freelance"`
	Resolved    bool                       `json:"resolved"`
	MatchType   string                     `json:"matchType"`
	Products    []string                   `json:"products"`
	Licenses    []engine.ClassifiedLicense `json:"licenses"`
	MaxSeverity engine.Severity            `json:"maxSeverity"`
}

// DashboardReport is the compiled dashboard view over one license array and
// one identity snapshot.
type DashboardReport struct {
	Users           []UserRow         `json:"users"`
	TotalUsers      int               `json:"totalUsers"`
	TotalLicenses   int               `json:"totalLicenses"`
	ResolvedUsers   int               `json:"resolvedUsers"`
	UnresolvedUsers int               `json:"unresolvedUsers"`
	Status          StatusSummary     `json:"status"`
	Products        map[string]int    `json:"products"`
	IndexStats      engine.IndexStats `json:"indexStats"`
}

// Builder compiles dashboard reports. The identity and license pipelines stay
// independent: a nil index produces rows without identity metadata instead of
// failing the report.
type Builder struct {
	classifier *engine.Classifier
	grouper    *engine.Grouper
	resolver   *engine.Resolver
}

// NewBuilder creates a Builder. Nil arguments fall back to defaults/no-ops.
func NewBuilder(classifier *engine.Classifier, logger *zap.Logger, rec metrics.Recorder) *Builder {
	if classifier == nil {
		classifier = engine.NewClassifier(engine.ClassifierOptions{})
	}
	return &Builder{
		classifier: classifier,
		grouper:    engine.NewGrouper(logger, rec),
		resolver:   engine.NewResolver(rec),
	}
}

// BuildDashboard compiles a report under the default rules.
func BuildDashboard(index *engine.IdentityIndex, licenses []schema.LicenseRecord, now time.Time) *DashboardReport {
	return NewBuilder(nil, nil, nil).Build(index, licenses, now)
}

// Build groups the license array per user, resolves each user against the
// identity index, classifies every grant relative to now, and tallies the
// aggregate counts. Row order is first-seen-user order.
//
// When the identity snapshot failed (nil index) every row renders without
// photo or display metadata rather than the report failing.
func (b *Builder) Build(index *engine.IdentityIndex, licenses []schema.LicenseRecord, now time.Time) *DashboardReport {
	report := &DashboardReport{
		Users:    make([]UserRow, 0),
		Products: make(map[string]int),
	}
	if index != nil {
		report.IndexStats = index.Stats
	}

	for _, group := range b.grouper.Group(licenses) {
		row := UserRow{
			Email:     group.Email,
			MatchType: engine.MatchNone,
			Products:  group.Products,
			Licenses:  make([]engine.ClassifiedLicense, 0, len(group.Licenses)),
		}

		if identity := b.resolver.Resolve(group.Email, index); identity != nil {
			row.Resolved = true
			row.MatchType = matchTypeFor(group.Email, index)
			row.DisplayName = identity.DisplayName
			row.PhotoURL = identity.PhotoURL
			row.Freelance = identity.Freelance()
			report.ResolvedUsers++
		} else {
			report.UnresolvedUsers++
		}

		row.MaxSeverity = engine.SeverityNominal
		for _, lic := range group.Licenses {
			cl := b.classifier.Classify(lic, now)
			row.Licenses = append(row.Licenses, cl)
			tally(&report.Status, cl)
			report.Products[lic.Product]++
			report.TotalLicenses++
			if severityRank(cl.Severity) > severityRank(row.MaxSeverity) {
				row.MaxSeverity = cl.Severity
			}
		}

		report.Users = append(report.Users, row)
	}

	report.TotalUsers = len(report.Users)
	return report
}

// matchTypeFor re-derives which key space matched, for row diagnostics.
func matchTypeFor(email string, index *engine.IdentityIndex) string {
	fullKey, _ := schema.EmailKeys(email)
	if index.LookupFull(fullKey) != nil {
		return engine.MatchFullEmail
	}
	return engine.MatchLocalPart
}

func severityRank(s engine.Severity) int {
	switch s {
	case engine.SeveritySevere:
		return 2
	case engine.SeverityCautionary:
		return 1
	default:
		return 0
	}
}
