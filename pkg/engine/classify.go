package engine

import (
	"math"
	"strconv"
	"time"

	"lir/pkg/schema"
)

// LicenseStatus labels a grant's lifecycle state relative to "now".
type LicenseStatus string

const (
	StatusExpired  LicenseStatus = "EXPIRED"
	StatusExpiring LicenseStatus = "EXPIRING"
	StatusActive   LicenseStatus = "ACTIVE"
)

// Severity is the display tier callers map to colors. It encodes the same
// windows as the status rule.
type Severity string

const (
	SeveritySevere     Severity = "SEVERE"
	SeverityCautionary Severity = "CAUTIONARY"
	SeverityNominal    Severity = "NOMINAL"
)

// Timing constants, in milliseconds.
const (
	hourMs int64 = 3_600_000
	dayMs  int64 = 24 * hourMs
)

// DefaultBaselines holds the per-product extension baselines. A grant whose
// issued-to-expiry duration exceeds baseline + buffer was manually prolonged.
var DefaultBaselines = map[string]time.Duration{
	"mso365":   7 * 24 * time.Hour,
	"aquarium": 6 * 24 * time.Hour,
}

// DefaultBaseline applies to every product without an explicit baseline
// (adobe, acrobat, substance, figma, figjam, figmafigjam, ...).
const DefaultBaseline = 4 * 24 * time.Hour

// ExtensionBuffer is the fixed 60-minute slack on top of every baseline.
const ExtensionBuffer = time.Hour

// ClassifiedLicense is the lifecycle view of one grant, computed at read time
// relative to a caller-supplied clock.
type ClassifiedLicense struct {
	License        schema.LicenseRecord `json:"license"`
	TimeToExpireMs int64                `json:"timeToExpireMs"`
	Status         LicenseStatus        `json:"status"`
	IsExtended     bool                 `json:"isExtended"`
	DurationDays   float64              `json:"durationDays"`
	Severity       Severity             `json:"severity"`
}

// ClassifierOptions overrides the default timing rules. Zero values keep the
// defaults; operators set them through pkg/config.
type ClassifierOptions struct {
	Baselines       map[string]time.Duration
	DefaultBaseline time.Duration
	ExtensionBuffer time.Duration
	ExpiringWindow  time.Duration
	SevereWindow    time.Duration
}

// Classifier computes lifecycle state, remaining time, and the extension flag
// for license grants. It is stateless and safe for concurrent use.
type Classifier struct {
	baselinesMs       map[string]int64
	defaultBaselineMs int64
	bufferMs          int64
	expiringWindowMs  int64
	severeWindowMs    int64
}

// NewClassifier creates a Classifier with the given overrides.
func NewClassifier(opts ClassifierOptions) *Classifier {
	c := &Classifier{
		baselinesMs:       make(map[string]int64, len(DefaultBaselines)),
		defaultBaselineMs: DefaultBaseline.Milliseconds(),
		bufferMs:          ExtensionBuffer.Milliseconds(),
		expiringWindowMs:  2 * hourMs,
		severeWindowMs:    hourMs / 2,
	}
	for product, d := range DefaultBaselines {
		c.baselinesMs[product] = d.Milliseconds()
	}
	for product, d := range opts.Baselines {
		c.baselinesMs[product] = d.Milliseconds()
	}
	if opts.DefaultBaseline > 0 {
		c.defaultBaselineMs = opts.DefaultBaseline.Milliseconds()
	}
	if opts.ExtensionBuffer > 0 {
		c.bufferMs = opts.ExtensionBuffer.Milliseconds()
	}
	if opts.ExpiringWindow > 0 {
		c.expiringWindowMs = opts.ExpiringWindow.Milliseconds()
	}
	if opts.SevereWindow > 0 {
		c.severeWindowMs = opts.SevereWindow.Milliseconds()
	}
	return c
}

var defaultClassifier = NewClassifier(ClassifierOptions{})

// Classify computes the lifecycle view of a grant under the default rules.
func Classify(lic schema.LicenseRecord, now time.Time) ClassifiedLicense {
	return defaultClassifier.Classify(lic, now)
}

// Threshold returns the extension threshold for a product: its baseline
// (or the default) plus the fixed buffer.
func (c *Classifier) Threshold(product string) time.Duration {
	baseline, ok := c.baselinesMs[product]
	if !ok {
		baseline = c.defaultBaselineMs
	}
	return time.Duration(baseline+c.bufferMs) * time.Millisecond
}

// Classify computes remaining time, status, severity, duration, and the
// extension flag for one grant. Classification is idempotent: the same grant
// and clock always produce the same result, so it is safe to recompute on
// every poll tick.
//
// An unparseable expiry classifies as Expired with no extension: bad
// upstream data must never take the dashboard down.
func (c *Classifier) Classify(lic schema.LicenseRecord, now time.Time) ClassifiedLicense {
	out := ClassifiedLicense{License: lic}

	expires, ok := ParseTimestamp(lic.ExpiresAt)
	if !ok {
		out.Status = StatusExpired
		out.Severity = SeveritySevere
		return out
	}

	out.TimeToExpireMs = expires.UnixMilli() - now.UnixMilli()

	// The boundary at exactly 0 is Expiring, not Expired.
	switch {
	case out.TimeToExpireMs < 0:
		out.Status = StatusExpired
	case out.TimeToExpireMs < c.expiringWindowMs:
		out.Status = StatusExpiring
	default:
		out.Status = StatusActive
	}

	switch {
	case out.TimeToExpireMs < c.severeWindowMs:
		out.Severity = SeveritySevere
	case out.TimeToExpireMs < c.expiringWindowMs:
		out.Severity = SeverityCautionary
	default:
		out.Severity = SeverityNominal
	}

	if issued, ok := ParseTimestamp(lic.IssuedAt); ok {
		durationMs := expires.UnixMilli() - issued.UnixMilli()
		out.DurationDays = math.Round(float64(durationMs)/float64(dayMs)*100) / 100
		out.IsExtended = durationMs > c.Threshold(lic.Product).Milliseconds()
	}

	return out
}

// timestampFormats are tried in order when parsing ledger timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseTimestamp parses a ledger timestamp, trying the known layouts and then
// epoch milliseconds/seconds. Returns false when nothing fits.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		// 13+ digits is milliseconds; shorter is seconds.
		if epoch >= 1_000_000_000_000 || epoch <= -1_000_000_000_000 {
			return time.UnixMilli(epoch).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	}
	return time.Time{}, false
}
