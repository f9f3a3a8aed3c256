// Package snapshot loads settled data snapshots from the external fetch layer.
//
// The core join logic must only run once every contributing identity fetch has
// settled, so the loader performs the barrier wait here: all identity sources
// are fetched concurrently and a single failure fails the composite identity
// result (no partial-result merging). License loading is independent and can
// proceed regardless of the identity sources.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lir/pkg/engine"
	"lir/pkg/metrics"
	"lir/pkg/parser"
	"lir/pkg/schema"
)

// SourceFunc fetches one raw JSON payload from an external collaborator.
// Transport, authentication, and retry policy all live behind it.
type SourceFunc func(ctx context.Context) ([]byte, error)

type identitySource struct {
	name  string
	fetch SourceFunc
}

// Snapshot is one settled view of the external sources. Index is nil when the
// composite identity fetch failed; license data is unaffected by that failure.
type Snapshot struct {
	ID          string
	TakenAt     time.Time
	Index       *engine.IdentityIndex
	Identities  []*schema.IdentityRecord
	Licenses    []schema.LicenseRecord
	IdentityErr error
}

// Loader fans out to the registered sources and builds one snapshot per call.
type Loader struct {
	identitySources []identitySource
	licenseSource   SourceFunc
	timeout         time.Duration
	logger          *zap.Logger
	rec             metrics.Recorder
	indexer         *engine.Indexer
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout bounds each composite load. Zero means no loader-side bound.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(l *Loader) { l.rec = rec }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger: zap.NewNop(),
		rec:    metrics.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.rec == nil {
		l.rec = metrics.Nop{}
	}
	l.indexer = engine.NewIndexer(l.logger, l.rec)
	return l
}

// RegisterIdentitySource adds an identity source ("staff" directory,
// "freelance" directory, vendor member list, ...). Registration order defines
// collision precedence: records from later-registered sources win under the
// index's last-write-wins policy.
func (l *Loader) RegisterIdentitySource(name string, fetch SourceFunc) {
	l.identitySources = append(l.identitySources, identitySource{name: name, fetch: fetch})
}

// SetLicenseSource sets the license ledger source.
func (l *Loader) SetLicenseSource(fetch SourceFunc) {
	l.licenseSource = fetch
}

// Load fetches every registered source and returns one settled snapshot.
// A license fetch failure fails the load; an identity failure is recorded on
// the snapshot and leaves Index nil so the dashboard renders without identity
// metadata.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{
		ID:      uuid.NewString(),
		TakenAt: start,
	}
	log := l.logger.With(zap.String("snapshot_id", snap.ID))

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	licenses, err := l.LoadLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("license source: %w", err)
	}
	snap.Licenses = licenses

	index, identities, err := l.LoadIdentityIndex(ctx)
	if err != nil {
		// Fail-fast aggregation: one failing directory blanks identity
		// metadata for the whole snapshot rather than merging partial data.
		snap.IdentityErr = err
		log.Warn("identity snapshot failed, continuing without identity metadata", zap.Error(err))
	} else {
		snap.Index = index
		snap.Identities = identities
	}

	l.rec.RecordSnapshotLatency(time.Since(start))
	log.Info("snapshot loaded",
		zap.Int("licenses", len(snap.Licenses)),
		zap.Int("identities", len(snap.Identities)),
		zap.Bool("identity_ok", snap.IdentityErr == nil),
	)
	return snap, nil
}

// LoadIdentityIndex fetches all identity sources concurrently, waits for all
// of them to settle, and builds the index over the combined records. The first
// source error cancels the remaining fetches and fails the composite result.
func (l *Loader) LoadIdentityIndex(ctx context.Context) (*engine.IdentityIndex, []*schema.IdentityRecord, error) {
	if len(l.identitySources) == 0 {
		return nil, nil, fmt.Errorf("no identity sources registered")
	}

	g, ctx := errgroup.WithContext(ctx)
	perSource := make([][]*schema.IdentityRecord, len(l.identitySources))

	for i, src := range l.identitySources {
		i, src := i, src
		g.Go(func() error {
			records, err := l.fetchIdentitySource(ctx, src)
			if err != nil {
				l.rec.RecordSnapshotFailure(src.name)
				return fmt.Errorf("source %q: %w", src.name, err)
			}
			perSource[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Concatenate in registration order so last-write-wins precedence is
	// deterministic across loads.
	var combined []*schema.IdentityRecord
	for _, records := range perSource {
		combined = append(combined, records...)
	}

	return l.indexer.Build(combined), combined, nil
}

// LoadLicenses fetches and decodes the license ledger.
func (l *Loader) LoadLicenses(ctx context.Context) ([]schema.LicenseRecord, error) {
	if l.licenseSource == nil {
		return nil, fmt.Errorf("no license source set")
	}
	payload, err := l.licenseSource(ctx)
	if err != nil {
		l.rec.RecordSnapshotFailure("licenses")
		return nil, err
	}
	result, err := parser.ParseWithWarnings(payload)
	if err != nil {
		l.rec.RecordSnapshotFailure("licenses")
		return nil, err
	}
	l.logWarnings("licenses", result.Warnings)
	return schema.NormalizeLicenses(result.Records), nil
}

func (l *Loader) fetchIdentitySource(ctx context.Context, src identitySource) ([]*schema.IdentityRecord, error) {
	payload, err := src.fetch(ctx)
	if err != nil {
		return nil, err
	}
	result, err := parser.ParseWithWarnings(payload)
	if err != nil {
		return nil, err
	}
	l.logWarnings(src.name, result.Warnings)
	return schema.NormalizeIdentities(result.Records, src.name), nil
}

func (l *Loader) logWarnings(source string, warnings []parser.ParseWarning) {
	for _, w := range warnings {
		l.logger.Debug("payload element skipped",
			zap.String("source", source),
			zap.Int("index", w.Index),
			zap.String("message", w.Message),
		)
	}
}
