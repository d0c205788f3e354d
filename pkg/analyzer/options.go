package analyzer

import (
	"github.com/hashicorp/go-hclog"

	"github.com/battleready/core/pkg/clone"
	"github.com/battleready/core/pkg/coverage"
	"github.com/battleready/core/pkg/rules"
	"github.com/battleready/core/pkg/scoring"
)

// Options configures an Analyzer.
type Options struct {
	// Workers is the number of concurrent per-file analyses.
	// Zero or negative values use runtime.GOMAXPROCS(0).
	Workers int

	// Detectors is the rule detector set to run per file.
	// Nil selects rules.DefaultDetectors().
	Detectors []rules.Detector

	// Registry resolves rule codes for BIS scoring.
	// Nil selects scoring.DefaultRegistry().
	Registry *scoring.Registry

	// Logger receives detector failure events. Nil discards them.
	Logger hclog.Logger

	// SignatureStore caches coverage signatures across files and runs.
	// Nil selects a fresh in-memory store.
	SignatureStore coverage.SignatureStore

	// CloneDetector clusters duplicate tests. Nil selects defaults.
	CloneDetector *clone.Detector

	// Patterns restricts suite analysis to files matching any of these
	// glob patterns. Empty means all provided files are analyzed.
	Patterns []string
}

// Option is a functional option for configuring an Analyzer.
type Option func(*Options)

// WithWorkers sets the number of concurrent per-file analyses.
// Negative values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Workers = n
		}
	}
}

// WithDetectors replaces the default rule detector set.
func WithDetectors(detectors []rules.Detector) Option {
	return func(o *Options) {
		o.Detectors = detectors
	}
}

// WithRegistry sets the rule registry used for BIS scoring.
func WithRegistry(registry *scoring.Registry) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

// WithLogger sets the logger for detector failure events.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithSignatureStore sets the coverage signature cache.
func WithSignatureStore(store coverage.SignatureStore) Option {
	return func(o *Options) {
		o.SignatureStore = store
	}
}

// WithCloneDetector sets the duplicate detector.
func WithCloneDetector(detector *clone.Detector) Option {
	return func(o *Options) {
		o.CloneDetector = detector
	}
}

// WithPatterns sets glob patterns to filter suite input files.
func WithPatterns(patterns []string) Option {
	return func(o *Options) {
		o.Patterns = patterns
	}
}

func applyDefaults(o *Options) {
	if o.Detectors == nil {
		o.Detectors = rules.DefaultDetectors()
	}
	if o.Registry == nil {
		o.Registry = scoring.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = hclog.NewNullLogger()
	}
	if o.SignatureStore == nil {
		o.SignatureStore = coverage.NewStore()
	}
	if o.CloneDetector == nil {
		o.CloneDetector = clone.NewDetector()
	}
}
