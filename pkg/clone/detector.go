package clone

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/battleready/core/pkg/domain"
)

// MaxWorkers caps the number of concurrent pairwise comparison workers.
const MaxWorkers = 256

// Thresholds are the tiered similarity cutoffs for clustering. All are
// runtime-adjustable via WithThresholds.
type Thresholds struct {
	ExactDuplicate float64
	NearDuplicate  float64
	SimilarPattern float64
}

// DefaultThresholds returns the standard clustering tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExactDuplicate: 0.98,
		NearDuplicate:  0.85,
		SimilarPattern: 0.70,
	}
}

// Detector clusters structurally or behaviorally similar tests.
type Detector struct {
	weights    Weights
	thresholds Thresholds
	workers    int
}

// Option configures a Detector.
type Option func(*Detector)

// WithWeights sets the similarity component weights.
func WithWeights(w Weights) Option {
	return func(d *Detector) { d.weights = w }
}

// WithThresholds sets the clustering tier thresholds.
func WithThresholds(t Thresholds) Option {
	return func(d *Detector) { d.thresholds = t }
}

// WithWorkers sets the number of concurrent comparison workers.
// Non-positive values use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Detector) { d.workers = n }
}

// NewDetector returns a duplicate detector with default weights and
// thresholds unless overridden.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		weights:    DefaultWeights(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectClusters computes all pairwise similarities and groups tests above
// the tiered thresholds into duplicate clusters. Grouping is transitive
// within a tier; every cluster has at least two members. On cancellation the
// partial clustering is discarded and the context error returned.
func (d *Detector) DetectClusters(ctx context.Context, tests []TestRecord) ([]domain.DuplicateCluster, error) {
	if len(tests) < 2 {
		return nil, nil
	}

	// Stable iteration order: representatives and cluster membership must
	// not depend on input ordering.
	ordered := append([]TestRecord(nil), tests...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Key.Less(ordered[j].Key)
	})

	sims, err := d.pairwise(ctx, ordered)
	if err != nil {
		return nil, err
	}

	tiers := []struct {
		clusterType domain.ClusterType
		threshold   float64
	}{
		{domain.ClusterExactDuplicates, d.thresholds.ExactDuplicate},
		{domain.ClusterNearDuplicates, d.thresholds.NearDuplicate},
		{domain.ClusterSimilarPatterns, d.thresholds.SimilarPattern},
	}

	n := len(ordered)
	assigned := make([]bool, n)
	var clusters []domain.DuplicateCluster

	for _, tier := range tiers {
		uf := newUnionFind(n)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if assigned[i] || assigned[j] {
					continue
				}
				if sims[i][j].Overall >= tier.threshold {
					uf.union(i, j)
				}
			}
		}

		for _, group := range uf.groups() {
			for _, idx := range group {
				assigned[idx] = true
			}
			clusters = append(clusters, d.buildCluster(tier.clusterType, group, ordered, sims))
		}
	}

	return clusters, nil
}

// Similarities computes the pairwise similarity list for a test set, in
// stable key order. Exposed for callers that want the raw signal.
func (d *Detector) Similarities(ctx context.Context, tests []TestRecord) ([]domain.TestSimilarity, error) {
	ordered := append([]TestRecord(nil), tests...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Key.Less(ordered[j].Key)
	})

	sims, err := d.pairwise(ctx, ordered)
	if err != nil {
		return nil, err
	}

	var out []domain.TestSimilarity
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			out = append(out, sims[i][j])
		}
	}
	return out, nil
}

// pairwise computes the upper-triangular similarity matrix. Each pair is
// independent and read-only over the records, so rows are computed in
// parallel without locking.
func (d *Detector) pairwise(ctx context.Context, tests []TestRecord) ([][]domain.TestSimilarity, error) {
	n := len(tests)
	sims := make([][]domain.TestSimilarity, n)
	for i := range sims {
		sims[i] = make([]domain.TestSimilarity, n)
	}

	workers := d.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			for j := i + 1; j < n; j++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				sims[i][j] = Compare(tests[i], tests[j], d.weights)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Partial similarity data must not surface as final clusters.
		return nil, err
	}

	return sims, nil
}

func (d *Detector) buildCluster(clusterType domain.ClusterType, group []int, tests []TestRecord, sims [][]domain.TestSimilarity) domain.DuplicateCluster {
	if len(group) < 2 {
		panic(fmt.Sprintf("clone: cluster with %d members", len(group)))
	}

	keys := make([]domain.TestKey, len(group))
	for i, idx := range group {
		keys[i] = tests[idx].Key
	}

	var simSum float64
	pairs := 0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			simSum += sims[group[i]][group[j]].Overall
			pairs++
		}
	}

	cluster := domain.DuplicateCluster{
		ID:             uuid.NewString(),
		Tests:          keys,
		Similarity:     simSum / float64(pairs),
		Type:           clusterType,
		Representative: keys[0],
	}

	if clusterType == domain.ClusterExactDuplicates || clusterType == domain.ClusterNearDuplicates {
		cluster.Suggestion = fmt.Sprintf(
			"Consolidate %d similar tests into a single parametrized test (pytest.mark.parametrize), keeping %s as the base",
			len(keys), cluster.Representative,
		)
	}

	return cluster
}
