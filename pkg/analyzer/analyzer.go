package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/battleready/core/pkg/analyzer/pyast"
	"github.com/battleready/core/pkg/clone"
	"github.com/battleready/core/pkg/coverage"
	"github.com/battleready/core/pkg/domain"
	"github.com/battleready/core/pkg/rules"
	"github.com/battleready/core/pkg/scoring"
)

// MaxWorkers caps the number of concurrent per-file analyses.
const MaxWorkers = 1024

// FileInput is one test file to analyze.
type FileInput struct {
	// Path is the file path, used in findings and test keys.
	Path string
	// Source is the raw file content.
	Source []byte
}

// AnalyzeError is a non-fatal error from a specific phase of suite analysis.
type AnalyzeError struct {
	// Err is the underlying error.
	Err error
	// Path is the file where the error occurred, when applicable.
	Path string
	// Phase is "filter", "analysis", or "clustering".
	Phase string
}

// Error implements the error interface.
func (e AnalyzeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Phase, e.Path, e.Err)
}

// FileReport is the analysis result for one file.
type FileReport struct {
	// Path is the analyzed file.
	Path string `json:"path"`
	// Findings lists all rule findings in the file, ordered by line.
	Findings []domain.Finding `json:"findings,omitempty"`
	// Tests lists the extracted per-test features.
	Tests []domain.TestFeatures `json:"tests,omitempty"`
}

// SuiteReport is the complete analysis result for a test suite.
type SuiteReport struct {
	// Files contains per-file reports, sorted by path.
	Files []FileReport `json:"files"`
	// Errors lists non-fatal errors encountered during the run.
	Errors []AnalyzeError `json:"-"`
	// Metrics are the suite-wide counters.
	Metrics domain.RunMetrics `json:"metrics"`
	// Scores maps "file:test" keys to per-test BIS results.
	Scores map[string]scoring.BISResult `json:"scores"`
	// Clusters lists detected duplicate-test clusters.
	Clusters []domain.DuplicateCluster `json:"clusters,omitempty"`
	// BRS is the suite-level readiness score.
	BRS scoring.BRSResult `json:"brs"`
}

// Analyzer runs rule detectors, scoring, and duplicate detection over test
// files. It is safe for concurrent use: all configuration is read-only after
// construction.
type Analyzer struct {
	options Options
	bis     *scoring.Calculator
}

// New creates an analyzer with the given options.
func New(opts ...Option) *Analyzer {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	applyDefaults(&options)

	return &Analyzer{
		options: options,
		bis:     scoring.NewCalculator(options.Registry),
	}
}

// AnalyzeFile runs every detector over one file and extracts per-test
// features. Analysis is fail-open: a parse failure yields a report with a
// single error-severity finding, and a failing detector contributes no
// findings while the others proceed.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, source []byte) FileReport {
	report := FileReport{Path: path}

	tree, err := ParsePython(ctx, source)
	if err != nil {
		report.Findings = []domain.Finding{rules.NewParseFailureFinding(path, err)}
		return report
	}
	defer tree.Close()

	root := tree.RootNode()

	for _, detector := range a.options.Detectors {
		report.Findings = append(report.Findings, a.runDetector(detector, root, source, path)...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		if report.Findings[i].Line != report.Findings[j].Line {
			return report.Findings[i].Line < report.Findings[j].Line
		}
		return report.Findings[i].Code < report.Findings[j].Code
	})

	report.Tests = a.extractFeatures(root, source, path)
	return report
}

// runDetector isolates one detector call: an error or panic is logged and
// treated as "no findings from this detector for this file".
func (a *Analyzer) runDetector(detector rules.Detector, root *sitter.Node, source []byte, path string) (findings []domain.Finding) {
	defer func() {
		if r := recover(); r != nil {
			a.options.Logger.Warn("detector panicked",
				"detector", detector.Name(), "path", path, "panic", r)
			findings = nil
		}
	}()

	findings, err := detector.Analyze(root, source, path)
	if err != nil {
		a.options.Logger.Warn("detector failed",
			"detector", detector.Name(), "path", path, "error", err)
		return nil
	}
	return findings
}

func (a *Analyzer) extractFeatures(root *sitter.Node, source []byte, path string) []domain.TestFeatures {
	var features []domain.TestFeatures

	for _, test := range pyast.CollectTestFunctions(root, source) {
		location := GetLocation(test.Node, path)
		aaa := rules.EvaluateAAA(pyast.Comments(test, source))

		features = append(features, domain.TestFeatures{
			Name:               test.Name,
			File:               path,
			StartLine:          location.StartLine,
			EndLine:            location.EndLine,
			ParamCount:         pyast.ParamCount(test, source),
			DecoratorCount:     test.Decorators,
			StatementCount:     pyast.StatementCount(test),
			AssertionCount:     pyast.AssertionCount(test, source),
			MockAssertionCount: rules.CountMockAssertions(test, source, nil),
			HasAAAComments:     aaa.HasComments,
			AAACompliant:       aaa.Compliant(),
			ExceptionPattern:   strings.Join(pyast.ExceptionTokens(test, source), "|"),
		})
	}

	return features
}

// AnalyzeSuite analyzes every file, scores every test, and clusters
// duplicates. Coverage records are keyed by "file:test". The returned error
// is non-nil only on cancellation; per-file problems surface as data in the
// report.
func (a *Analyzer) AnalyzeSuite(ctx context.Context, files []FileInput, coverageRecords map[string]domain.CoverageRecord) (*SuiteReport, error) {
	report := &SuiteReport{
		Scores: make(map[string]scoring.BISResult),
	}

	selected := a.filterFiles(files, report)
	a.analyzeFilesParallel(ctx, selected, report)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	a.aggregate(report)
	records := a.cloneRecords(report, coverageRecords)

	clusters, err := a.options.CloneDetector.DetectClusters(ctx, records)
	if err != nil {
		// Partial clustering is not meaningful; discard it.
		report.Errors = append(report.Errors, AnalyzeError{Err: err, Phase: "clustering"})
		report.BRS = scoring.CalculateBRS(report.Metrics)
		return report, err
	}
	report.Clusters = clusters

	for _, cluster := range clusters {
		report.Metrics.DuplicateTests += len(cluster.Tests)
	}

	report.BRS = scoring.CalculateBRS(report.Metrics)
	return report, nil
}

func (a *Analyzer) filterFiles(files []FileInput, report *SuiteReport) []FileInput {
	if len(a.options.Patterns) == 0 {
		return files
	}

	var selected []FileInput
	for _, file := range files {
		matched := false
		for _, pattern := range a.options.Patterns {
			ok, err := doublestar.Match(pattern, file.Path)
			if err != nil {
				report.Errors = append(report.Errors, AnalyzeError{
					Err:   fmt.Errorf("bad pattern %q: %w", pattern, err),
					Phase: "filter",
				})
				continue
			}
			if ok {
				matched = true
				break
			}
		}
		if matched {
			selected = append(selected, file)
		}
	}
	return selected
}

func (a *Analyzer) analyzeFilesParallel(ctx context.Context, files []FileInput, report *SuiteReport) {
	workers := a.options.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	fileReports := make([]FileReport, 0, len(files))

	for _, file := range files {
		file := file

		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			fileReport := a.AnalyzeFile(gCtx, file.Path, file.Source)

			mu.Lock()
			fileReports = append(fileReports, fileReport)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	// Goroutines finish in variable order; sort for deterministic output.
	sort.Slice(fileReports, func(i, j int) bool {
		return fileReports[i].Path < fileReports[j].Path
	})
	report.Files = fileReports
}

// aggregate folds per-file reports into run metrics and per-test BIS scores.
// Accumulation happens after collection, under no lock.
func (a *Analyzer) aggregate(report *SuiteReport) {
	report.Metrics.TotalFiles = len(report.Files)

	for _, file := range report.Files {
		report.Metrics.TotalViolations += len(file.Findings)
		if len(file.Findings) > 0 {
			report.Metrics.FilesWithIssues++
		}

		for _, test := range file.Tests {
			report.Metrics.TotalTests++
			if test.AAACompliant {
				report.Metrics.AAACompliantTests++
			}

			result := a.bis.CalculateBIS(findingsForTest(file.Findings, test), test)
			report.Scores[test.Key().String()] = result
			report.Metrics.BISScores = append(report.Metrics.BISScores, result.Score)
		}
	}
}

// findingsForTest selects the findings within a test's line span.
func findingsForTest(findings []domain.Finding, test domain.TestFeatures) []domain.Finding {
	var out []domain.Finding
	for _, f := range findings {
		if f.Line >= test.StartLine && f.Line <= test.EndLine {
			out = append(out, f)
		}
	}
	return out
}

// cloneRecords pairs each test's features with its coverage data. Signatures
// are served from the store when present; regeneration is idempotent, so
// concurrent writers for the same key agree.
func (a *Analyzer) cloneRecords(report *SuiteReport, coverageRecords map[string]domain.CoverageRecord) []clone.TestRecord {
	var records []clone.TestRecord

	for _, file := range report.Files {
		for _, test := range file.Tests {
			record := clone.TestRecord{
				Key:      test.Key(),
				Features: test,
			}

			if cov, ok := coverageRecords[record.Key.String()]; ok {
				cov := cov
				record.Coverage = &cov

				sig, ok := a.options.SignatureStore.Get(record.Key)
				if !ok {
					sig = coverage.Generate(test.Name, test.File, cov)
					if err := a.options.SignatureStore.Put(record.Key, sig); err != nil {
						a.options.Logger.Warn("signature store write failed",
							"key", record.Key.String(), "error", err)
					}
				}
				record.Signature = &sig
			}

			records = append(records, record)
		}
	}

	return records
}

// GenerateSignature derives (and caches) the coverage signature for a test.
func (a *Analyzer) GenerateSignature(filePath, testName string, record domain.CoverageRecord) domain.CoverageSignature {
	key := domain.TestKey{File: filePath, Name: testName}
	if sig, ok := a.options.SignatureStore.Get(key); ok {
		return sig
	}

	sig := coverage.Generate(testName, filePath, record)
	if err := a.options.SignatureStore.Put(key, sig); err != nil {
		a.options.Logger.Warn("signature store write failed", "key", key.String(), "error", err)
	}
	return sig
}
