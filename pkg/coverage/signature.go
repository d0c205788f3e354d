// Package coverage derives deterministic signatures from externally measured
// per-test coverage records, for similarity comparison only.
package coverage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/battleready/core/pkg/domain"
)

// Generate derives a signature from a coverage record. It is pure and
// deterministic: identical records yield equal hashes regardless of the
// ordering of the covered-lines set.
func Generate(testName, filePath string, record domain.CoverageRecord) domain.CoverageSignature {
	hash := signatureHash(record)
	return domain.CoverageSignature{
		TestName: testName,
		FilePath: filePath,
		Hash:     hash,
		Vector:   signatureVector(record),
		Pattern:  signaturePattern(record, hash),
	}
}

func signatureHash(record domain.CoverageRecord) string {
	lines := append([]int(nil), record.CoveredLines...)
	sort.Ints(lines)

	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = strconv.Itoa(line)
	}

	content := fmt.Sprintf("%d:%d:%d:%d:%s:%s",
		record.LinesCovered,
		record.LinesTotal,
		record.BranchesCovered,
		record.BranchesTotal,
		strconv.FormatFloat(record.CoveragePercent, 'f', -1, 64),
		strings.Join(parts, ","),
	)

	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// signatureVector builds the 4-component feature vector: coverage ratio,
// line ratio, branch ratio, and covered-line density.
func signatureVector(record domain.CoverageRecord) []float64 {
	return []float64{
		record.CoveragePercent / 100,
		float64(record.LinesCovered) / float64(max(record.LinesTotal, 1)),
		float64(record.BranchesCovered) / float64(max(record.BranchesTotal, 1)),
		lineDensity(record.CoveredLines),
	}
}

// lineDensity measures how contiguous the covered lines are: 1/(1+mean gap)
// for two or more lines, 1.0 for a single line, 0.0 for none.
func lineDensity(coveredLines []int) float64 {
	switch len(coveredLines) {
	case 0:
		return 0.0
	case 1:
		return 1.0
	}

	lines := append([]int(nil), coveredLines...)
	sort.Ints(lines)

	gapSum := 0.0
	for i := 1; i < len(lines); i++ {
		gapSum += float64(lines[i] - lines[i-1])
	}
	meanGap := gapSum / float64(len(lines)-1)
	return 1 / (1 + meanGap)
}

func signaturePattern(record domain.CoverageRecord, hash string) string {
	pattern := fmt.Sprintf("coverage:%.1f%%|lines:%d/%d|branches:%d/%d",
		record.CoveragePercent,
		record.LinesCovered, record.LinesTotal,
		record.BranchesCovered, record.BranchesTotal,
	)
	if len(hash) >= 8 {
		pattern += "|signature:" + hash[:8]
	}
	return pattern
}

// Similarity compares two signatures. Equal hashes score 1.0; otherwise the
// vectors are compared by cosine similarity over the shorter vector's length.
// When either vector is empty, falls back to Jaccard similarity over the
// pipe-split pattern components. The result is clamped to [0,1].
func Similarity(a, b domain.CoverageSignature) float64 {
	if a.Hash != "" && a.Hash == b.Hash {
		return 1.0
	}

	if len(a.Vector) == 0 || len(b.Vector) == 0 {
		return patternJaccard(a.Pattern, b.Pattern)
	}

	n := min(len(a.Vector), len(b.Vector))
	return clamp01(cosine(a.Vector[:n], b.Vector[:n]))
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func patternJaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := make(map[string]bool)
	for _, part := range strings.Split(a, "|") {
		setA[part] = true
	}

	intersection := 0
	setB := make(map[string]bool)
	for _, part := range strings.Split(b, "|") {
		if setB[part] {
			continue
		}
		setB[part] = true
		if setA[part] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
