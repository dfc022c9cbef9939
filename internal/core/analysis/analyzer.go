// Package analysis classifies document bodies by structural pattern
// matching. The analyzer is a pure table-driven function: identical input
// always yields an identical DocumentAnalysis.
package analysis

import (
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

const (
	// frequencyMultiplier boosts patterns found repeatedly, capped so a
	// single noisy pattern cannot dominate the score.
	frequencyMultiplier = 1.5
	frequencyBoostCap   = 5.0

	// FallbackStrategy is recommended when no type reaches the minimum
	// confidence: empty-line separation works on anything.
	FallbackStrategy = "structured-blocks/empty-line-separated"
)

var (
	emptyLineSeparator = regexp.MustCompile(`\n[ \t]*\n`)
	headingSeparator   = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`)
	numberedSeparator  = regexp.MustCompile(`(?m)^\d+\.[ \t]+`)
)

// Analyze scores the body against every registered document type and
// returns the winning type with a normalized confidence. Ties break by the
// fixed priority ordering (most specific structural signal first). A top
// score below the minimum threshold yields TypeUnknown with the mechanical
// fallback strategy.
func Analyze(body string) domain.DocumentAnalysis {
	length := utf8.RuneCountInString(body)

	matched := map[string]int{}
	bestType := domain.TypeUnknown
	bestScore := -1.0

	for _, docType := range typePriority {
		score := 0.0
		for _, p := range detectionPatterns[docType] {
			count := len(p.re.FindAllStringIndex(body, -1))
			if count == 0 {
				continue
			}
			matched[string(docType)+":"+p.label] = count
			boost := math.Min(float64(count)*frequencyMultiplier, frequencyBoostCap)
			score += p.weight * boost
		}
		// Strictly greater keeps the priority ordering on ties.
		if score > bestScore {
			bestScore = score
			bestType = docType
		}
	}

	confidence := normalizeConfidence(bestScore, length)
	if confidence < domain.MinimumConfidenceThreshold {
		return domain.DocumentAnalysis{
			DocumentType:        domain.TypeUnknown,
			Confidence:          confidence,
			MatchedPatterns:     matched,
			RecommendedStrategy: FallbackStrategy,
			ContentLength:       length,
		}
	}

	return domain.DocumentAnalysis{
		DocumentType:        bestType,
		Confidence:          confidence,
		MatchedPatterns:     matched,
		RecommendedStrategy: recommendStrategy(bestType, body),
		ContentLength:       length,
	}
}

// normalizeConfidence maps a raw pattern score into [0, 0.95]. The length
// factor dampens short-snippet false positives: longer documents need
// proportionally more matches to reach the same confidence.
func normalizeConfidence(raw float64, length int) float64 {
	if length == 0 || raw <= 0 {
		return 0
	}
	lengthFactor := math.Min(float64(length)/1000.0, 2.0)
	adjusted := raw / (10.0 * lengthFactor)
	confidence := math.Min(adjusted/(1.0+adjusted), 0.95)
	return math.Round(confidence*1000) / 1000
}

func recommendStrategy(docType domain.DocumentType, body string) string {
	switch docType {
	case domain.TypeStructuredBlocks:
		return structuredBlocksStrategy(body)
	case domain.TypeProductCatalog:
		return "products/semantic-boundary"
	case domain.TypeUserManual:
		return "manual/section-based"
	case domain.TypeFAQ:
		return "faq/qa-pairs"
	case domain.TypeArticle:
		return "article/sentence-based"
	case domain.TypeLegalDocument:
		return "legal/paragraph-based"
	case domain.TypeCodeDocumentation:
		return "code/function-based"
	default:
		return FallbackStrategy
	}
}

// structuredBlocksStrategy picks the structured-blocks sub-strategy whose
// separator actually dominates the content.
func structuredBlocksStrategy(body string) string {
	emptyLines := len(emptyLineSeparator.FindAllStringIndex(body, -1))
	headings := len(headingSeparator.FindAllStringIndex(body, -1))
	numbered := len(numberedSeparator.FindAllStringIndex(body, -1))

	switch {
	case headings >= 3 && float64(headings) > float64(emptyLines)*0.5:
		return "structured-blocks/heading-separated"
	case numbered >= 3 && float64(numbered) > float64(emptyLines)*0.5:
		return "structured-blocks/numbered-separated"
	default:
		return FallbackStrategy
	}
}
