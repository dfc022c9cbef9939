package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

const (
	// defaultMinChunkLength is the universal floor on trimmed chunk length
	// in runes, used when the rule set declares no stricter floor.
	defaultMinChunkLength = 10

	// coverageTolerance is the fraction of body runes allowed to go
	// uncovered: whitespace-only segments are dropped during chunking and
	// legitimately leave gaps.
	coverageTolerance = 0.10

	// coherenceFloor is the minimum fraction of chunks that must match
	// the strategy's shape pattern when one is declared.
	coherenceFloor = 0.5

	defaultScoreThreshold = 1.0
)

// Engine runs the universal checks and one client rule set over a chunk
// sequence. Stateless beyond its registry; safe for concurrent use.
type Engine struct {
	rules          *RuleRegistry
	scoreThreshold float64
}

func NewEngine(rules *RuleRegistry) *Engine {
	return &Engine{rules: rules, scoreThreshold: defaultScoreThreshold}
}

// WithScoreThreshold lowers (or raises) the passing score. The default
// demands a perfect score.
func (e *Engine) WithScoreThreshold(threshold float64) *Engine {
	e.scoreThreshold = threshold
	return e
}

// Validate checks chunks against body. Structural corruption (offsets
// that do not address the body) short-circuits with a zero score; every
// other finding accumulates into Issues. A failed validation is a normal
// result; only an unknown rule set name is an error.
func (e *Engine) Validate(body string, chunks []domain.Chunk, shape *regexp.Regexp, ruleSetName string) (domain.ValidationResult, error) {
	rs, err := e.rules.Resolve(ruleSetName)
	if err != nil {
		return domain.ValidationResult{}, err
	}

	result := domain.ValidationResult{RuleSetUsed: rs.Name}
	if len(chunks) == 0 {
		result.Issues = append(result.Issues, "no chunks produced")
		return result, nil
	}

	runes := []rune(body)
	if issue := checkStructure(runes, chunks); issue != "" {
		result.Issues = append(result.Issues, issue)
		return result, nil
	}

	var fractions []float64
	record := func(passed, total int, issues []string) {
		if total == 0 {
			return
		}
		fractions = append(fractions, float64(passed)/float64(total))
		result.Issues = append(result.Issues, issues...)
	}

	universalOK := true
	fail := func(passed, total int, issues []string) {
		record(passed, total, issues)
		if passed < total {
			universalOK = false
		}
	}

	fail(checkCoverage(runes, chunks))
	fail(checkMinLength(chunks, minLength(rs)))
	fail(checkEncoding(chunks))
	fail(checkCoherence(chunks, shape))

	record(checkRequiredFields(chunks, rs.RequiredFields))
	passed, total, issues, err := checkPricePattern(chunks, rs)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	record(passed, total, issues)

	score := 1.0
	if len(fractions) > 0 {
		sum := 0.0
		for _, f := range fractions {
			sum += f
		}
		score = sum / float64(len(fractions))
	}
	result.Score = math.Round(score*1000) / 1000
	result.Passed = universalOK && result.Score >= e.scoreThreshold
	return result, nil
}

func minLength(rs domain.ClientRuleSet) int {
	if rs.MinChunkLength > 0 {
		return rs.MinChunkLength
	}
	return defaultMinChunkLength
}

// checkStructure verifies every chunk addresses the body exactly and the
// sequence is ordered. Any violation means the offsets cannot be trusted
// and no further check is meaningful.
func checkStructure(runes []rune, chunks []domain.Chunk) string {
	for i, c := range chunks {
		if c.StartOffset < 0 || c.EndOffset > len(runes) || c.StartOffset >= c.EndOffset {
			return fmt.Sprintf("chunk %d: offsets [%d, %d) out of range for body of %d runes", i, c.StartOffset, c.EndOffset, len(runes))
		}
		if c.Text != string(runes[c.StartOffset:c.EndOffset]) {
			return fmt.Sprintf("chunk %d: text does not match body at [%d, %d)", i, c.StartOffset, c.EndOffset)
		}
		if i > 0 && c.EndOffset <= chunks[i-1].EndOffset {
			return fmt.Sprintf("chunk %d: not ordered after chunk %d", i, i-1)
		}
	}
	return ""
}

// checkCoverage measures the union of chunk spans against the body
// length. Overlapping runes count once, so overlap strategies are not
// penalized.
func checkCoverage(runes []rune, chunks []domain.Chunk) (int, int, []string) {
	covered := 0
	maxEnd := 0
	for _, c := range chunks {
		start := c.StartOffset
		if start < maxEnd {
			start = maxEnd
		}
		if c.EndOffset > start {
			covered += c.EndOffset - start
		}
		if c.EndOffset > maxEnd {
			maxEnd = c.EndOffset
		}
	}
	uncovered := len(runes) - covered
	allowed := int(float64(len(runes)) * coverageTolerance)
	if uncovered > allowed {
		issue := fmt.Sprintf("coverage: %d of %d body runes not addressed by any chunk", uncovered, len(runes))
		return 0, 1, []string{issue}
	}
	return 1, 1, nil
}

func checkMinLength(chunks []domain.Chunk, floor int) (int, int, []string) {
	passed := 0
	var issues []string
	for i, c := range chunks {
		if utf8.RuneCountInString(strings.TrimSpace(c.Text)) >= floor {
			passed++
			continue
		}
		issues = append(issues, fmt.Sprintf("chunk %d: shorter than %d runes", i, floor))
	}
	return passed, len(chunks), issues
}

func checkEncoding(chunks []domain.Chunk) (int, int, []string) {
	passed := 0
	var issues []string
	for i, c := range chunks {
		if utf8.ValidString(c.Text) {
			passed++
			continue
		}
		issues = append(issues, fmt.Sprintf("chunk %d: invalid UTF-8", i))
	}
	return passed, len(chunks), issues
}

// checkCoherence requires at least half the chunks to carry the shape the
// strategy promised. A nil shape skips the check.
func checkCoherence(chunks []domain.Chunk, shape *regexp.Regexp) (int, int, []string) {
	if shape == nil {
		return 0, 0, nil
	}
	matching := 0
	for _, c := range chunks {
		if shape.MatchString(c.Text) {
			matching++
		}
	}
	if float64(matching) < coherenceFloor*float64(len(chunks)) {
		issue := fmt.Sprintf("coherence: only %d of %d chunks match the expected shape %q", matching, len(chunks), shape.String())
		return 0, 1, []string{issue}
	}
	return 1, 1, nil
}

func checkRequiredFields(chunks []domain.Chunk, fields []string) (int, int, []string) {
	if len(fields) == 0 {
		return 0, 0, nil
	}
	passed := 0
	var issues []string
	for i, c := range chunks {
		missing := ""
		for _, f := range fields {
			if !strings.Contains(c.Text, f) {
				missing = f
				break
			}
		}
		if missing == "" {
			passed++
			continue
		}
		issues = append(issues, fmt.Sprintf("chunk %d: missing required field %q", i, missing))
	}
	return passed, len(chunks), issues
}

func checkPricePattern(chunks []domain.Chunk, rs domain.ClientRuleSet) (int, int, []string, error) {
	if rs.PricePattern == "" {
		return 0, 0, nil, nil
	}
	re, err := regexp.Compile(rs.PricePattern)
	if err != nil {
		return 0, 0, nil, domain.WrapError(domain.ErrUnknownRuleSet, fmt.Sprintf("rule set %q price pattern", rs.Name), err)
	}
	passed := 0
	var issues []string
	for i, c := range chunks {
		if re.MatchString(c.Text) {
			passed++
			continue
		}
		issues = append(issues, fmt.Sprintf("chunk %d: no price matching %q", i, rs.PricePattern))
	}
	return passed, len(chunks), issues, nil
}
