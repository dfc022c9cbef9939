// Package chunking splits document bodies into offset-addressed chunks
// using a closed set of boundary-detection strategies.
package chunking

import (
	"errors"
	"regexp"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

// BoundaryKind is the closed enumeration of boundary-detection rules. New
// strategies extend this set; there is no open runtime registration.
type BoundaryKind int

const (
	// BoundarySeparator splits at separator matches; the separator text
	// stays attached to the preceding segment so spans cover the body.
	BoundarySeparator BoundaryKind = iota
	// BoundaryLineMarker starts a new segment at each match of a
	// line-anchored marker (headings, numbered items, Q:/Name: fields).
	BoundaryLineMarker
	// BoundarySentence splits after sentence-terminal punctuation and
	// accumulates sentences into blocks up to the strategy's cap.
	BoundarySentence
)

// Strategy is a read-only chunking configuration: boundary rule plus
// overlap policy and an optional block-size cap. Registered once at
// startup and safe for concurrent reads.
type Strategy struct {
	ID           string
	Kind         BoundaryKind
	Boundary     *regexp.Regexp
	Overlap      int
	MaxBlockSize int

	// Shape is the expected per-chunk pattern used by the validation
	// engine's coherence check. Nil means no shape expectation.
	Shape *regexp.Regexp
}

// Registry is the static strategy lookup. An unknown identifier is a
// configuration error surfaced to the caller, never silently substituted.
type Registry struct {
	strategies map[string]Strategy
	order      []string
}

func NewRegistry() *Registry {
	r := &Registry{strategies: map[string]Strategy{}}
	for _, s := range builtinStrategies() {
		r.register(s)
	}
	return r
}

func (r *Registry) register(s Strategy) {
	r.strategies[s.ID] = s
	r.order = append(r.order, s.ID)
}

// Resolve returns the strategy for id, or a configuration error naming
// the offending identifier.
func (r *Registry) Resolve(id string) (Strategy, error) {
	s, ok := r.strategies[id]
	if !ok {
		return Strategy{}, domain.WrapError(domain.ErrUnknownStrategy, "resolve strategy", errors.New(id))
	}
	return s, nil
}

// IDs lists registered strategy identifiers in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func builtinStrategies() []Strategy {
	fieldShape := regexp.MustCompile(`(?m)^[A-Za-z][A-Za-z ]*:`)
	headingShape := regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)

	return []Strategy{
		{
			ID:       "structured-blocks/empty-line-separated",
			Kind:     BoundarySeparator,
			Boundary: regexp.MustCompile(`\n\s*\n`),
			Shape:    fieldShape,
		},
		{
			ID:       "structured-blocks/heading-separated",
			Kind:     BoundaryLineMarker,
			Boundary: regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`),
			Shape:    headingShape,
		},
		{
			ID:       "structured-blocks/numbered-separated",
			Kind:     BoundaryLineMarker,
			Boundary: regexp.MustCompile(`(?m)^\d+\.[ \t]+`),
			Shape:    regexp.MustCompile(`(?m)^\d+\.[ \t]+`),
		},
		{
			ID:           "manual/section-based",
			Kind:         BoundaryLineMarker,
			Boundary:     regexp.MustCompile(`(?m)^#{1,6}[ \t]+.+$`),
			Overlap:      150,
			MaxBlockSize: 2000,
			Shape:        headingShape,
		},
		{
			ID:       "products/semantic-boundary",
			Kind:     BoundaryLineMarker,
			Boundary: regexp.MustCompile(`(?mi)^(name|nome|product|item):`),
			Shape:    fieldShape,
		},
		{
			ID:       "faq/qa-pairs",
			Kind:     BoundaryLineMarker,
			Boundary: regexp.MustCompile(`(?m)^(Q:|Question:|Pergunta:|\d+\.[ \t]*.+\?)`),
			Shape:    regexp.MustCompile(`\?|A:|Answer:|Resposta:`),
		},
		{
			ID:           "article/sentence-based",
			Kind:         BoundarySentence,
			Boundary:     regexp.MustCompile(`[.!?]+[ \t]*\n|[.!?]+[ \t]+`),
			Overlap:      100,
			MaxBlockSize: 1200,
			Shape:        regexp.MustCompile(`[.!?]`),
		},
		{
			ID:           "legal/paragraph-based",
			Kind:         BoundarySeparator,
			Boundary:     regexp.MustCompile(`\n\s*\n`),
			Overlap:      250,
			MaxBlockSize: 2500,
		},
		{
			ID:       "code/function-based",
			Kind:     BoundaryLineMarker,
			Boundary: regexp.MustCompile(`(?m)^(def[ \t]+\w+|function[ \t]+\w+|func[ \t]+\w+|class[ \t]+\w+)`),
		},
	}
}
