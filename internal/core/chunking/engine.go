package chunking

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/rag-processor/internal/core/directive"
	"github.com/kirillkom/rag-processor/internal/core/domain"
)

// span is a half-open [start, end) range. Segmentation produces byte
// spans from regexp matches; they are converted to rune spans before any
// length or overlap arithmetic.
type span struct {
	start int
	end   int
}

// Engine applies a registered strategy to a document body. It is
// stateless beyond the registry and safe for concurrent use.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Chunk splits body with the named strategy, honoring the directive's
// chunk-pattern and chunk-overlap overrides. Offsets in the returned
// chunks are rune indices into body. An unknown strategy identifier or
// an uncompilable pattern override fails before any chunk is produced.
func (e *Engine) Chunk(body, strategyID string, d domain.ProcessingDirective) ([]domain.Chunk, error) {
	strat, err := e.registry.Resolve(strategyID)
	if err != nil {
		return nil, err
	}

	if expr := d.ChunkPattern(); expr != "" {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "compile chunk-pattern override", err)
		}
		strat.Boundary = re
	}
	if n, ok := directive.Overlap(d); ok && n >= 0 {
		strat.Overlap = n
	}

	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	byteSpans := segment(body, strat)
	runes := []rune(body)
	spans := toRuneSpans(body, byteSpans)
	spans = dropBlank(runes, spans)
	if strat.MaxBlockSize > 0 {
		spans = capSpans(runes, spans, strat.MaxBlockSize)
	}

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		start := s.start
		if i > 0 && strat.Overlap > 0 {
			// Overlap extends backward only, pulling in the tail of the
			// preceding span; forward extension would shift every chunk's
			// leading content and break offset provenance.
			ext := strat.Overlap
			if ext > start {
				ext = start
			}
			start -= ext
		}
		chunks = append(chunks, domain.Chunk{
			Index:       i,
			Text:        string(runes[start:s.end]),
			StartOffset: start,
			EndOffset:   s.end,
			Metadata:    chunkMetadata(strat.ID, d),
		})
	}
	return chunks, nil
}

func chunkMetadata(strategyID string, d domain.ProcessingDirective) domain.Metadata {
	md := domain.Metadata{"strategy": strategyID}
	for k, v := range d.Metadata {
		md[k] = v
	}
	return md
}

// segment produces ordered byte spans covering body according to the
// strategy's boundary kind. When the boundary never matches the whole
// body becomes a single span.
func segment(body string, strat Strategy) []span {
	switch strat.Kind {
	case BoundaryLineMarker:
		return segmentByMarker(body, strat.Boundary)
	case BoundarySentence:
		sentences := segmentBySeparator(body, strat.Boundary)
		return groupSentences(body, sentences, strat.MaxBlockSize)
	default:
		return segmentBySeparator(body, strat.Boundary)
	}
}

// segmentBySeparator ends a span at each match end, so separator text
// stays attached to the preceding span and concatenating all spans
// reproduces the body exactly.
func segmentBySeparator(body string, re *regexp.Regexp) []span {
	var spans []span
	start := 0
	for _, m := range re.FindAllStringIndex(body, -1) {
		if m[1] > start {
			spans = append(spans, span{start, m[1]})
			start = m[1]
		}
	}
	if start < len(body) {
		spans = append(spans, span{start, len(body)})
	}
	return spans
}

// segmentByMarker starts a span at each match start. Content before the
// first marker becomes a preamble span.
func segmentByMarker(body string, re *regexp.Regexp) []span {
	matches := re.FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return []span{{0, len(body)}}
	}
	var spans []span
	if matches[0][0] > 0 {
		spans = append(spans, span{0, matches[0][0]})
	}
	for i, m := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		spans = append(spans, span{m[0], end})
	}
	return spans
}

// groupSentences merges consecutive sentence spans into blocks of at
// most maxSize runes. A single oversized sentence passes through and is
// handled by capSpans.
func groupSentences(body string, sentences []span, maxSize int) []span {
	if maxSize <= 0 || len(sentences) == 0 {
		return sentences
	}
	var out []span
	current := sentences[0]
	size := utf8.RuneCountInString(body[current.start:current.end])
	for _, s := range sentences[1:] {
		n := utf8.RuneCountInString(body[s.start:s.end])
		if size+n <= maxSize {
			current.end = s.end
			size += n
			continue
		}
		out = append(out, current)
		current = s
		size = n
	}
	return append(out, current)
}

// toRuneSpans converts ordered, non-overlapping byte spans into rune
// spans in a single forward pass over body.
func toRuneSpans(body string, spans []span) []span {
	out := make([]span, len(spans))
	byteIdx, runeIdx := 0, 0
	advance := func(target int) int {
		for byteIdx < target {
			_, size := utf8.DecodeRuneInString(body[byteIdx:])
			byteIdx += size
			runeIdx++
		}
		return runeIdx
	}
	for i, s := range spans {
		out[i].start = advance(s.start)
		out[i].end = advance(s.end)
	}
	return out
}

func dropBlank(runes []rune, spans []span) []span {
	out := spans[:0]
	for _, s := range spans {
		if strings.TrimSpace(string(runes[s.start:s.end])) != "" {
			out = append(out, s)
		}
	}
	return out
}

// capSpans splits spans longer than maxSize runes. The cut prefers a
// sentence end within the window, then the last whitespace, then a hard
// cut at the limit, so both halves keep their exact offsets.
func capSpans(runes []rune, spans []span, maxSize int) []span {
	var out []span
	for _, s := range spans {
		for s.end-s.start > maxSize {
			cut := s.start + findCut(runes[s.start:s.start+maxSize])
			out = append(out, span{s.start, cut})
			s.start = cut
		}
		out = append(out, s)
	}
	return out
}

// findCut returns the split position within window: after the last
// sentence terminator followed by whitespace, else after the last
// whitespace run, else the full window length.
func findCut(window []rune) int {
	for i := len(window) - 2; i > 0; i-- {
		if isSentenceEnd(window[i]) && unicode.IsSpace(window[i+1]) {
			return i + 1
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}
	return len(window)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
