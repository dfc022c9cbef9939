package domain

// Chunk is a contiguous, offset-addressed unit of body content produced by
// a chunking strategy. Offsets are rune indices into the body, end
// exclusive, so Text always equals string(bodyRunes[StartOffset:EndOffset]).
// Chunks are never mutated after creation.
type Chunk struct {
	Index       int      `json:"index"`
	Text        string   `json:"text"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Len returns the chunk span length in runes.
func (c Chunk) Len() int { return c.EndOffset - c.StartOffset }
