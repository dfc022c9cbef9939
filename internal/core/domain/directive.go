package domain

// Directive names recognized by the parser. Unrecognized names are kept
// verbatim so newer documents keep working against older workers.
const (
	DirectiveStrategy     = "strategy"
	DirectiveValidation   = "validation"
	DirectiveChunkPattern = "chunk-pattern"
	DirectiveChunkOverlap = "chunk-overlap"
	DirectiveMetadata     = "metadata"
	DirectiveCustomRules  = "custom-rules"
	DirectiveSourceURL    = "source-url"
)

// Metadata is a restricted payload mapping: values are limited to
// string, float64 and bool. Nested objects and arrays are rejected at
// decode time.
type Metadata map[string]any

// ProcessingDirective holds the declared configuration extracted from a
// document's `#!name: value` header block. Immutable once parsed.
type ProcessingDirective struct {
	// Values keeps every directive line as raw text, keyed by name.
	Values map[string]string
	// Metadata is the decoded `metadata` payload; empty when absent or
	// when decoding failed (the failure is reported as a warning).
	Metadata Metadata
	// CustomRules is the decoded `custom-rules` payload, same rules.
	CustomRules Metadata
}

func (d ProcessingDirective) Strategy() string     { return d.Values[DirectiveStrategy] }
func (d ProcessingDirective) RuleSet() string      { return d.Values[DirectiveValidation] }
func (d ProcessingDirective) ChunkPattern() string { return d.Values[DirectiveChunkPattern] }
func (d ProcessingDirective) SourceURL() string    { return d.Values[DirectiveSourceURL] }

// Has reports whether a directive with the given name was declared.
func (d ProcessingDirective) Has(name string) bool {
	_, ok := d.Values[name]
	return ok
}
