package directive

import (
	"strings"
	"testing"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

func TestParseHeaderAndBody(t *testing.T) {
	content := "#!/usr/bin/env rag-processor\n" +
		"#!strategy: faq/qa-pairs\n" +
		"#!validation: ecommerce\n" +
		"#!source-url: https://example.com/faq.pdf\n" +
		"\nQ: What?\nA: That.\n"

	d, body, warnings := Parse(content)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if got := d.Strategy(); got != "faq/qa-pairs" {
		t.Fatalf("Strategy() = %q", got)
	}
	if got := d.RuleSet(); got != "ecommerce" {
		t.Fatalf("RuleSet() = %q", got)
	}
	if got := d.SourceURL(); got != "https://example.com/faq.pdf" {
		t.Fatalf("SourceURL() = %q", got)
	}
	// Body starts at the terminating blank line, verbatim.
	if body != "\nQ: What?\nA: That.\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestParseWithoutHeaderReturnsContentVerbatim(t *testing.T) {
	content := "Just a plain document.\n\nWith two paragraphs.\n"
	d, body, warnings := Parse(content)
	if len(d.Values) != 0 {
		t.Fatalf("expected no directives, got %v", d.Values)
	}
	if body != content {
		t.Fatalf("body = %q", body)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseRetainsUnrecognizedDirectives(t *testing.T) {
	d, _, _ := Parse("#!future-knob: enabled\n\nbody\n")
	if !d.Has("future-knob") {
		t.Fatalf("expected unrecognized directive to be retained")
	}
	if d.Values["future-knob"] != "enabled" {
		t.Fatalf("value = %q", d.Values["future-knob"])
	}
}

func TestParseDecodesMetadataPayload(t *testing.T) {
	d, _, warnings := Parse(`#!metadata: {"business":"acme","version":1.0,"published":true}` + "\n\nbody\n")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if d.Metadata["business"] != "acme" {
		t.Fatalf("business = %v", d.Metadata["business"])
	}
	if d.Metadata["version"] != 1.0 {
		t.Fatalf("version = %v", d.Metadata["version"])
	}
	if d.Metadata["published"] != true {
		t.Fatalf("published = %v", d.Metadata["published"])
	}
}

func TestParseDropsMalformedMetadataWithWarning(t *testing.T) {
	d, body, warnings := Parse("#!strategy: article/sentence-based\n#!metadata: {not json}\n\nbody\n")
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], domain.DirectiveMetadata) {
		t.Fatalf("warning should name the directive: %q", warnings[0])
	}
	if d.Has(domain.DirectiveMetadata) {
		t.Fatalf("malformed directive should be dropped")
	}
	// Recoverable: the rest of the header still parses.
	if d.Strategy() != "article/sentence-based" {
		t.Fatalf("Strategy() = %q", d.Strategy())
	}
	if body != "\nbody\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestParseRejectsNestedMetadataValues(t *testing.T) {
	d, _, warnings := Parse(`#!metadata: {"nested":{"a":1}}` + "\n\nbody\n")
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if len(d.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", d.Metadata)
	}
}

func TestParseValidatesChunkOverlap(t *testing.T) {
	d, _, warnings := Parse("#!chunk-overlap: 20\n\nbody\n")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	n, ok := Overlap(d)
	if !ok || n != 20 {
		t.Fatalf("Overlap() = %d, %v", n, ok)
	}

	d, _, warnings = Parse("#!chunk-overlap: lots\n\nbody\n")
	if len(warnings) != 1 {
		t.Fatalf("expected warning for non-integer overlap, got %v", warnings)
	}
	if _, ok := Overlap(d); ok {
		t.Fatalf("invalid overlap should be dropped")
	}
}

func TestParseTreatsAtFormAsBody(t *testing.T) {
	// The legacy "@name:" comment form is unsupported: such lines are body.
	content := "@strategy: faq/qa-pairs\ncontent\n"
	d, body, _ := Parse(content)
	if d.Has(domain.DirectiveStrategy) {
		t.Fatalf("@-form line must not parse as a directive")
	}
	if body != content {
		t.Fatalf("body = %q", body)
	}
}

func TestParseHeaderWithoutTrailingNewline(t *testing.T) {
	d, body, _ := Parse("#!strategy: legal/paragraph-based")
	if d.Strategy() != "legal/paragraph-based" {
		t.Fatalf("Strategy() = %q", d.Strategy())
	}
	if body != "" {
		t.Fatalf("body = %q", body)
	}
}
