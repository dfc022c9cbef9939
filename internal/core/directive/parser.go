// Package directive extracts declared processing configuration from the
// `#!name: value` header block of an annotated document.
package directive

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

const sentinel = "#!"

var directiveLine = regexp.MustCompile(`^#!([A-Za-z][A-Za-z0-9-]*):[ \t]*(.*)$`)

// Parse splits content into a directive map and the residual body. The
// header is the maximal prefix of consecutive sentinel lines starting at
// the first line; a leading `#!/...` interpreter marker is consumed and
// ignored. The body is everything after the header, verbatim, so chunk
// offsets stay addressable against the original content.
//
// Parsing never fails: malformed structured payloads are dropped and
// reported in the returned warnings.
func Parse(content string) (domain.ProcessingDirective, string, []string) {
	d := domain.ProcessingDirective{
		Values:      map[string]string{},
		Metadata:    domain.Metadata{},
		CustomRules: domain.Metadata{},
	}
	var warnings []string

	pos := 0
	first := true
	for pos < len(content) {
		line, next := nextLine(content, pos)

		if first && strings.HasPrefix(line, sentinel+"/") {
			// Interpreter marker, e.g. "#!/usr/bin/env rag-processor".
			first = false
			pos = next
			continue
		}
		first = false

		m := directiveLine.FindStringSubmatch(line)
		if m == nil {
			break
		}
		name := m[1]
		value := strings.TrimSpace(m[2])
		d.Values[name] = value
		pos = next
	}

	warnings = append(warnings, decodePayloads(&d)...)
	return d, content[pos:], warnings
}

// decodePayloads decodes the structured directive values and validates the
// numeric ones. A directive that fails to decode is dropped entirely so
// downstream stages never see a half-parsed payload.
func decodePayloads(d *domain.ProcessingDirective) []string {
	var warnings []string

	for _, name := range []string{domain.DirectiveMetadata, domain.DirectiveCustomRules} {
		raw, ok := d.Values[name]
		if !ok {
			continue
		}
		decoded, err := decodeMetadata(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("directive %q dropped: %v", name, err))
			delete(d.Values, name)
			continue
		}
		if name == domain.DirectiveMetadata {
			d.Metadata = decoded
		} else {
			d.CustomRules = decoded
		}
	}

	if raw, ok := d.Values[domain.DirectiveChunkOverlap]; ok {
		if _, err := strconv.Atoi(raw); err != nil {
			warnings = append(warnings, fmt.Sprintf("directive %q dropped: not an integer: %q", domain.DirectiveChunkOverlap, raw))
			delete(d.Values, domain.DirectiveChunkOverlap)
		}
	}

	return warnings
}

// Overlap returns the declared chunk-overlap override, if any. Parse has
// already validated the value.
func Overlap(d domain.ProcessingDirective) (int, bool) {
	raw, ok := d.Values[domain.DirectiveChunkOverlap]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeMetadata decodes a JSON object string into the restricted payload
// mapping: string keys, string/number/bool values only.
func decodeMetadata(raw string) (domain.Metadata, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	out := make(domain.Metadata, len(decoded))
	for key, value := range decoded {
		switch value.(type) {
		case string, float64, bool:
			out[key] = value
		default:
			return nil, fmt.Errorf("key %q: value must be string, number or bool", key)
		}
	}
	return out, nil
}

func nextLine(content string, pos int) (line string, next int) {
	idx := strings.IndexByte(content[pos:], '\n')
	if idx < 0 {
		return content[pos:], len(content)
	}
	return content[pos : pos+idx], pos + idx + 1
}
