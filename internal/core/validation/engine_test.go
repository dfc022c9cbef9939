package validation

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

func chunksFor(body string, spans [][2]int) []domain.Chunk {
	runes := []rune(body)
	out := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		out = append(out, domain.Chunk{
			Index:       i,
			Text:        string(runes[s[0]:s[1]]),
			StartOffset: s[0],
			EndOffset:   s[1],
		})
	}
	return out
}

func TestValidatePassesCleanSequence(t *testing.T) {
	body := "Name: Widget\nPrice: $10\n\nName: Gadget\nPrice: $20\n"
	chunks := chunksFor(body, [][2]int{{0, 25}, {25, len([]rune(body))}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "")
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 1.0, result.Score)
	assert.Empty(t, result.Issues)
	assert.Equal(t, DefaultRuleSet, result.RuleSetUsed)
}

func TestValidateUnknownRuleSetIsConfigurationError(t *testing.T) {
	body := "some body"
	chunks := chunksFor(body, [][2]int{{0, 9}})

	_, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "no-such-client")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrUnknownRuleSet))
	assert.True(t, domain.IsConfiguration(err))
	assert.Contains(t, err.Error(), "no-such-client")
}

func TestValidateStructuralCorruptionShortCircuits(t *testing.T) {
	body := "alpha beta gamma delta"
	chunks := chunksFor(body, [][2]int{{0, 11}, {11, 22}})
	chunks[1].Text = "tampered text"

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Zero(t, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "chunk 1")
}

func TestValidateNoChunks(t *testing.T) {
	result, err := NewEngine(NewRuleRegistry()).Validate("body text here", nil, nil, "")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Issues, "no chunks produced")
}

func TestValidateCoverageGap(t *testing.T) {
	body := "first half of the body text and then a second half entirely missing"
	chunks := chunksFor(body, [][2]int{{0, 20}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	found := false
	for _, issue := range result.Issues {
		if regexp.MustCompile(`^coverage:`).MatchString(issue) {
			found = true
		}
	}
	assert.True(t, found, "issues = %v", result.Issues)
}

func TestValidateOverlappingChunksCountCoverageOnce(t *testing.T) {
	body := "Name: Widget and a full description\nName: Gadget and a full description\n"
	n := len([]rune(body))
	chunks := chunksFor(body, [][2]int{{0, 36}, {26, n}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "")
	require.NoError(t, err)
	assert.True(t, result.Passed, "issues = %v", result.Issues)
}

func TestValidateShortChunkFails(t *testing.T) {
	body := "long enough first chunk right here\nok\n"
	chunks := chunksFor(body, [][2]int{{0, 35}, {35, 38}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Less(t, result.Score, 1.0)
	assert.Contains(t, result.Issues[0], "chunk 1")
}

func TestValidateCoherenceAgainstShape(t *testing.T) {
	body := "plain prose without any field markers whatsoever in either part\nand a second line of the same kind of prose here\n"
	n := len([]rune(body))
	chunks := chunksFor(body, [][2]int{{0, 64}, {64, n}})
	shape := regexp.MustCompile(`(?m)^[A-Za-z][A-Za-z ]*:`)

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, shape, "")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	found := false
	for _, issue := range result.Issues {
		if regexp.MustCompile(`^coherence:`).MatchString(issue) {
			found = true
		}
	}
	assert.True(t, found, "issues = %v", result.Issues)
}

func TestValidateEcommerceRuleSet(t *testing.T) {
	body := "Name: Coffee Beans\nPrice: R$ 32,90\n\nName: Green Tea\nPrice: R$ 12,00\n"
	n := len([]rune(body))
	chunks := chunksFor(body, [][2]int{{0, 36}, {36, n}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "ecommerce")
	require.NoError(t, err)
	assert.True(t, result.Passed, "issues = %v", result.Issues)
	assert.Equal(t, "ecommerce", result.RuleSetUsed)
}

func TestValidateEcommerceMissingPrice(t *testing.T) {
	body := "Name: Coffee Beans\nPrice: R$ 32,90\n\nName: Green Tea without any price\n"
	n := len([]rune(body))
	chunks := chunksFor(body, [][2]int{{0, 36}, {36, n}})

	result, err := NewEngine(NewRuleRegistry()).Validate(body, chunks, nil, "ecommerce")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Less(t, result.Score, 1.0)
	found := false
	for _, issue := range result.Issues {
		if regexp.MustCompile(`no price matching`).MatchString(issue) {
			found = true
		}
	}
	assert.True(t, found, "issues = %v", result.Issues)
}

func TestRuleRegistryLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "rule_sets:\n" +
		"  - name: wholesale\n" +
		"    required_fields:\n" +
		"      - \"SKU:\"\n" +
		"    min_chunk_length: 30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r := NewRuleRegistry()
	require.NoError(t, r.LoadFile(path))

	rs, err := r.Resolve("wholesale")
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU:"}, rs.RequiredFields)
	assert.Equal(t, 30, rs.MinChunkLength)
}

func TestRuleRegistryLoadFileRejectsNamelessSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule_sets:\n  - min_chunk_length: 5\n"), 0o600))

	err := NewRuleRegistry().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name")
}
