package analysis

import (
	"regexp"

	"github.com/kirillkom/rag-processor/internal/core/domain"
)

// pattern is one detection signal: a compiled regex with a label used in
// the matched-pattern report and a confidence weight.
type pattern struct {
	label  string
	re     *regexp.Regexp
	weight float64
}

func pat(label, expr string, weight float64) pattern {
	return pattern{label: label, re: regexp.MustCompile(expr), weight: weight}
}

// typePriority fixes the tie-break ordering: types with the most specific
// structural signal come first, generic prose last.
var typePriority = []domain.DocumentType{
	domain.TypeStructuredBlocks,
	domain.TypeProductCatalog,
	domain.TypeFAQ,
	domain.TypeUserManual,
	domain.TypeLegalDocument,
	domain.TypeCodeDocumentation,
	domain.TypeArticle,
}

// detectionPatterns is the static pattern library. Weights follow the
// relative strength of each signal; the table is read-only after init and
// safe for concurrent use.
var detectionPatterns = map[domain.DocumentType][]pattern{
	domain.TypeStructuredBlocks: {
		pat("empty-line", `\n[ \t]*\n`, 4.0),
		pat("field-value", `(?mi)^[a-z][a-z ]*:[ \t]*[^\n]*$`, 3.5),
		pat("block-starter", `(?mi)^(name|title|item):`, 3.0),
		pat("description-field", `(?mi)^(description|details?):`, 2.5),
		pat("price-field", `(?mi)^(price|cost|value):`, 2.5),
		pat("category-field", `(?mi)^(category|type|class):`, 2.0),
	},
	domain.TypeProductCatalog: {
		pat("name-field", `(?i)\bname:[^\n]*`, 3.0),
		pat("description-field", `(?i)\bdescription:[^\n]*`, 2.5),
		pat("price-field", `(?i)\bprice:[^\n]*`, 2.5),
		pat("category-field", `(?i)\bcategory:[^\n]*`, 1.5),
		pat("brand-field", `(?i)\bbrand:[^\n]*`, 1.5),
		pat("sku-field", `(?i)\bsku:[^\n]*`, 1.5),
		pat("product-field", `(?i)\bproduct:[^\n]*`, 2.0),
		pat("item-field", `(?i)\bitem:[^\n]*`, 1.8),
		// Legacy Portuguese catalog fields, kept at low weight.
		pat("nome-field", `Nome:[^\n]*`, 1.5),
		pat("descricao-field", `Descrição:[^\n]*`, 1.2),
		pat("preco-field", `Preço:[^\n]*`, 1.2),
	},
	domain.TypeUserManual: {
		pat("markdown-heading", `(?m)^#{1,6}[ \t]+`, 2.0),
		pat("numbered-section", `(?m)^\d+\.[ \t]+`, 1.5),
		pat("chapter-marker", `(?i)chapter\s+\d+`, 2.5),
		pat("section-marker", `(?i)section\s+\d+`, 2.0),
		pat("subsection-number", `(?m)^\d+\.\d+[ \t]+`, 2.0),
		pat("step-marker", `(?i)step\s+\d+`, 1.5),
		pat("instruction-header", `(?i)instructions?:`, 1.8),
		pat("how-to", `(?i)how\s+to\s+`, 1.5),
	},
	domain.TypeFAQ: {
		pat("question-marker", `Q:|Question:|Pergunta:`, 3.0),
		pat("answer-marker", `A:|Answer:|Resposta:`, 3.0),
		pat("numbered-question", `(?m)^\d+\.[ \t]*.+\?`, 2.5),
		pat("faq-header", `FAQ|F\.A\.Q\.`, 2.0),
		pat("question-line", `(?m)\?[ \t]*$`, 1.5),
		pat("frequently-asked", `(?i)frequently\s+asked`, 2.0),
	},
	domain.TypeArticle: {
		pat("sentence-line", `(?m)^[A-Z][^.!?\n]*[.!?][ \t]*$`, 1.0),
		pat("paragraph-reference", `(?i)paragraph|parágrafo`, 1.2),
		pat("introduction-marker", `(?i)introduction|introdução`, 1.5),
		pat("conclusion-marker", `(?i)conclusion|conclusão`, 1.5),
		pat("example-phrase", `(?i)for\s+example|por\s+exemplo`, 1.0),
		pat("transition-word", `(?i)\btherefore\b`, 1.2),
	},
	domain.TypeLegalDocument: {
		pat("legal-article", `(?i)article\s+\d+|artigo\s+\d+`, 2.5),
		pat("legal-section", `(?i)section\s+\d+|seção\s+\d+`, 2.0),
		pat("whereas-clause", `(?i)\bwhereas\b|\bconsiderando\b`, 2.0),
		pat("hereby-language", `(?i)\bhereby\b|pelo\s+presente`, 2.0),
		pat("terms-header", `(?i)terms\s+and\s+conditions`, 2.5),
		pat("privacy-policy", `(?i)privacy\s+policy`, 2.5),
		pat("agreement-doc", `(?i)\bagreement\b|\bacordo\b`, 2.0),
		pat("contract-doc", `(?i)\bcontract\b|\bcontrato\b`, 2.0),
	},
	domain.TypeCodeDocumentation: {
		pat("python-func", `def\s+\w+\(`, 2.5),
		pat("js-func", `function\s+\w+\(`, 2.5),
		pat("class-def", `class\s+\w+`, 2.0),
		pat("api-mention", `\bAPI\b|\bapi\b`, 2.0),
		pat("code-fence", "```", 2.0),
		pat("doc-tag", `@param|@return`, 2.0),
		pat("import-statement", `(?m)^import\s+\w+`, 1.5),
		pat("api-section", `(?m)^##[ \t]+[A-Z]`, 1.5),
	},
}
