package domain

// DocumentType is the closed set of structural document classes the
// analyzer can recognize.
type DocumentType string

const (
	TypeStructuredBlocks  DocumentType = "structured_blocks"
	TypeProductCatalog    DocumentType = "product_catalog"
	TypeUserManual        DocumentType = "user_manual"
	TypeFAQ               DocumentType = "faq"
	TypeArticle           DocumentType = "article"
	TypeLegalDocument     DocumentType = "legal_document"
	TypeCodeDocumentation DocumentType = "code_documentation"
	TypeUnknown           DocumentType = "unknown"
)

// Confidence thresholds shared by the analyzer and the strategy resolver.
const (
	HighConfidenceThreshold    = 0.7
	MediumConfidenceThreshold  = 0.4
	MinimumConfidenceThreshold = 0.15
)

// DocumentAnalysis is the immutable result of structural classification.
type DocumentAnalysis struct {
	DocumentType        DocumentType   `json:"document_type"`
	Confidence          float64        `json:"confidence"`
	MatchedPatterns     map[string]int `json:"matched_patterns"`
	RecommendedStrategy string         `json:"recommended_strategy"`
	ContentLength       int            `json:"content_length"`
}

// HighConfidence reports whether the classification is strong enough for
// automatic strategy selection.
func (a DocumentAnalysis) HighConfidence() bool {
	return a.Confidence >= HighConfidenceThreshold
}
