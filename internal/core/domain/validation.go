package domain

// ValidationResult is the verdict over a completed chunk sequence. A failed
// validation is a normal result, not an error: Issues carry everything a
// caller needs to fix the source document.
type ValidationResult struct {
	Passed      bool     `json:"passed"`
	Score       float64  `json:"score"`
	Issues      []string `json:"issues"`
	RuleSetUsed string   `json:"rule_set_used,omitempty"`
}

// ClientRuleSet is a named collection of structural checks applied on top
// of the universal baseline. Looked up by name from the rule registry.
type ClientRuleSet struct {
	Name           string   `yaml:"name"`
	RequiredFields []string `yaml:"required_fields"`
	PricePattern   string   `yaml:"price_pattern"`
	Rules          []string `yaml:"rules"`
	MinChunkLength int      `yaml:"min_chunk_length"`
}
