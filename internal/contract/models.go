package contract

// DocumentType is the classification assigned to analyzed text
type DocumentType string

const (
	DocumentTypeUnknown            DocumentType = "unknown"
	DocumentTypeContract           DocumentType = "contract"
	DocumentTypeRealEstateContract DocumentType = "real_estate_contract"
)

// DisplayName returns a human-readable name for a document type
func (dt DocumentType) DisplayName() string {
	switch dt {
	case DocumentTypeContract:
		return "Contract"
	case DocumentTypeRealEstateContract:
		return "Real Estate Contract"
	default:
		return "Unknown"
	}
}

// IsValid checks if the document type is valid
func (dt DocumentType) IsValid() bool {
	switch dt {
	case DocumentTypeUnknown, DocumentTypeContract, DocumentTypeRealEstateContract:
		return true
	default:
		return false
	}
}

// Fields is the structured result of analyzing contract text
type Fields struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   float64      `json:"confidence"` // 0.0 to 1.0

	Buyer           string `json:"buyer,omitempty"`
	Seller          string `json:"seller,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
	PurchasePrice   string `json:"purchase_price,omitempty"`
	EarnestMoney    string `json:"earnest_money,omitempty"`
	EffectiveDate   string `json:"effective_date,omitempty"`
	ClosingDate     string `json:"closing_date,omitempty"`

	// Every currency amount and date in the text, deduplicated, in order of appearance
	Amounts []string `json:"amounts"`
	Dates   []string `json:"dates"`

	Evidence []Evidence `json:"evidence"`
	Signals  []Signal   `json:"signals"`
}

// Evidence records where a field value came from
type Evidence struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Snippet string `json:"snippet"`
}

// Signal explains a classification rule that fired
type Signal struct {
	Rule     string  `json:"rule"`
	Category string  `json:"category"` // keyword or pattern
	Evidence string  `json:"evidence"`
	Score    float64 `json:"score"`
}

// Rule scores text as evidence for a document type
type Rule struct {
	Name         string
	DocumentType DocumentType
	Keywords     []string // matched on word boundaries, case-insensitive
	Patterns     []string // regular expressions, case-insensitive

	Weight        float64 // importance of the rule (0.0 to 1.0)
	MinConfidence float64 // rule confidence needed before the rule counts
	Description   string
}

// Config controls the analyzer
type Config struct {
	// MinConfidence is the score below which text is reported as unknown
	MinConfidence float64 `json:"min_confidence"`

	// RealEstateMinScore is the weighted real-estate score needed to specialize a contract
	RealEstateMinScore float64 `json:"real_estate_min_score"`

	// MaxContentLength caps how much text is analyzed; 0 means no limit
	MaxContentLength int `json:"max_content_length"`
}

// DefaultConfig returns the default analyzer configuration
func DefaultConfig() Config {
	return Config{
		MinConfidence:      0.5,
		RealEstateMinScore: 0.3,
		MaxContentLength:   500000,
	}
}
