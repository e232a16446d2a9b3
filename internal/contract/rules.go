package contract

import "regexp"

const (
	moneyPattern = `\$\s?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d{2})?`

	datePattern = `\b(?:` +
		`(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|` +
		`sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` +
		`|\d{1,2}/\d{1,2}/\d{2,4}` +
		`|\d{4}-\d{2}-\d{2}` +
		`)\b`

	// role tag such as ("Buyer") following a party name
	roleTag = `\(\s*["“'‘]?(buyer|purchaser|seller|vendor)["”'’]?\s*\)`
)

var (
	moneyRe = regexp.MustCompile(moneyPattern)
	dateRe  = regexp.MustCompile(`(?i)` + datePattern)

	// between <name> ("Buyer") and <name> ("Seller")
	betweenPartiesRe = regexp.MustCompile(`(?is)between\s+(.+?)\s*` + roleTag + `\s*,?\s*and\s+(.+?)\s*` + roleTag)
)

// fieldRule captures a single field value from the first submatch of Pattern
type fieldRule struct {
	Name    string
	Field   string
	Pattern *regexp.Regexp
}

// fieldRules are tried in order; the first rule that matches a field wins
var fieldRules = []fieldRule{
	{
		Name:    "labelled_buyer",
		Field:   "buyer",
		Pattern: regexp.MustCompile(`(?im)^[ \t]*(?:buyers?|purchasers?)[ \t]*[:\-][ \t]*(\S.*?)[ \t]*$`),
	},
	{
		Name:    "labelled_seller",
		Field:   "seller",
		Pattern: regexp.MustCompile(`(?im)^[ \t]*(?:sellers?|vendors?)[ \t]*[:\-][ \t]*(\S.*?)[ \t]*$`),
	},
	{
		Name:    "labelled_property_address",
		Field:   "property_address",
		Pattern: regexp.MustCompile(`(?im)property\s+address[ \t]*[:\-][ \t]*(\S.*?)[ \t]*$`),
	},
	{
		Name:    "located_at",
		Field:   "property_address",
		Pattern: regexp.MustCompile(`(?i)(?:property|premises|real\s+estate)[^.\n]{0,40}?located\s+at\s+([^\n]+?)(?:\.\s|\.$|;|\n|$)`),
	},
	{
		Name:    "labelled_purchase_price",
		Field:   "purchase_price",
		Pattern: regexp.MustCompile(`(?i)(?:purchase|sales?)\s+price.{0,60}?(` + moneyPattern + `)`),
	},
	{
		Name:    "labelled_earnest_money",
		Field:   "earnest_money",
		Pattern: regexp.MustCompile(`(?i)earnest\s+money.{0,60}?(` + moneyPattern + `)`),
	},
	{
		Name:    "labelled_effective_date",
		Field:   "effective_date",
		Pattern: regexp.MustCompile(`(?i)\b(?:effective\s+date|dated(?:\s+as\s+of)?|entered\s+into\s+(?:on|as\s+of)|made\s+(?:on|as\s+of)).{0,40}?(` + datePattern + `)`),
	},
	{
		Name:    "labelled_closing_date",
		Field:   "closing_date",
		Pattern: regexp.MustCompile(`(?i)\b(?:closing(?:\s+date)?|close\s+of\s+escrow|settlement\s+date).{0,60}?(` + datePattern + `)`),
	},
}

// defaultRules returns the classification rules used when none are supplied
func defaultRules() []Rule {
	return []Rule{
		{
			Name:         "contract_keywords",
			DocumentType: DocumentTypeContract,
			Keywords: []string{
				"contract", "agreement", "terms", "conditions", "parties",
				"whereas", "party", "covenant", "obligation", "breach",
				"liability", "indemnity", "termination", "effective date",
				"governing law", "hereby", "herein", "witnesseth",
			},
			Patterns: []string{
				`this\s+(?:agreement|contract)`,
				`by\s+and\s+between`,
				`in\s+witness\s+whereof`,
				`terms\s+and\s+conditions`,
			},
			Weight:        0.8,
			MinConfidence: 0.2,
			Description:   "Identifies contracts based on legal terminology",
		},
		{
			Name:         "contract_signatures",
			DocumentType: DocumentTypeContract,
			Patterns: []string{
				`signature\s*:?\s*_{3,}`,
				`(?:signed|executed)\s+(?:by|on)`,
				`date\s*:?\s*_{3,}`,
			},
			Weight:        0.5,
			MinConfidence: 0.15,
			Description:   "Identifies signature blocks",
		},
		{
			Name:         "real_estate_keywords",
			DocumentType: DocumentTypeRealEstateContract,
			Keywords: []string{
				"real estate", "purchase price", "earnest money", "closing",
				"escrow", "title", "deed", "property", "buyer", "seller",
				"mortgage", "appraisal", "inspection", "contingency", "conveyance",
			},
			Patterns: []string{
				`purchase\s+and\s+sale`,
				`property\s+address`,
				`closing\s+date`,
				`legal\s+description`,
				`earnest\s+money\s+deposit`,
			},
			Weight:        0.9,
			MinConfidence: 0.2,
			Description:   "Identifies real estate purchase contracts",
		},
	}
}
