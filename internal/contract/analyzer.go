package contract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrEmptyText is returned when there is nothing to analyze
var ErrEmptyText = errors.New("no text to analyze")

type compiledRule struct {
	Rule
	keywords []*regexp.Regexp
	patterns []*regexp.Regexp
}

// Analyzer performs rule-based contract classification and field extraction.
// It is immutable after construction and safe for concurrent use.
type Analyzer struct {
	config Config
	rules  []compiledRule
}

// NewAnalyzer creates an analyzer with the default rule set
func NewAnalyzer(config Config) *Analyzer {
	a, err := NewAnalyzerWithRules(config, defaultRules())
	if err != nil {
		// the default rules are constant and always compile
		panic(err)
	}
	return a
}

// NewAnalyzerWithRules creates an analyzer with a custom rule set
func NewAnalyzerWithRules(config Config, rules []Rule) (*Analyzer, error) {
	a := &Analyzer{config: config}

	for _, rule := range rules {
		cr := compiledRule{Rule: rule}
		for _, kw := range rule.Keywords {
			cr.keywords = append(cr.keywords, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`\b`))
		}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("rule %s: invalid pattern %q: %w", rule.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		a.rules = append(a.rules, cr)
	}

	return a, nil
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() Config {
	return a.config
}

// Analyze classifies text and extracts contract fields from it
func (a *Analyzer) Analyze(ctx context.Context, text string) (*Fields, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if a.config.MaxContentLength > 0 && len(text) > a.config.MaxContentLength {
		text = text[:a.config.MaxContentLength]
	}

	fields := &Fields{
		Amounts:  []string{},
		Dates:    []string{},
		Evidence: []Evidence{},
		Signals:  []Signal{},
	}

	scores := make(map[DocumentType]float64)
	for _, rule := range a.rules {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		confidence, signals := evaluateRule(rule, text)
		if confidence < rule.MinConfidence {
			continue
		}
		scores[rule.DocumentType] += confidence * rule.Weight
		fields.Signals = append(fields.Signals, signals...)
	}

	fields.DocumentType, fields.Confidence = a.classify(scores)

	a.extractFields(text, fields)

	log.Debug().Str("document_type", string(fields.DocumentType)).
		Float64("confidence", fields.Confidence).
		Int("signals", len(fields.Signals)).
		Int("evidence", len(fields.Evidence)).
		Msg("contract analysis complete")

	return fields, nil
}

// evaluateRule scores one rule; each keyword hit adds 0.1 and each pattern hit 0.15, capped at 1
func evaluateRule(rule compiledRule, text string) (float64, []Signal) {
	var confidence float64
	var signals []Signal

	for i, re := range rule.keywords {
		count := len(re.FindAllStringIndex(text, -1))
		if count == 0 {
			continue
		}
		score := 0.1 * float64(count)
		confidence += score
		signals = append(signals, Signal{
			Rule:     rule.Name,
			Category: "keyword",
			Evidence: fmt.Sprintf("Found keyword '%s' %d times", rule.Keywords[i], count),
			Score:    score,
		})
	}

	for i, re := range rule.patterns {
		count := len(re.FindAllStringIndex(text, -1))
		if count == 0 {
			continue
		}
		score := 0.15 * float64(count)
		confidence += score
		signals = append(signals, Signal{
			Rule:     rule.Name,
			Category: "pattern",
			Evidence: fmt.Sprintf("Pattern '%s' matched %d times", rule.Patterns[i], count),
			Score:    score,
		})
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence, signals
}

func (a *Analyzer) classify(scores map[DocumentType]float64) (DocumentType, float64) {
	var total float64
	for _, score := range scores {
		total += score
	}
	if total > 1.0 {
		total = 1.0
	}

	if total < a.config.MinConfidence {
		return DocumentTypeUnknown, total
	}
	if scores[DocumentTypeRealEstateContract] >= a.config.RealEstateMinScore {
		return DocumentTypeRealEstateContract, total
	}
	return DocumentTypeContract, total
}

func (a *Analyzer) extractFields(text string, fields *Fields) {
	values := map[string]*string{
		"buyer":            &fields.Buyer,
		"seller":           &fields.Seller,
		"property_address": &fields.PropertyAddress,
		"purchase_price":   &fields.PurchasePrice,
		"earnest_money":    &fields.EarnestMoney,
		"effective_date":   &fields.EffectiveDate,
		"closing_date":     &fields.ClosingDate,
	}

	set := func(field, rule, value, snippet string) {
		dst := values[field]
		if *dst != "" || value == "" {
			return
		}
		*dst = value
		fields.Evidence = append(fields.Evidence, Evidence{Field: field, Rule: rule, Snippet: snippet})
	}

	for _, rule := range fieldRules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		set(rule.Field, rule.Name, normalizeSpace(m[1]), normalizeSpace(m[0]))
	}

	if m := betweenPartiesRe.FindStringSubmatch(text); m != nil {
		snippet := normalizeSpace(m[0])
		for _, party := range [][2]string{{m[1], m[2]}, {m[3], m[4]}} {
			name, role := normalizeSpace(party[0]), strings.ToLower(party[1])
			switch role {
			case "buyer", "purchaser":
				set("buyer", "between_parties", name, snippet)
			case "seller", "vendor":
				set("seller", "between_parties", name, snippet)
			}
		}
	}

	fields.Amounts = uniqueMatches(moneyRe, text)
	fields.Dates = uniqueMatches(dateRe, text)
}

func uniqueMatches(re *regexp.Regexp, text string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, m := range re.FindAllString(text, -1) {
		m = normalizeSpace(m)
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
