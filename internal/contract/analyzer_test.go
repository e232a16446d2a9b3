package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const realEstateText = `RESIDENTIAL REAL ESTATE PURCHASE AND SALE AGREEMENT

This Agreement is made and entered into on March 3, 2024 by and between
John A. Smith ("Buyer") and Jane B. Doe ("Seller").

Property Address: 742 Evergreen Terrace, Springfield, IL 62704

1. Purchase Price. The total purchase price for the Property is $425,000.00.
2. Earnest Money. Buyer shall deposit earnest money of $10,000 with the escrow agent.
3. Closing. Closing shall occur on or before April 30, 2024.
4. Title. Seller shall convey marketable title by warranty deed.

IN WITNESS WHEREOF, the parties have executed this Agreement.`

const consultingText = `CONSULTING AGREEMENT

This Agreement is entered into as of 2024-01-15 by and between Acme Corp and Jane Roe.
The parties agree to the following terms and conditions.
1. Services. Consultant shall provide advisory services.
2. Fees. Client shall pay $5,000 per month.
3. Termination. Either party may terminate this Agreement with 30 days notice.
4. Liability. Neither party shall be liable for indirect damages.
5. Governing Law. This Agreement is governed by the laws of Delaware.
IN WITNESS WHEREOF, the parties have executed this Agreement.`

func TestAnalyze_RealEstateContract(t *testing.T) {
	fields, err := NewAnalyzer(DefaultConfig()).Analyze(context.Background(), realEstateText)
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeRealEstateContract, fields.DocumentType)
	assert.InDelta(t, 1.0, fields.Confidence, 0.0001)

	assert.Equal(t, "John A. Smith", fields.Buyer)
	assert.Equal(t, "Jane B. Doe", fields.Seller)
	assert.Equal(t, "742 Evergreen Terrace, Springfield, IL 62704", fields.PropertyAddress)
	assert.Equal(t, "$425,000.00", fields.PurchasePrice)
	assert.Equal(t, "$10,000", fields.EarnestMoney)
	assert.Equal(t, "March 3, 2024", fields.EffectiveDate)
	assert.Equal(t, "April 30, 2024", fields.ClosingDate)

	assert.Equal(t, []string{"$425,000.00", "$10,000"}, fields.Amounts)
	assert.Equal(t, []string{"March 3, 2024", "April 30, 2024"}, fields.Dates)

	rules := map[string]string{}
	for _, ev := range fields.Evidence {
		rules[ev.Field] = ev.Rule
		assert.NotEmpty(t, ev.Snippet, ev.Field)
	}
	assert.Equal(t, "between_parties", rules["buyer"])
	assert.Equal(t, "between_parties", rules["seller"])
	assert.Equal(t, "labelled_property_address", rules["property_address"])
	assert.Equal(t, "labelled_purchase_price", rules["purchase_price"])
	assert.Len(t, fields.Evidence, 7)

	assert.NotEmpty(t, fields.Signals)
}

func TestAnalyze_GenericContract(t *testing.T) {
	fields, err := NewAnalyzer(DefaultConfig()).Analyze(context.Background(), consultingText)
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeContract, fields.DocumentType)
	assert.InDelta(t, 0.8, fields.Confidence, 0.0001)
	assert.Equal(t, "2024-01-15", fields.EffectiveDate)
	assert.Equal(t, []string{"$5,000"}, fields.Amounts)

	// no role tags, so the parties are not assigned
	assert.Empty(t, fields.Buyer)
	assert.Empty(t, fields.Seller)
	assert.Empty(t, fields.PurchasePrice)
}

func TestAnalyze_LabelledParties(t *testing.T) {
	text := "Buyer: Alice Walker\nSeller: Bob Stone\nThis contract sets out the terms and conditions of the sale agreement."

	fields, err := NewAnalyzer(DefaultConfig()).Analyze(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "Alice Walker", fields.Buyer)
	assert.Equal(t, "Bob Stone", fields.Seller)
}

func TestAnalyze_NotAContract(t *testing.T) {
	fields, err := NewAnalyzer(DefaultConfig()).Analyze(context.Background(),
		"Quarterly revenue report. Revenue grew 12% in the third quarter of 2023.")
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeUnknown, fields.DocumentType)
	assert.Zero(t, fields.Confidence)
	assert.Empty(t, fields.Signals)
	assert.NotNil(t, fields.Amounts)
	assert.NotNil(t, fields.Dates)
	assert.NotNil(t, fields.Evidence)
}

func TestAnalyze_BelowMinConfidence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.9

	fields, err := NewAnalyzer(cfg).Analyze(context.Background(), consultingText)
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeUnknown, fields.DocumentType)
	assert.InDelta(t, 0.8, fields.Confidence, 0.0001)
}

func TestAnalyze_EmptyText(t *testing.T) {
	_, err := NewAnalyzer(DefaultConfig()).Analyze(context.Background(), " \n\t")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestAnalyze_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(DefaultConfig()).Analyze(ctx, consultingText)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_MaxContentLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxContentLength = len("CONSULTING AGREEMENT")

	fields, err := NewAnalyzer(cfg).Analyze(context.Background(), consultingText)
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeUnknown, fields.DocumentType)
	assert.Empty(t, fields.Amounts)
}

func TestNewAnalyzerWithRules_InvalidPattern(t *testing.T) {
	_, err := NewAnalyzerWithRules(DefaultConfig(), []Rule{{Name: "broken", Patterns: []string{"(unclosed"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestDocumentType(t *testing.T) {
	assert.Equal(t, "Real Estate Contract", DocumentTypeRealEstateContract.DisplayName())
	assert.Equal(t, "Unknown", DocumentType("invoice").DisplayName())
	assert.True(t, DocumentTypeContract.IsValid())
	assert.False(t, DocumentType("invoice").IsValid())
}
