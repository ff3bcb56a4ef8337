package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docscan/pkg/models"
)

func TestClassifyByKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.DocumentType
	}{
		{
			name: "invoice keywords only",
			text: "INVOICE\nAmount Due: $500.00\nDue Date: 01/01/2024",
			want: models.DocumentTypeInvoice,
		},
		{
			name: "repeated single invoice keyword",
			text: "invoice invoice",
			want: models.DocumentTypeInvoice,
		},
		{
			name: "receipt keywords",
			text: "RECEIPT\nThank you for your purchase\nCash tendered",
			want: models.DocumentTypeReceipt,
		},
		{
			name: "purchase order keywords",
			text: "PURCHASE ORDER\nShip To: Warehouse B\nDelivery Date: soon",
			want: models.DocumentTypePurchaseOrder,
		},
		{
			name: "bill keywords",
			text: "Monthly statement\nPrevious balance carried forward\nCurrent charges listed below",
			want: models.DocumentTypeBill,
		},
		{
			name: "no matches at all",
			text: "the quick brown fox jumps over a lazy dog",
			want: models.DocumentTypeUnknown,
		},
		{
			name: "empty text",
			text: "",
			want: models.DocumentTypeUnknown,
		},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyNumberPatternBonus(t *testing.T) {
	c := New()

	// "po# 5678" matches both the po# keyword and the numbering pattern,
	// outweighing a stray invoice keyword.
	got := c.Classify("invoice mentioned in passing, see po# 5678")
	assert.Equal(t, models.DocumentTypePurchaseOrder, got)

	// The p.o. spelling triggers the same bonus.
	got = c.Classify("p.o. 31337 approved")
	assert.Equal(t, models.DocumentTypePurchaseOrder, got)

	// Bonus applies once even when several numbering spellings appear.
	got = c.Classify("receipt# 42")
	assert.Equal(t, models.DocumentTypeReceipt, got)
}

func TestClassifyTieBreakPriority(t *testing.T) {
	c := New()

	// One invoice keyword against one receipt keyword: invoice wins the tie.
	assert.Equal(t, models.DocumentTypeInvoice, c.Classify("invoice receipt"))

	// "bill to" scores both invoice ("bill to") and bill ("bill"); the fixed
	// priority order resolves to invoice.
	assert.Equal(t, models.DocumentTypeInvoice, c.Classify("bill to"))
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := New()
	assert.Equal(t, models.DocumentTypeInvoice, c.Classify("InVoIcE"))
}

func TestClassifyCustomRules(t *testing.T) {
	c := NewWithRules([]Rule{
		{Type: models.DocumentType("quote"), Keywords: []string{"quotation"}},
	})
	assert.Equal(t, models.DocumentType("quote"), c.Classify("Quotation for services"))
	assert.Equal(t, models.DocumentTypeUnknown, c.Classify("invoice"))
}
