package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `ACME SUPPLIES INC
123 Main Street, Springfield, 62704
Invoice #: INV-2024-0042
Date: 03/14/2024

Widgets          2    $500.00
Service fee           $173.10

Tax: $61.73
Total: $1,234.56`

func TestExtractSampleInvoice(t *testing.T) {
	data := Extract(sampleInvoice)

	require.NotNil(t, data.DocumentNumber)
	assert.Equal(t, "INV-2024-0042", *data.DocumentNumber)

	require.NotNil(t, data.Date)
	assert.Equal(t, "2024-03-14", *data.Date)

	require.NotNil(t, data.TotalAmount)
	assert.Equal(t, 1234.56, *data.TotalAmount)

	require.NotNil(t, data.TaxAmount)
	assert.Equal(t, 61.73, *data.TaxAmount)

	require.NotNil(t, data.Amount)
	assert.Equal(t, 1234.56, *data.Amount, "amount is the largest monetary value")

	require.NotNil(t, data.VendorName)
	assert.Equal(t, "ACME SUPPLIES INC", *data.VendorName)

	require.NotNil(t, data.VendorAddress)
	assert.Contains(t, *data.VendorAddress, "123 Main Street")

	assert.Empty(t, data.LineItems)
	assert.NotNil(t, data.LineItems, "line items must encode as an empty list")
}

func TestAmountsLargestWins(t *testing.T) {
	data := Extract("Total: $1,234.56 Tax: $61.73")

	require.NotNil(t, data.TotalAmount)
	assert.Equal(t, 1234.56, *data.TotalAmount)
	require.NotNil(t, data.TaxAmount)
	assert.Equal(t, 61.73, *data.TaxAmount)
	require.NotNil(t, data.Amount)
	assert.Equal(t, 1234.56, *data.Amount)
}

func TestTotalFallsBackToLargestAmount(t *testing.T) {
	// No total label anywhere, so the largest value stands in.
	data := Extract("items 12.50 and 99.95 and 7.25")
	require.NotNil(t, data.TotalAmount)
	assert.Equal(t, 99.95, *data.TotalAmount)
}

func TestTaxHasNoFallback(t *testing.T) {
	data := Extract("Total: $100.00")
	assert.Nil(t, data.TaxAmount)
}

func TestAmountDeduplication(t *testing.T) {
	amounts := allAmounts("$25.00 then again 25.00 and 10.00")
	assert.Equal(t, []float64{25, 10}, amounts)
}

func TestNoAmounts(t *testing.T) {
	data := Extract("no money mentioned here")
	assert.Nil(t, data.Amount)
	assert.Nil(t, data.TotalAmount)
}

func TestDateNormalization(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled us date", "Date: 03/14/2024", "2024-03-14"},
		{"bare slash date", "shipped 12/25/2023 by ground", "2023-12-25"},
		{"dashed date", "Date: 3-14-2024", "2024-03-14"},
		{"zero padded dashed date", "Date: 03-14-2024", "2024-03-14"},
		{"dashed two digit year", "shipped 12-25-23 by ground", "2023-12-25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Extract(tt.text)
			require.NotNil(t, data.Date)
			assert.Equal(t, tt.want, *data.Date)
		})
	}
}

func TestDateAbsent(t *testing.T) {
	data := Extract("no date-shaped substrings in this text")
	assert.Nil(t, data.Date)
}

func TestDocumentNumberPatternOrder(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"invoice number", "Invoice # INV-100", "INV-100"},
		{"po number", "PO# 5678", "5678"},
		{"receipt number", "Receipt: R-33", "R-33"},
		{"generic number", "Number: ABC-1", "ABC-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Extract(tt.text)
			require.NotNil(t, data.DocumentNumber)
			assert.Equal(t, tt.want, *data.DocumentNumber)
		})
	}
}

func TestDocumentNumberAbsent(t *testing.T) {
	data := Extract("nothing identifying here")
	assert.Nil(t, data.DocumentNumber)
}

func TestVendorNameRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"company suffix", "Northwind Trading Ltd\nsome other line", "Northwind Trading Ltd"},
		{"all caps letterhead", "GLOBEX CORPORATION\nlowercase tagline", "GLOBEX CORPORATION"},
		{"skips numeric lines", "123.45\n$ 99.00\nInitech LLC", "Initech LLC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Extract(tt.text)
			require.NotNil(t, data.VendorName)
			assert.Equal(t, tt.want, *data.VendorName)
		})
	}
}

func TestVendorNameCountsCharactersNotBytes(t *testing.T) {
	// 64 characters but 124 bytes; the length bounds apply to characters.
	suffixed := strings.Repeat("É", 60) + " INC"
	data := Extract(suffixed + "\nbody text")
	require.NotNil(t, data.VendorName)
	assert.Equal(t, suffixed, *data.VendorName)

	// 48 characters but 96 bytes; within the upper-case letterhead bounds.
	caps := strings.Repeat("ÉA", 24)
	data = Extract(caps + "\nbody text")
	require.NotNil(t, data.VendorName)
	assert.Equal(t, caps, *data.VendorName)
}

func TestVendorNameOnlyScansTopLines(t *testing.T) {
	text := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nBURIED VENDOR INC"
	data := Extract(text)
	assert.Nil(t, data.VendorName, "line 11 is past the scan window")
}

func TestVendorAddress(t *testing.T) {
	data := Extract("remit to 42 Elm Avenue, Portland, 97201 before Friday")
	require.NotNil(t, data.VendorAddress)
	assert.Contains(t, *data.VendorAddress, "42 Elm Avenue")

	data = Extract("no street to be found")
	assert.Nil(t, data.VendorAddress)
}

func TestExtractIsIdempotent(t *testing.T) {
	first := Extract(sampleInvoice)
	second := Extract(sampleInvoice)
	assert.Equal(t, first, second, "extraction is a pure function of the text")
}

func TestMonetaryFieldsNonNegative(t *testing.T) {
	data := Extract(sampleInvoice)
	for name, v := range map[string]*float64{
		"amount": data.Amount,
		"total":  data.TotalAmount,
		"tax":    data.TaxAmount,
	} {
		if v != nil {
			assert.GreaterOrEqual(t, *v, 0.0, name)
		}
	}
}
