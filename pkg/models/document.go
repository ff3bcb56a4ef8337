// Package models defines the shared data structures exchanged between the
// document pipeline and its callers (CLI and HTTP layer).
package models

// DocumentType is the coarse category assigned to a scanned document.
type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeReceipt       DocumentType = "receipt"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
	DocumentTypeBill          DocumentType = "bill"
	DocumentTypeUnknown       DocumentType = "unknown"
)

// ExtractedData holds the structured fields pulled out of recognized text.
// Every field is derived independently from the raw text by its own rule;
// a nil pointer means no rule matched, not that extraction failed.
type ExtractedData struct {
	DocumentNumber *string `json:"document_number"`

	// Date is normalized to YYYY-MM-DD regardless of the input format.
	Date *string `json:"date"`

	Amount      *float64 `json:"amount"`
	TotalAmount *float64 `json:"total_amount"`
	TaxAmount   *float64 `json:"tax_amount"`

	VendorName    *string `json:"vendor_name"`
	VendorAddress *string `json:"vendor_address"`

	// LineItems is reserved for table-structure extraction and is always
	// empty for now.
	LineItems []map[string]any `json:"line_items"`
}

// NewExtractedData returns an empty record with LineItems initialized so the
// JSON encoding is a list rather than null.
func NewExtractedData() ExtractedData {
	return ExtractedData{LineItems: []map[string]any{}}
}

// ProcessResult is the outcome of running one document through the pipeline.
// RawText is always carried verbatim from the recognition step, even when no
// structured field could be extracted.
type ProcessResult struct {
	Success       bool          `json:"success"`
	Confidence    float64       `json:"confidence"`
	DocumentType  DocumentType  `json:"document_type"`
	ExtractedData ExtractedData `json:"extracted_data"`
	RawText       string        `json:"raw_text"`
	Error         string        `json:"error,omitempty"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	TesseractAvailable bool   `json:"tesseract_available"`
}
