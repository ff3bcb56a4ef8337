// Package classify assigns a document type to recognized text using a
// weighted keyword and pattern score table.
package classify

import (
	"regexp"
	"strings"

	"docscan/pkg/models"
)

// numberPatternBonus is added to a type's score when one of its numbering
// patterns (e.g. "inv# 1234") appears, independent of keyword hits.
const numberPatternBonus = 2

// Rule scores one document type: each keyword present in the text counts
// one point, and a match of any number pattern adds the fixed bonus.
type Rule struct {
	Type           models.DocumentType
	Keywords       []string
	NumberPatterns []*regexp.Regexp
}

// Classifier scores text against an ordered rule table. Rule order doubles
// as the tie-break priority: on equal scores the earlier rule wins.
type Classifier struct {
	rules []Rule
}

// New returns a classifier with the default rule table, in tie-break order
// invoice, receipt, purchase order, bill.
func New() *Classifier {
	return &Classifier{rules: []Rule{
		{
			Type: models.DocumentTypeInvoice,
			Keywords: []string{
				"invoice", "inv#", "invoice number", "invoice no", "bill to",
				"invoice date", "due date", "amount due", "total due",
			},
			NumberPatterns: []*regexp.Regexp{
				regexp.MustCompile(`inv[#\s]*[\d-]+`),
			},
		},
		{
			Type: models.DocumentTypeReceipt,
			Keywords: []string{
				"receipt", "thank you", "payment received", "transaction",
				"card ending", "change", "cash", "subtotal", "tax",
			},
			NumberPatterns: []*regexp.Regexp{
				regexp.MustCompile(`receipt[#\s]*[\d-]+`),
			},
		},
		{
			Type: models.DocumentTypePurchaseOrder,
			Keywords: []string{
				"purchase order", "po number", "po#", "p.o.", "order number",
				"delivery date", "ship to", "billing address",
			},
			NumberPatterns: []*regexp.Regexp{
				regexp.MustCompile(`po[#\s]*[\d-]+`),
				regexp.MustCompile(`p\.o\.\s*[\d-]+`),
			},
		},
		{
			Type: models.DocumentTypeBill,
			Keywords: []string{
				"bill", "statement", "account number", "previous balance",
				"current charges", "amount owed",
			},
			NumberPatterns: []*regexp.Regexp{
				regexp.MustCompile(`bill[#\s]*[\d-]+`),
			},
		},
	}}
}

// NewWithRules returns a classifier over a custom rule table.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the document type with the highest score, or Unknown when
// no rule scores at all. Matching is case-insensitive; ties resolve to the
// rule declared first.
func (c *Classifier) Classify(text string) models.DocumentType {
	lower := strings.ToLower(text)

	best := models.DocumentTypeUnknown
	bestScore := 0
	for _, rule := range c.rules {
		score := rule.score(lower)
		if score > bestScore {
			best = rule.Type
			bestScore = score
		}
	}
	return best
}

// score counts keyword presence (one point per keyword found, regardless of
// how often it repeats) plus the number pattern bonus.
func (r Rule) score(lower string) int {
	score := 0
	for _, keyword := range r.Keywords {
		if strings.Contains(lower, keyword) {
			score++
		}
	}
	for _, pattern := range r.NumberPatterns {
		if pattern.MatchString(lower) {
			score += numberPatternBonus
			break
		}
	}
	return score
}
