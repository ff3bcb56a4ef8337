// Package extract pulls structured fields out of raw recognized text.
//
// Every field has its own ordered list of patterns, tried first-match-wins;
// fields never share state, so a miss on one field cannot affect another.
// The output is best-effort: a nil field means no rule matched the noisy
// OCR text, not that anything failed.
package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"

	"docscan/pkg/models"
)

// Ordered rule tables. Within each table the first matching pattern wins.
var (
	documentNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)invoice[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)inv[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)po[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)purchase\s+order[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)bill[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)receipt[#\s]*:?\s*([A-Z0-9\-]+)`),
		regexp.MustCompile(`(?i)number[:\s]*([A-Z0-9\-]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(\d{4}[/-]\d{1,2}[/-]\d{1,2})`),
	}

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)grand\s+total[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)amount\s+due[:\s]*\$?([\d,]+\.?\d*)`),
	}

	taxPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)tax[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)gst[:\s]*\$?([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)vat[:\s]*\$?([\d,]+\.?\d*)`),
	}

	// Two-decimal amounts with an optional dollar sign, e.g. $1,234.56.
	monetaryPattern = regexp.MustCompile(`\$?([\d,]+\.\d{2})`)

	// Street number + name + street type + locality, optional 5-digit zip.
	addressPattern = regexp.MustCompile(`(?i)(\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Boulevard|Blvd)[\s,]+[A-Za-z\s,]+(?:\d{5})?)`)

	// Lines of only digits, whitespace and amount punctuation cannot be a
	// vendor name.
	digitsAndPunct = regexp.MustCompile(`^[\d\s$.,:]+$`)
)

var companySuffixes = []string{"inc", "ltd", "llc", "corp", "company"}

// vendorScanLines bounds the vendor name scan to the top of the document,
// where letterheads live.
const vendorScanLines = 10

// Extract parses recognized text into a structured record. The document type
// is attached to the surrounding result by the caller and does not change
// any parsing rule.
func Extract(text string) models.ExtractedData {
	data := models.NewExtractedData()
	data.DocumentNumber = documentNumber(text)
	data.Date = date(text)
	data.Amount = amount(text)
	data.TotalAmount = totalAmount(text)
	data.TaxAmount = taxAmount(text)
	data.VendorName = vendorName(text)
	data.VendorAddress = vendorAddress(text)
	return data
}

// documentNumber tries the type-specific numbering patterns in order against
// the upper-cased text.
func documentNumber(text string) *string {
	upper := strings.ToUpper(text)
	for _, pattern := range documentNumberPatterns {
		if m := pattern.FindStringSubmatch(upper); m != nil {
			value := strings.TrimSpace(m[1])
			return &value
		}
	}
	return nil
}

// Dash-separated month-first dates, which the lenient parser rejects.
var dashedDateLayouts = []string{"1-2-2006", "1-2-06"}

// date returns the first date-shaped substring that survives parsing,
// normalized to YYYY-MM-DD. Candidates that fail to parse are skipped and the
// next pattern is tried.
func date(text string) *string {
	for _, pattern := range datePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			parsed, ok := parseDate(m[1])
			if !ok {
				continue
			}
			value := parsed.Format("2006-01-02")
			return &value
		}
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	if t, err := dateparse.ParseAny(s); err == nil {
		return t, true
	}
	for _, layout := range dashedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// amount returns the largest distinct monetary value in the text; on a
// business document that is most likely the grand total.
func amount(text string) *float64 {
	amounts := allAmounts(text)
	if len(amounts) == 0 {
		return nil
	}
	return &amounts[0]
}

// totalAmount prefers explicitly labeled totals and falls back to the
// largest-amount heuristic.
func totalAmount(text string) *float64 {
	if v := firstAmount(totalPatterns, text); v != nil {
		return v
	}
	return amount(text)
}

// taxAmount has no fallback: either a tax label matched or the field is
// absent.
func taxAmount(text string) *float64 {
	return firstAmount(taxPatterns, text)
}

// vendorName scans the top lines for something that reads like a company
// letterhead: a company suffix keyword, or a fully upper-case line of
// plausible length.
func vendorName(text string) *string {
	lines := strings.Split(text, "\n")
	if len(lines) > vendorScanLines {
		lines = lines[:vendorScanLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		length := utf8.RuneCountInString(line)
		if length <= 3 || length >= 100 {
			continue
		}
		if digitsAndPunct.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		for _, suffix := range companySuffixes {
			if strings.Contains(lower, suffix) {
				return &line
			}
		}
		if isUpper(line) && length >= 5 && length <= 50 {
			return &line
		}
	}
	return nil
}

func vendorAddress(text string) *string {
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		value := strings.TrimSpace(m[1])
		return &value
	}
	return nil
}

// firstAmount runs an ordered pattern list and parses the first capture that
// yields a number; unparseable captures fall through to the next pattern.
func firstAmount(patterns []*regexp.Regexp, text string) *float64 {
	for _, pattern := range patterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// allAmounts collects every distinct positive monetary value in the text,
// sorted descending.
func allAmounts(text string) []float64 {
	seen := make(map[float64]bool)
	var amounts []float64
	for _, m := range monetaryPattern.FindAllStringSubmatch(text, -1) {
		v, err := parseAmount(m[1])
		if err != nil || v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		amounts = append(amounts, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(amounts)))
	return amounts
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// isUpper reports whether s contains at least one letter and no lower-case
// letters.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
