// Package models defines the canonical financial record produced by the
// extraction pipeline.
package models

// Canonical field names. Filings tag the same concept under many taxonomy
// names (UK GAAP, FRS102, IFRS); the extractor maps them all onto this fixed
// vocabulary.
const (
	FieldRevenue            = "revenue"
	FieldOperatingProfit    = "operating_profit"
	FieldProfitBeforeTax    = "profit_before_tax"
	FieldNetProfit          = "net_profit"
	FieldDepreciation       = "depreciation"
	FieldAmortisation       = "amortisation"
	FieldNetAssets          = "net_assets"
	FieldFixedAssets        = "fixed_assets"
	FieldTangibleAssets     = "tangible_assets"
	FieldCurrentAssets      = "current_assets"
	FieldCash               = "cash"
	FieldTotalCreditors     = "total_creditors"
	FieldShortTermCreditors = "short_term_creditors"
	FieldLongTermCreditors  = "long_term_creditors"
	FieldShareholdersFunds  = "shareholders_funds"
	FieldAverageEmployees   = "average_employees"

	// Derived fields, computed by the extractor rather than tagged.
	FieldOperatingMarginPct = "operating_margin_pct"
	FieldEBITDAEstimate     = "ebitda_estimate"
	FieldEBITDAMarginPct    = "ebitda_margin_pct"
)

// Record holds the values extracted from one filing. A field absent from
// Fields was not found in the document; absence is never coerced to zero.
type Record struct {
	Fields           map[string]float64
	BalanceSheetDate string // ISO date, resolved from context refs or the filing date
}

// NewRecord returns an empty record ready for population.
func NewRecord() *Record {
	return &Record{Fields: make(map[string]float64)}
}

// Has reports whether a canonical field was populated.
func (r *Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Get returns the value for a canonical field and whether it was populated.
func (r *Record) Get(field string) (float64, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Set stores a value under a canonical field only if the field is not already
// populated. The first structurally-matching tag in document order wins;
// later occurrences (e.g. prior-period contexts) are ignored.
func (r *Record) Set(field string, value float64) {
	if _, ok := r.Fields[field]; ok {
		return
	}
	r.Fields[field] = value
}

// Empty reports whether nothing was extracted, including the date.
func (r *Record) Empty() bool {
	return len(r.Fields) == 0 && r.BalanceSheetDate == ""
}
