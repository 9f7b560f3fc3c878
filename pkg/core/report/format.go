// Package report shapes extracted records for downstream delivery.
package report

import (
	"math"
	"time"

	"accounts_parser/pkg/models"
)

// FlatRecord is the human-labelled delivery shape consumed by the external
// sink. Currency-valued fields are integer-rounded; percentages keep two
// decimals. Absent fields serialize as null, never zero.
type FlatRecord struct {
	CompanyNumber      string   `json:"Companies House Number"`
	FiledDate          string   `json:"Accounts Filed Date"`
	BalanceSheetDate   string   `json:"Balance Sheet Date,omitempty"`
	Revenue            *float64 `json:"Revenue"`
	OperatingProfit    *float64 `json:"Operating Profit"`
	ProfitBeforeTax    *float64 `json:"Profit Before Tax"`
	NetProfit          *float64 `json:"Net Profit"`
	EBITDAEstimate     *float64 `json:"EBITDA Estimate"`
	EBITDAMarginPct    *float64 `json:"EBITDA Margin %"`
	OperatingMarginPct *float64 `json:"Operating Margin %"`
	NetAssets          *float64 `json:"Net Assets"`
	FixedAssets        *float64 `json:"Fixed Assets"`
	CurrentAssets      *float64 `json:"Current Assets"`
	Cash               *float64 `json:"Cash"`
	TotalCreditors     *float64 `json:"Total Creditors"`
	ShortTermCreditors *float64 `json:"Short Term Creditors"`
	LongTermCreditors  *float64 `json:"Long Term Creditors"`
	ShareholdersFunds  *float64 `json:"Shareholders Funds"`
	AverageEmployees   *float64 `json:"Average Employees"`
	LastUpdated        string   `json:"Last Financial Updated"`
}

// Flatten produces the delivery record for one extraction, stamped with the
// UTC date of production.
func Flatten(record *models.Record, companyNumber, filingDate string) *FlatRecord {
	return &FlatRecord{
		CompanyNumber:      companyNumber,
		FiledDate:          filingDate,
		BalanceSheetDate:   record.BalanceSheetDate,
		Revenue:            rounded(record, models.FieldRevenue),
		OperatingProfit:    rounded(record, models.FieldOperatingProfit),
		ProfitBeforeTax:    rounded(record, models.FieldProfitBeforeTax),
		NetProfit:          rounded(record, models.FieldNetProfit),
		EBITDAEstimate:     rounded(record, models.FieldEBITDAEstimate),
		EBITDAMarginPct:    verbatim(record, models.FieldEBITDAMarginPct),
		OperatingMarginPct: verbatim(record, models.FieldOperatingMarginPct),
		NetAssets:          rounded(record, models.FieldNetAssets),
		FixedAssets:        rounded(record, models.FieldFixedAssets),
		CurrentAssets:      rounded(record, models.FieldCurrentAssets),
		Cash:               rounded(record, models.FieldCash),
		TotalCreditors:     rounded(record, models.FieldTotalCreditors),
		ShortTermCreditors: rounded(record, models.FieldShortTermCreditors),
		LongTermCreditors:  rounded(record, models.FieldLongTermCreditors),
		ShareholdersFunds:  rounded(record, models.FieldShareholdersFunds),
		AverageEmployees:   verbatim(record, models.FieldAverageEmployees),
		LastUpdated:        time.Now().UTC().Format("2006-01-02"),
	}
}

// rounded returns the field integer-rounded, or nil when absent.
func rounded(record *models.Record, field string) *float64 {
	v, ok := record.Get(field)
	if !ok {
		return nil
	}
	r := math.Round(v)
	return &r
}

// verbatim returns the field unrounded (percentages are already at two
// decimals, employee counts are whole), or nil when absent.
func verbatim(record *models.Record, field string) *float64 {
	v, ok := record.Get(field)
	if !ok {
		return nil
	}
	return &v
}
