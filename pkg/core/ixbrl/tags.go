package ixbrl

import (
	"strings"

	"accounts_parser/pkg/models"
)

// conceptMapping pairs a normalized tag-name substring with the canonical
// field it populates.
type conceptMapping struct {
	substring string
	field     string
}

// conceptTable is a priority-ordered dispatch rule: for each scanned element
// the first entry whose substring is contained in the normalized tag key
// wins. Matching is containment, not equality, because filers append
// qualifiers ("totalturnovercurrentyear" must still match "turnover").
// Entry order is significant and must not be reordered.
var conceptTable = []conceptMapping{
	{"turnover", models.FieldRevenue},
	{"revenue", models.FieldRevenue},
	{"turnoverorrevenue", models.FieldRevenue},
	{"operatingprofit", models.FieldOperatingProfit},
	{"profitlossonordinaryactivities", models.FieldOperatingProfit},
	{"profitlossbeforetax", models.FieldProfitBeforeTax},
	{"profitbeforetax", models.FieldProfitBeforeTax},
	{"profitloss", models.FieldNetProfit},
	{"profitlossforperiod", models.FieldNetProfit},
	{"depreciationtangibleassets", models.FieldDepreciation},
	{"amortisationintangibleassets", models.FieldAmortisation},
	{"netassets", models.FieldNetAssets},
	{"netassetsliabilities", models.FieldNetAssets},
	{"totalnetassets", models.FieldNetAssets},
	{"fixedassets", models.FieldFixedAssets},
	{"tangibleassets", models.FieldTangibleAssets},
	{"currentassets", models.FieldCurrentAssets},
	{"cashatbankandinhand", models.FieldCash},
	{"cash", models.FieldCash},
	{"creditors", models.FieldTotalCreditors},
	{"totalcreditors", models.FieldTotalCreditors},
	{"creditorswithinoneyear", models.FieldShortTermCreditors},
	{"creditorsduewithinoneyear", models.FieldShortTermCreditors},
	{"creditorsafteroneyear", models.FieldLongTermCreditors},
	{"creditorsdueafteroneyear", models.FieldLongTermCreditors},
	{"shareholdersfunds", models.FieldShareholdersFunds},
	{"equity", models.FieldShareholdersFunds},
	{"averagenumberemployees", models.FieldAverageEmployees},
	{"averagenumberofemployees", models.FieldAverageEmployees},
}

// matchConcept returns the canonical field for a normalized tag key, or ""
// when no table entry matches.
func matchConcept(key string) string {
	for _, m := range conceptTable {
		if strings.Contains(key, m.substring) {
			return m.field
		}
	}
	return ""
}
