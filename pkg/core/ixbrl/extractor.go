// Package ixbrl extracts canonical financial figures from inline-XBRL
// accounts documents.
//
// Filings vary widely in strictness and taxonomy (UK GAAP, FRS102, IFRS), so
// the markup is parsed as tolerant HTML via goquery and tag names are matched
// by normalized substring containment rather than exact taxonomy lookup.
// Linkbases and dimensions are deliberately not resolved.
package ixbrl

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"accounts_parser/pkg/models"
)

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Extract scans the markup for tagged financial values and returns the
// canonical record. It never fails: malformed or unexpected markup yields an
// empty record, which the caller reports as a distinct "no data extracted"
// outcome.
//
// Each canonical field is populated by the first structurally-matching tag in
// document order. Documents tag the same concept in multiple contexts
// (current vs. prior period); later occurrences are silently ignored, so a
// prior-year comparative that happens to match first will win. That ambiguity
// is inherited from the matching rule and left uncorrected.
func Extract(markup, fallbackDate string) *models.Record {
	record := models.NewRecord()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return record
	}

	// Candidates are elements namespaced under the inline-XBRL prefix.
	// Documents that lost their namespacing (or were never well-formed)
	// still carry context-reference attributes, so fall back to those.
	candidates := doc.Find("*").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.HasPrefix(goquery.NodeName(s), "ix:")
	})
	if candidates.Length() == 0 {
		candidates = doc.Find("[contextref]")
	}

	var latestDate string
	candidates.Each(func(_ int, s *goquery.Selection) {
		// The name attribute carries the taxonomy concept; the raw tag
		// name is the fallback for malformed markup.
		name := s.AttrOr("name", "")
		if name == "" {
			name = goquery.NodeName(s)
		}
		key := normalizeTagKey(name)

		// Context references embed the reporting period date.
		if d := isoDateRe.FindString(s.AttrOr("contextref", "")); d != "" && d > latestDate {
			latestDate = d
		}

		field := matchConcept(key)
		if field == "" {
			return
		}

		value, ok := CleanNumeric(strings.TrimSpace(s.Text()))
		if !ok {
			return
		}
		value = applyScale(value, s.AttrOr("scale", ""))
		value = applySign(value, s.AttrOr("sign", ""))
		record.Set(field, value)
	})

	// ISO dates sort correctly lexicographically, so the maximum observed
	// date is the latest reporting date.
	if latestDate != "" {
		record.BalanceSheetDate = latestDate
	} else if fallbackDate != "" {
		record.BalanceSheetDate = fallbackDate
	}

	deriveMetrics(record)
	return record
}

// normalizeTagKey reduces a tag or concept name to a comparable key: strip
// the namespace prefix, lowercase, drop hyphens and underscores. Filers use
// inconsistent prefixing and casing for economically identical concepts.
func normalizeTagKey(name string) string {
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	return name
}

// deriveMetrics computes margins and the EBITDA estimate. Ratios are only
// meaningful against strictly positive revenue; absence of revenue (or zero
// or negative revenue) skips derivation entirely.
func deriveMetrics(record *models.Record) {
	revenue, ok := record.Get(models.FieldRevenue)
	if !ok || revenue <= 0 {
		return
	}

	if op, ok := record.Get(models.FieldOperatingProfit); ok {
		record.Set(models.FieldOperatingMarginPct, round2(op/revenue*100))
	}

	ebitda := valueOrZero(record, models.FieldOperatingProfit) +
		valueOrZero(record, models.FieldDepreciation) +
		valueOrZero(record, models.FieldAmortisation)
	if ebitda != 0 {
		record.Set(models.FieldEBITDAEstimate, ebitda)
		record.Set(models.FieldEBITDAMarginPct, round2(ebitda/revenue*100))
	}
}

func valueOrZero(record *models.Record, field string) float64 {
	v, _ := record.Get(field)
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
