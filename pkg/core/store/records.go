package store

import (
	"context"
	"encoding/json"
	"fmt"

	"accounts_parser/pkg/core/report"
)

// SaveRecord upserts one delivery record, keyed by company number and filed
// date so re-parsing the same filing replaces the previous row.
func SaveRecord(ctx context.Context, rec *report.FlatRecord) error {
	if pool == nil {
		return fmt.Errorf("record store not initialized")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO company_financials (company_number, filed_date, balance_sheet_date, record, produced_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, now())
		ON CONFLICT (company_number, filed_date)
		DO UPDATE SET balance_sheet_date = EXCLUDED.balance_sheet_date,
		              record = EXCLUDED.record,
		              produced_at = EXCLUDED.produced_at`,
		rec.CompanyNumber, rec.FiledDate, rec.BalanceSheetDate, payload)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}
