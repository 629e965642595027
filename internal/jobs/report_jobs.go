package jobs

import (
	"context"
	"fmt"

	"bikerental-backend/internal/logger"
)

// ExportSettlementReport archives last month's settlement workbook.
func (jr *JobRunner) ExportSettlementReport() {
	jr.runWithRecovery("ExportSettlementReport", func(ctx context.Context) error {
		now := jr.now().UTC()
		lastMonth := now.AddDate(0, 0, -now.Day())
		key, err := jr.services.Report.ArchiveMonth(ctx, lastMonth)
		if err != nil {
			return fmt.Errorf("archive settlement report: %w", err)
		}
		logger.Info("Monthly settlement report exported", "key", key)
		return nil
	})
}
