package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/report"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/storage"
)

var ErrReportNotFound = errors.New("report not found")

const archivePrefix = "settlements/"

type reportService struct {
	bookingRepo repository.BookingRepository
	store       storage.FileStorage
}

func NewReportService(bookingRepo repository.BookingRepository, store storage.FileStorage) ReportService {
	return &reportService{bookingRepo: bookingRepo, store: store}
}

func (s *reportService) WriteSettlementReport(ctx context.Context, w io.Writer, from, to time.Time) (report.Totals, error) {
	if !to.After(from) {
		return report.Totals{}, fmt.Errorf("report range: %s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	bookings, err := s.bookingRepo.ListSettled(ctx, from, to)
	if err != nil {
		return report.Totals{}, err
	}
	return report.Build(w, from, to, bookings)
}

// MonthRange returns the first instant of the UTC month containing t and of the
// month after it.
func MonthRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// ArchiveKey names the stored report for a month, e.g. settlements/2026-03.xlsx.
func ArchiveKey(month time.Time) string {
	return archivePrefix + month.UTC().Format("2006-01") + ".xlsx"
}

func (s *reportService) ArchiveMonth(ctx context.Context, month time.Time) (string, error) {
	from, to := MonthRange(month)
	var buf bytes.Buffer
	totals, err := s.WriteSettlementReport(ctx, &buf, from, to)
	if err != nil {
		return "", err
	}
	key := ArchiveKey(from)
	if err := s.store.SaveFile(ctx, key, &buf); err != nil {
		return "", fmt.Errorf("failed to archive report: %w", err)
	}
	logger.Info("Settlement report archived", "key", key, "bookings", totals.Bookings,
		"adjusted", totals.AdjustedPrice.String(), "platformFees", totals.PlatformFees.String())
	return key, nil
}

func (s *reportService) OpenArchived(ctx context.Context, key string) (io.ReadCloser, error) {
	if !strings.HasPrefix(key, archivePrefix) {
		key = archivePrefix + key
	}
	exists, _, err := s.store.FileExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, key)
	}
	return s.store.ReadFile(ctx, key)
}

func (s *reportService) ListArchived(ctx context.Context) ([]string, error) {
	return s.store.List(ctx, archivePrefix)
}
