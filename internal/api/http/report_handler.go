package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parseDay accepts either a date or an RFC 3339 timestamp.
func parseDay(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", errBadRequest, v)
	}
	return t, nil
}

// reportRange reads from/to, defaulting to the current month.
func reportRange(r *http.Request) (time.Time, time.Time, error) {
	from, to := service.MonthRange(time.Now())
	q := r.URL.Query()
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = parseDay(v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = parseDay(v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be after from", errBadRequest)
	}
	return from, to, nil
}

func (h *Handler) SettlementReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// buffered so a failure can still produce a JSON error
	var buf bytes.Buffer
	totals, err := h.reports.WriteSettlementReport(r.Context(), &buf, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("settlements_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("X-Report-Bookings", strconv.Itoa(totals.Bookings))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Report download interrupted", "error", err)
	}
}

func (h *Handler) ListArchivedReports(w http.ResponseWriter, r *http.Request) {
	keys, err := h.reports.ListArchived(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, path.Base(k))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": names})
}

func (h *Handler) DownloadArchivedReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	rc, err := h.reports.OpenArchived(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("Report download interrupted", "name", name, "error", err)
	}
}
