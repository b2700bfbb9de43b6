package service

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/middleware"
	"github.com/mmynk/familyspend/internal/report"
)

// ExportPattern is the route ExportHandler is mounted at.
const ExportPattern = "GET /export/{file}"

// ExportHandler serves a month as an XLSX workbook at /export/YYYY-MM.xlsx.
// It expects the session attached by middleware.RequireAuthHTTP.
type ExportHandler struct {
	ledger *ledger.Ledger
}

// NewExportHandler creates an ExportHandler over the given ledger.
func NewExportHandler(l *ledger.Ledger) *ExportHandler {
	return &ExportHandler{ledger: l}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".xlsx")
	if !ok {
		http.NotFound(w, r)
		return
	}
	window, err := calendar.Parse(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := h.ledger.FetchMonth(r.Context(), middleware.GetSession(r.Context()), window)
	if err != nil {
		if errors.Is(err, ledger.ErrNoSession) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		slog.Error("Export failed", "month", window.String(), "error", err)
		http.Error(w, "failed to load month", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, data); err != nil {
		slog.Error("Export failed", "month", window.String(), "error", err)
		http.Error(w, "failed to render workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(data)))
	w.Write(buf.Bytes())
}
