package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/service"
)

// AdminHandler serves the admin dashboard figures and the report export.
type AdminHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(reports *service.ReportService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{reports: reports, logger: logger}
}

// HandleStats returns the dashboard summary.
//
// HTTP: GET /api/admin/stats
// Auth: Admin
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Stats())
}

// HandleReport downloads the JSON report.
//
// HTTP: GET /api/admin/report?timeFilter=30d
// Auth: Admin
//
// The body is indented JSON and Content-Disposition makes the browser save
// it as civic-sync-report-YYYY-MM-DD.json instead of displaying it.
func (h *AdminHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Report(r.URL.Query().Get("timeFilter"))
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		h.logger.Error("encoding report", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	filename := service.ReportFilename(report.GeneratedAt)
	h.logger.Info("report exported",
		slog.String("file", filename),
		slog.String("timeFilter", report.TimeFilter),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
