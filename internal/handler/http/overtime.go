package http

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-overtime-report/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/export"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/validator"
)

type OvertimeHandler interface {
	// GetReport handles GET /reports/overtime
	GetReport(w http.ResponseWriter, r *http.Request)

	// ExportReport handles GET /reports/overtime/export
	ExportReport(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	reportService overtime.ReportService
	timeout       time.Duration
}

// NewOvertimeHandler bounds each report generation by timeout; zero disables the bound.
func NewOvertimeHandler(reportService overtime.ReportService, timeout time.Duration) OvertimeHandler {
	return &overtimeHandlerImpl{
		reportService: reportService,
		timeout:       timeout,
	}
}

func (h *overtimeHandlerImpl) generate(r *http.Request) (overtime.OvertimeReport, error) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.reportService.GenerateOvertimeReport(ctx, parseReportRequest(r))
}

func parseReportRequest(r *http.Request) overtime.OvertimeReportRequest {
	q := r.URL.Query()
	return overtime.OvertimeReportRequest{
		From:        strings.TrimSpace(q.Get("from")),
		To:          strings.TrimSpace(q.Get("to")),
		Mode:        q.Get("mode"),
		Company:     strings.TrimSpace(q.Get("company")),
		Department:  strings.TrimSpace(q.Get("department")),
		EmployeeIDs: validator.SplitList(q.Get("employee_ids")),
		Strict:      validator.IsTruthy(q.Get("strict")),
	}
}

// GetReport handles GET /reports/overtime
func (h *overtimeHandlerImpl) GetReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.generate(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportReport handles GET /reports/overtime/export
func (h *overtimeHandlerImpl) ExportReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.generate(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, result); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render overtime report", "report_id", result.ReportID, "error", err)
		response.InternalServerError(w, "Failed to render report")
		return
	}

	response.File(w, export.ContentType, export.FileName(result), buf.Bytes())
}
