package excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"garment-erp/internal/lib/api/request"
	"garment-erp/internal/lib/api/response"
	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

type ReportExporter interface {
	PICReport(ctx context.Context, filter storage.LotFilter) ([]byte, error)
}

// Download streams the PIC report as an xlsx file.
func Download(log *slog.Logger, exporter ReportExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.excel.Download"

		filter, err := request.LotFilter(r)
		if err != nil {
			response.FromError(log, w, r, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pipeline.ReportTimeout)
		defer cancel()

		data, err := exporter.PICReport(ctx, filter)
		if err != nil {
			log.Error("failed to generate excel", slog.String("op", op), slog.String("error", err.Error()))
			response.Error(w, r, http.StatusInternalServerError, "internal server error")
			return
		}

		response.XLSX(w, fmt.Sprintf("PIC_Report_%s.xlsx", time.Now().Format("2006-01-02_150405")), data)
	}
}
