package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/purchase-request-api/internal/models"
	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
	"github.com/noah-isme/purchase-request-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

var exportHeaders = []string{
	"ID", "Item Name", "Quantity", "Unit Measure", "Vendor", "Unit Price",
	"Total Amount", "Request Status", "Request Type", "Request Purpose", "Export Date",
}

// ExportService renders completed requests as CSV or PDF.
type ExportService struct {
	requests  requestGetter
	renderers map[ExportFormat]renderer
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. nil renderers fall back to the defaults.
func NewExportService(requests requestGetter, notifier Notifier, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		requests:  requests,
		renderers: map[ExportFormat]renderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		notifier:  notifier,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Export renders one completed request.
func (s *ExportService) Export(ctx context.Context, id int64, format ExportFormat) (*ExportFile, error) {
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	record, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Allows(record.Status, models.ActionExport) {
		return nil, transitionNotAllowed(*record, models.ActionExport)
	}

	data, err := r.Render(s.dataset(*record))
	if err != nil {
		s.logger.Error("render export", zap.Int64("request_id", id), zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error(ctx, "Failed to export the purchase request data.", "Export Failed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export purchase request")
	}
	if s.notifier != nil {
		s.notifier.Success(ctx, fmt.Sprintf("Purchase request data for %q has been exported successfully.", record.ItemName), "Export Successful")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("purchase-request-%s.%s", strings.ToLower(record.Reference()), r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) dataset(r models.PurchaseRequest) export.Dataset {
	return export.Dataset{
		Title:   "Purchase Request " + r.Reference(),
		Headers: exportHeaders,
		Rows: [][]string{{
			strconv.FormatInt(r.ID, 10),
			r.ItemName,
			strconv.Itoa(r.Quantity),
			r.UnitMeasure,
			r.Vendor,
			r.UnitPrice.StringFixed(2),
			r.Total().StringFixed(2),
			r.Status.Label(),
			r.RequestType.Label(),
			r.Purpose,
			s.now().Format("2006-01-02"),
		}},
	}
}
