package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/purchase-request-api/pkg/errors"
	"github.com/noah-isme/purchase-request-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(data export.Dataset) ([]byte, error) {
	return nil, errors.New("disk full")
}

func (failingRenderer) ContentType() string {
	return "text/csv"
}

func (failingRenderer) Extension() string {
	return "csv"
}

func TestExportServiceCSV(t *testing.T) {
	f := newRequestFixture(t)
	svc := NewExportService(f.svc, f.notifier, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), 4, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "purchase-request-pr-004.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	rows, err := csv.NewReader(strings.NewReader(string(file.Data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"4", "Air Filter", "8", "pcs", "FilterPro Ltd.", "35.00", "280.00",
		"Completed", "Normal", "Scheduled maintenance for fleet", "2024-02-01"}, rows[1])
	assert.Equal(t, []string{`Export Successful: Purchase request data for "Air Filter" has been exported successfully.`}, f.notifier.successes)
}

func TestExportServicePDF(t *testing.T) {
	f := newRequestFixture(t)
	svc := NewExportService(f.svc, nil, nil, nil, nil)

	file, err := svc.Export(context.Background(), 4, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceRules(t *testing.T) {
	f := newRequestFixture(t)
	svc := NewExportService(f.svc, f.notifier, nil, failingRenderer{}, nil)
	ctx := context.Background()

	_, err := svc.Export(ctx, 1, ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrTransitionNotAllowed))

	_, err = svc.Export(ctx, 4, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Export(ctx, 4, ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, []string{"Export Failed: Failed to export the purchase request data."}, f.notifier.errors)
}
