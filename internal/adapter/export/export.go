// Package export encodes stored activities as GPX, FIT or CSV files.
package export

import (
	"fmt"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

const creator = "GoVV"

type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(a *models.Activity, format types.ExportFormat) (*models.ExportFile, error) {
	var (
		data        []byte
		contentType string
		err         error
	)

	switch format {
	case types.FormatGPX:
		data, err = encodeGPX(a)
		contentType = "application/gpx+xml"
	case types.FormatFIT:
		data, err = encodeFIT(a)
		contentType = "application/vnd.ant.fit"
	case types.FormatCSV:
		data, err = encodeCSV(a)
		contentType = "text/csv"
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return &models.ExportFile{
		Name:        fmt.Sprintf("activity-%s.%s", a.ID, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}
