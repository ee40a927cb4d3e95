package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
)

// encodeCSV writes one lat,lon,ts row per sample; ts is unix seconds.
func encodeCSV(a *models.Activity) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"lat", "lon", "ts"}); err != nil {
		return nil, err
	}
	for _, p := range a.Path {
		row := []string{
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lng, 'f', -1, 64),
			strconv.FormatFloat(p.T, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
