package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
)

type fakeActivities struct {
	file      *models.ExportFile
	exportErr error
	formats   []types.ExportFormat
}

func (f *fakeActivities) Create(context.Context, *models.Activity) (*models.Activity, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeActivities) Get(context.Context, string) (*models.Activity, error) {
	return nil, types.ErrActivityNotFound
}

func (f *fakeActivities) List(context.Context, int, int) ([]models.Activity, error) {
	return nil, nil
}

func (f *fakeActivities) Standing(context.Context) (*models.Standing, error) {
	return &models.Standing{Level: 1, NextLevelAt: 1000}, nil
}

func (f *fakeActivities) Export(_ context.Context, _ string, format types.ExportFormat) (*models.ExportFile, error) {
	f.formats = append(f.formats, format)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return f.file, nil
}

func newActivityHandler(svc ActivityService) (*Activity, *http.ServeMux) {
	h := NewActivity(svc, logger.New(io.Discard, "test", logger.LevelError))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/activities", h.List)
	mux.HandleFunc("GET /api/activities/{id}", h.Get)
	mux.HandleFunc("GET /api/activities/{id}/export", h.Export)
	mux.HandleFunc("GET /api/standing", h.Standing)
	return h, mux
}

func TestExportDefaultsToGPXAndHonoursETag(t *testing.T) {
	svc := &fakeActivities{file: &models.ExportFile{
		Name:        "activity-a1.gpx",
		ContentType: "application/gpx+xml",
		Data:        []byte("<gpx/>"),
	}}
	_, mux := newActivityHandler(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/a1/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.formats[0] != types.FormatGPX {
		t.Fatalf("format = %q, want gpx", svc.formats[0])
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="activity-a1.gpx"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != "<gpx/>" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/activities/a1/export", nil)
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("conditional: status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unsupported", fmt.Errorf("export: %w", types.ErrUnsupportedFormat), http.StatusBadRequest},
		{"missing", fmt.Errorf("export: %w", types.ErrActivityNotFound), http.StatusNotFound},
		{"encoder", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mux := newActivityHandler(&fakeActivities{exportErr: tt.err})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activities/x/export?format=fit", nil))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListQueryValidation(t *testing.T) {
	_, mux := newActivityHandler(&fakeActivities{})

	for target, want := range map[string]int{
		"/api/activities":           http.StatusOK,
		"/api/activities?limit=abc": http.StatusBadRequest,
		"/api/activities?offset=-1": http.StatusUnprocessableEntity,
		"/api/activities/nope":      http.StatusNotFound,
		"/api/standing":             http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != want {
			t.Errorf("%s: status %d, want %d", target, rec.Code, want)
		}
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{types.ErrInvalidToken, http.StatusUnauthorized},
		{types.ErrSessionForbidden, http.StatusForbidden},
		{types.ErrSessionNotFound, http.StatusNotFound},
		{types.ErrNonMonotonicSample, http.StatusConflict},
		{types.ErrInvalidCoordinates, http.StatusUnprocessableEntity},
		{fmt.Errorf("persist: %w: %w", types.ErrPersistFailed, errors.New("disk full")), http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetCode(tt.err); got != tt.want {
			t.Errorf("GetCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
