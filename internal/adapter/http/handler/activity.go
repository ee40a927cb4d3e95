package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/activity"
	"github.com/Temutjin2k/govv-tracker/pkg/hasher"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

type ActivityService interface {
	Create(ctx context.Context, a *models.Activity) (*models.Activity, error)
	Get(ctx context.Context, id string) (*models.Activity, error)
	List(ctx context.Context, limit, offset int) ([]models.Activity, error)
	Standing(ctx context.Context) (*models.Standing, error)
	Export(ctx context.Context, id string, format types.ExportFormat) (*models.ExportFile, error)
}

type Activity struct {
	service ActivityService
	l       logger.Logger
}

func NewActivity(service ActivityService, l logger.Logger) *Activity {
	return &Activity{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Store an activity
// @Description  Stores a completed ride. Distance and average speed are recomputed from the path.
// @Tags         Activities
// @Accept       json
// @Produce      json
// @Param        activity  body      dto.CreateActivityRequest  true  "activity record"
// @Success      201       {object}  dto.ActivityCreatedResponse
// @Failure      400       {object}  map[string]any
// @Failure      422       {object}  map[string]any
// @Router       /api/activities [post]
func (h *Activity) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_activity")

	var req dto.CreateActivityRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
		badRequestResponse(w, err.Error())
		return
	}

	created, err := h.service.Create(ctx, req.ToModel())
	if err != nil {
		var verr *activity.ValidationError
		if errors.As(err, &verr) {
			h.l.Warn(ctx, "invalid activity", "fields", verr.Fields)
			failedValidationResponse(w, verr.Fields)
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create activity", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"id":            created.ID,
		"points_earned": created.PointsEarned,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// List godoc
// @Summary      List activities
// @Description  Most recent first
// @Tags         Activities
// @Produce      json
// @Param        limit   query     int  false  "page size (default 20, max 200)"
// @Param        offset  query     int  false  "offset"
// @Success      200     {object}  map[string]any
// @Router       /api/activities [get]
func (h *Activity) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_activities")

	limit, err := readIntQuery(r, "limit", activity.DefaultListLimit)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	offset, err := readIntQuery(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}
	if offset < 0 {
		failedValidationResponse(w, map[string]string{"offset": "must not be negative"})
		return
	}

	items, err := h.service.List(ctx, limit, offset)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list activities", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if items == nil {
		items = []models.Activity{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": envelope{"items": items}}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Get godoc
// @Summary      Get an activity
// @Tags         Activities
// @Produce      json
// @Param        id   path      string  true  "activity id"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/activities/{id} [get]
func (h *Activity) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "get_activity", ActivityID: id})

	a, err := h.service.Get(ctx, id)
	if err != nil {
		if GetCode(err) == http.StatusNotFound {
			errorResponse(w, http.StatusNotFound, "activity not found")
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get activity", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": envelope{"activity": a}}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Export godoc
// @Summary      Download an activity
// @Description  Encodes the ride as GPX, FIT or CSV. Honours If-None-Match.
// @Tags         Activities
// @Produce      application/gpx+xml,application/vnd.ant.fit,text/csv
// @Param        id      path   string  true   "activity id"
// @Param        format  query  string  false  "gpx, fit or csv (default gpx)"
// @Success      200
// @Success      304
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/activities/{id}/export [get]
func (h *Activity) Export(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: types.ActionActivityExported, ActivityID: id})

	format := types.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = types.FormatGPX
	}

	file, err := h.service.Export(ctx, id, format)
	if err != nil {
		if code := GetCode(err); code < http.StatusInternalServerError {
			errorResponse(w, code, err.Error())
			return
		}
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to export activity", err)
		internalErrorResponse(w, "failed to export activity")
		return
	}

	etag := hasher.ETag(file.Data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=0, must-revalidate")

	if hasher.MatchETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.l.Warn(ctx, "failed to write export", "error", err.Error())
	}
}

// Standing godoc
// @Summary      Rider standing
// @Description  Totals, level progress, streak and badges derived from the full history
// @Tags         Standing
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/standing [get]
func (h *Activity) Standing(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_standing")

	st, err := h.service.Standing(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to compute standing", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	if st.Badges == nil {
		st.Badges = []models.Badge{}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": envelope{"standing": st}}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
