package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/tracker"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
)

type SessionManager interface {
	Create(ctx context.Context, kind types.SourceKind, opts models.SessionOptions) *tracker.Session
	Get(ctx context.Context, id string) (*tracker.Session, error)
	Delete(ctx context.Context, id string) error
	Push(ctx context.Context, id string, p models.Position) error
}

type Session struct {
	sessions SessionManager
	l        logger.Logger
}

func NewSession(sessions SessionManager, l logger.Logger) *Session {
	return &Session{
		sessions: sessions,
		l:        l,
	}
}

// Create godoc
// @Summary      Create a ride session
// @Description  Creates an idle session fed by the simulated walk or by pushed live positions
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        session  body      dto.CreateSessionRequest  false  "session options"
// @Success      201      {object}  map[string]any
// @Failure      422      {object}  map[string]any
// @Router       /api/sessions [post]
func (h *Session) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionSessionCreated)

	var req dto.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			h.l.Warn(ctx, "failed to read request JSON data", "error", err.Error())
			badRequestResponse(w, err.Error())
			return
		}
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	s := h.sessions.Create(ctx, req.Source, req.Options())

	if err := writeJSON(w, http.StatusCreated, envelope{"session": s.Snapshot()}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Get godoc
// @Summary      Session snapshot
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/sessions/{id} [get]
func (h *Session) Get(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.lookup(w, r, "get_session")
	if !ok {
		return
	}
	h.respond(ctx, w, http.StatusOK, envelope{"session": s.Snapshot()})
}

// Start godoc
// @Summary      Start recording
// @Description  Valid from idle or stopped. Other states return applied=false.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  map[string]any
// @Router       /api/sessions/{id}/start [post]
func (h *Session) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, types.ActionSessionStarted, (*tracker.Session).Start)
}

// Pause godoc
// @Summary      Pause recording
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  map[string]any
// @Router       /api/sessions/{id}/pause [post]
func (h *Session) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, types.ActionSessionPaused, (*tracker.Session).Pause)
}

// Resume godoc
// @Summary      Resume recording
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  map[string]any
// @Router       /api/sessions/{id}/resume [post]
func (h *Session) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, types.ActionSessionResumed, (*tracker.Session).Resume)
}

func (h *Session) transition(w http.ResponseWriter, r *http.Request, action string, fn func(*tracker.Session, context.Context) bool) {
	s, ctx, ok := h.lookup(w, r, action)
	if !ok {
		return
	}
	applied := fn(s, ctx)
	h.respond(ctx, w, http.StatusOK, envelope{"applied": applied, "session": s.Snapshot()})
}

// Stop godoc
// @Summary      Stop the ride
// @Description  201 with the stored activity, 200 when there was nothing to record,
// @Description  503 when persisting failed (the record is kept and can be saved again).
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      200  {object}  map[string]any
// @Success      201  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /api/sessions/{id}/stop [post]
func (h *Session) Stop(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.lookup(w, r, types.ActionSessionStopped)
	if !ok {
		return
	}

	before := s.State()
	record, err := s.Stop(ctx)
	if err != nil {
		h.persistFailed(ctx, w, s, record, err)
		return
	}

	if record == nil {
		active := before == types.StateRecording || before == types.StatePaused
		h.respond(ctx, w, http.StatusOK, envelope{
			"applied":   active,
			"discarded": active,
			"session":   s.Snapshot(),
		})
		return
	}

	h.respond(ctx, w, http.StatusCreated, envelope{"activity": record, "session": s.Snapshot()})
}

// Save godoc
// @Summary      Retry persisting a stopped ride
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "session id"
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /api/sessions/{id}/save [post]
func (h *Session) Save(w http.ResponseWriter, r *http.Request) {
	s, ctx, ok := h.lookup(w, r, "save_session")
	if !ok {
		return
	}

	record, err := s.Save(ctx)
	if err != nil {
		if errors.Is(err, types.ErrNothingToSave) {
			errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		h.persistFailed(ctx, w, s, record, err)
		return
	}

	h.respond(ctx, w, http.StatusCreated, envelope{"activity": record, "session": s.Snapshot()})
}

func (h *Session) persistFailed(ctx context.Context, w http.ResponseWriter, s *tracker.Session, record *models.Activity, err error) {
	h.l.Error(wrap.ErrorCtx(ctx, err), "failed to persist activity", err)
	h.respond(ctx, w, GetCode(err), envelope{
		"error":    "failed to persist activity, retry with save",
		"activity": record,
		"session":  s.Snapshot(),
	})
}

// Push godoc
// @Summary      Push a live position
// @Description  Feeds a position into a live session that is recording
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id      path      string             true  "session id"
// @Param        sample  body      dto.SampleRequest  true  "position"
// @Success      202     {object}  map[string]any
// @Failure      409     {object}  map[string]any
// @Failure      422     {object}  map[string]any
// @Router       /api/sessions/{id}/samples [post]
func (h *Session) Push(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "push_sample", SessionID: id})

	var req dto.SampleRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.sessions.Push(ctx, id, req.ToModel(models.UnixSeconds(time.Now()))); err != nil {
		code := GetCode(err)
		if code >= http.StatusInternalServerError {
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to push sample", err)
		}
		errorResponse(w, code, err.Error())
		return
	}

	h.respond(ctx, w, http.StatusAccepted, envelope{"accepted": true})
}

// Delete godoc
// @Summary      Drop a session
// @Description  Stops its source. A stopped but unsaved ride is lost.
// @Tags         Sessions
// @Param        id   path  string  true  "session id"
// @Success      204
// @Failure      404  {object}  map[string]any
// @Router       /api/sessions/{id} [delete]
func (h *Session) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: types.ActionSessionDropped, SessionID: id})

	if err := h.sessions.Delete(ctx, id); err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Session) lookup(w http.ResponseWriter, r *http.Request, action string) (*tracker.Session, context.Context, bool) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: action, SessionID: id})

	s, err := h.sessions.Get(ctx, id)
	if err != nil {
		h.l.Warn(ctx, "session lookup failed", "error", err.Error())
		errorResponse(w, GetCode(err), err.Error())
		return nil, ctx, false
	}
	return s, ctx, true
}

func (h *Session) respond(ctx context.Context, w http.ResponseWriter, status int, env envelope) {
	if err := writeJSON(w, status, env, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
