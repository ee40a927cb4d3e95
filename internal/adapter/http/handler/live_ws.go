package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/govv-tracker/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
	ws "github.com/Temutjin2k/govv-tracker/pkg/wshub"
)

const pingInterval = 30 * time.Second

type Live struct {
	sessions    SessionManager
	hub         *ws.ConnectionHub
	serviceName string
	upgrader    websocket.Upgrader
	l           logger.Logger
}

func NewLive(sessions SessionManager, hub *ws.ConnectionHub, serviceName string, l logger.Logger) *Live {
	return &Live{
		sessions:    sessions,
		hub:         hub,
		serviceName: serviceName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

type liveError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandleWS godoc
// @Summary      Live session stream
// @Description  Websocket of sample and state messages for a session. Live sessions also
// @Description  accept {"lat","lng","t"} position frames from the rider's device.
// @Tags         Sessions
// @Param        id   path  string  true  "session id"
// @Router       /ws/sessions/{id} [get]
func (h *Live) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := wrap.WithLogCtx(r.Context(), wrap.LogCtx{Action: "live_ws", SessionID: id})

	s, err := h.sessions.Get(ctx, id)
	if err != nil {
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warn(ctx, "websocket upgrade failed", "error", err.Error())
		return
	}

	// the request context ends with the handler; the connection outlives the upgrade call
	conn := ws.NewConn(context.WithoutCancel(ctx), id, raw)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(ctx, "failed to register websocket", err)
		_ = conn.Close()
		return
	}
	metrics.LiveViewersGauge.WithLabelValues(h.serviceName).Inc()
	defer func() {
		_ = h.hub.Delete(conn)
		metrics.LiveViewersGauge.WithLabelValues(h.serviceName).Dec()
		h.l.Debug(ctx, "live viewer disconnected")
	}()

	snap := s.Snapshot()
	if err := conn.Send(models.LiveStateMessage{Type: "state", SessionID: id, State: snap.State.String()}); err != nil {
		return
	}

	go conn.KeepAlive(pingInterval)

	h.l.Debug(ctx, "live viewer connected", "conn_id", conn.ID().String())

	err = conn.Listen(func(data []byte) error {
		if perr := h.push(ctx, id, data); perr != nil {
			return conn.Send(liveError{Type: "error", Error: perr.Error()})
		}
		return nil
	})
	if err != nil && !errors.Is(err, ws.ErrConnClosed) {
		h.l.Debug(ctx, "live connection ended", "reason", err.Error())
	}
}

func (h *Live) push(ctx context.Context, id string, data []byte) error {
	var req dto.SampleRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return errors.New("frame must be a JSON position")
	}

	v := validator.New()
	req.Validate(v)
	if !v.Valid() {
		return types.ErrInvalidCoordinates
	}

	return h.sessions.Push(ctx, id, req.ToModel(models.UnixSeconds(time.Now())))
}
