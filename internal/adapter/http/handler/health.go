package handler

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	storeDriver string
	startedAt   time.Time
	log         logger.Logger
}

func NewHealth(serviceName, storeDriver string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		storeDriver: storeDriver,
		startedAt:   time.Now(),
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Liveness with the service name, the activity store driver and uptime
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /health [get]
// @Router       /api/health [get]
func (h *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name": h.serviceName,
			"store":        h.storeDriver,
			"uptime":       time.Since(h.startedAt).Truncate(time.Second).String(),
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.log.Error(wrap.ErrorCtx(ctx, err), "failed to write health response", err)
	}
}
