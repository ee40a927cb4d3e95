package export

import (
	"bytes"
	"time"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/pkg/geo"
)

// degrees to FIT semicircles
const degreesToSemicircles = 2147483648.0 / 180.0

func encodeFIT(a *models.Activity) ([]byte, error) {
	start := a.StartedAt()
	if start.IsZero() && len(a.Path) > 0 {
		start = a.Path[0].Time().UTC()
	}
	end := start.Add(time.Duration(a.DurationSec) * time.Second)

	fit := proto.FIT{}

	fileID := mesgdef.FileId{
		Type:         typedef.FileActivity,
		Manufacturer: typedef.ManufacturerDevelopment,
		TimeCreated:  start,
	}
	fit.Messages = append(fit.Messages, fileID.ToMesg(nil))

	var cumKm float64
	for i, p := range a.Path {
		if i > 0 {
			prev := a.Path[i-1]
			cumKm += geo.Distance(prev.Lat, prev.Lng, p.Lat, p.Lng)
		}
		rec := mesgdef.Record{
			Timestamp:    p.Time().UTC(),
			PositionLat:  int32(p.Lat * degreesToSemicircles),
			PositionLong: int32(p.Lng * degreesToSemicircles),
			Distance:     uint32(cumKm * 1000 * 100), // cm
		}
		fit.Messages = append(fit.Messages, rec.ToMesg(nil))
		if t := p.Time().UTC(); t.After(end) {
			end = t
		}
	}

	elapsedMs := uint32(a.DurationSec * 1000)
	totalCm := uint32(a.DistanceKm * 1000 * 100)
	avgMmps := uint32(a.AvgKmh / 3.6 * 1000)

	event := mesgdef.Event{
		Timestamp: end,
		Event:     typedef.EventTimer,
		EventType: typedef.EventTypeStopAll,
	}
	fit.Messages = append(fit.Messages, event.ToMesg(nil))

	lap := mesgdef.Lap{
		Timestamp:        end,
		StartTime:        start,
		TotalElapsedTime: elapsedMs,
		TotalTimerTime:   elapsedMs,
		TotalDistance:    totalCm,
		EnhancedAvgSpeed: avgMmps,
		Event:            typedef.EventLap,
		EventType:        typedef.EventTypeStop,
	}
	fit.Messages = append(fit.Messages, lap.ToMesg(nil))

	session := mesgdef.Session{
		Timestamp:        end,
		StartTime:        start,
		TotalElapsedTime: elapsedMs,
		TotalTimerTime:   elapsedMs,
		TotalDistance:    totalCm,
		EnhancedAvgSpeed: avgMmps,
		Sport:            typedef.SportCycling,
		Event:            typedef.EventSession,
		EventType:        typedef.EventTypeStop,
		Trigger:          typedef.SessionTriggerActivityEnd,
	}
	fit.Messages = append(fit.Messages, session.ToMesg(nil))

	var buf bytes.Buffer
	if err := encoder.New(&buf).Encode(&fit); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
