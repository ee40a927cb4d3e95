package export

import (
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
)

func encodeGPX(a *models.Activity) ([]byte, error) {
	points := make([]gpx.GPXPoint, 0, len(a.Path))
	for _, p := range a.Path {
		points = append(points, gpx.GPXPoint{
			Point:     gpx.Point{Latitude: p.Lat, Longitude: p.Lng},
			Timestamp: p.Time().UTC(),
		})
	}

	name := a.Name
	if name == "" {
		name = "Ride"
	}

	doc := &gpx.GPX{
		Version:     "1.1",
		Creator:     creator,
		Name:        name,
		Description: a.Notes,
		Tracks: []gpx.GPXTrack{{
			Name:     name,
			Segments: []gpx.GPXTrackSegment{{Points: points}},
		}},
	}

	return doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
}
