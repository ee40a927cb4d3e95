package models

// LiveSampleMessage is fanned out to live viewers of a session.
type LiveSampleMessage struct {
	Type       string   `json:"type"` // "sample"
	SessionID  string   `json:"session_id"`
	Position   Position `json:"position"`
	Samples    int      `json:"samples"`
	DistanceKm float64  `json:"distance_km"`
	AvgKmh     float64  `json:"avg_kmh"`
}

// LiveStateMessage tells viewers about a session state change.
type LiveStateMessage struct {
	Type      string `json:"type"` // "state"
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}
