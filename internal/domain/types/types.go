package types

type ServiceMode string

// Tracker - HTTP API driving ride sessions and serving activities
// Standing worker - consumes activity events and keeps the rider standing cache warm
const (
	TrackerService        ServiceMode = "tracker"
	StandingWorkerService ServiceMode = "standing-worker"
)

// SessionState is the ride session lifecycle: Idle -> Recording <-> Paused -> Stopped.
type SessionState string

func (s SessionState) String() string {
	return string(s)
}

const (
	StateIdle      SessionState = "idle"
	StateRecording SessionState = "recording"
	StatePaused    SessionState = "paused"
	StateStopped   SessionState = "stopped"
)

// SourceKind selects where a session gets its position samples.
type SourceKind string

func (k SourceKind) String() string {
	return string(k)
}

const (
	SourceSimulated SourceKind = "simulated"
	SourceLive      SourceKind = "live"
)

func (k SourceKind) Valid() bool {
	return k == SourceSimulated || k == SourceLive
}

// RewardPolicy picks the points/level formulas.
type RewardPolicy string

const (
	// PolicyFlat: floor(km*5) points, level max(1, points/100+1)
	PolicyFlat RewardPolicy = "flat"
	// PolicyBonus: floor(km*10) + (km >= 5 ? 50 : 10) points, level points/1000+1
	PolicyBonus RewardPolicy = "bonus"
)

func (p RewardPolicy) Valid() bool {
	return p == PolicyFlat || p == PolicyBonus
}

type StoreDriver string

const (
	StoreFile     StoreDriver = "file"
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

func (d StoreDriver) Valid() bool {
	switch d {
	case StoreFile, StoreSQLite, StorePostgres:
		return true
	}
	return false
}

type ExportFormat string

const (
	FormatGPX ExportFormat = "gpx"
	FormatFIT ExportFormat = "fit"
	FormatCSV ExportFormat = "csv"
)

func (f ExportFormat) Valid() bool {
	switch f {
	case FormatGPX, FormatFIT, FormatCSV:
		return true
	}
	return false
}

// AnonymousRider is the rider id used when a request carries no token.
const AnonymousRider = "demo"
