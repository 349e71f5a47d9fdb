package movement

import "time"

type Coordinate struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Address   string    `json:"address,omitempty"`
}

// Submission is a raw trip report as sent by the mobile client. It is never
// persisted as-is; only the validation pipeline turns it into a Record.
type Submission struct {
	Start             Coordinate   `json:"start"`
	End               Coordinate   `json:"end"`
	ClaimedDistanceKm float64      `json:"claimed_distance_km"`
	AvgSpeedKmh       float64      `json:"avg_speed_kmh"`
	MaxSpeedKmh       float64      `json:"max_speed_kmh"`
	DurationMinutes   float64      `json:"duration_minutes"`
	Date              time.Time    `json:"date"`
	RegionLabel       string       `json:"region_label"`
	Waypoints         []Coordinate `json:"waypoints,omitempty"`
}

// Record is an accepted, enriched movement. Immutable after creation except
// for the soft-delete fields.
type Record struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Submission
	GeodesicDistanceKm    float64    `json:"geodesic_distance_km"`
	DistanceDiscrepancyKm float64    `json:"distance_discrepancy_km"`
	EfficiencyKmPerHour   float64    `json:"efficiency_km_per_hour"`
	DroppedWaypoints      int        `json:"dropped_waypoints"`
	Deleted               bool       `json:"deleted,omitempty"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
	DeletedBy             string     `json:"deleted_by,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// Acceptance is the response payload for an accepted submission.
type Acceptance struct {
	Movement   Record `json:"movement"`
	TodayCount int    `json:"today_count"`
	Remaining  int    `json:"remaining"`
}

type QuotaStatus struct {
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
	Allowed bool `json:"allowed"`
}

// Policy holds the tunable constants of the pipeline. It is built once at
// startup from the process config and passed in at construction, so tests
// can run the pipeline under varied policies.
type Policy struct {
	DailyLimit   int
	ToleranceKm  float64
	StrictBounds bool
	MinLat       float64
	MaxLat       float64
	MinLng       float64
	MaxLng       float64
	Location     *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		DailyLimit:  50,
		ToleranceKm: 0.5,
		MinLat:      -90,
		MaxLat:      90,
		MinLng:      -180,
		MaxLng:      180,
		Location:    time.UTC,
	}
}
