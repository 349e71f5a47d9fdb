package admin

import "time"

// Overview is the fleet-wide snapshot shown on the supervision dashboard.
type Overview struct {
	TotalUsers      int     `json:"total_users"`
	ActiveUsers     int     `json:"active_users"`
	MovementsToday  int     `json:"movements_today"`
	DistanceTodayKm float64 `json:"distance_today_km"`
	FlaggedReports  int     `json:"flagged_reports"`
}

// DailyStat aggregates one user's accepted movements for a single day.
type DailyStat struct {
	Day        time.Time `json:"day"`
	Count      int       `json:"count"`
	DistanceKm float64   `json:"distance_km"`
}

// RegionStat ranks a region label by accepted movement volume.
type RegionStat struct {
	Region     string  `json:"region"`
	Count      int     `json:"count"`
	DistanceKm float64 `json:"distance_km"`
}
