package movement

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"backend-sstrack/internal/geo"
)

const maxSubmissionAge = 7 * 24 * time.Hour

func (p Policy) validCoordinate(c Coordinate) bool {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return false
	}
	if p.StrictBounds {
		if c.Lat < p.MinLat || c.Lat > p.MaxLat || c.Lng < p.MinLng || c.Lng > p.MaxLng {
			return false
		}
	}
	return true
}

// Validate checks every rule independently and reports all violations keyed
// by field name. An empty map means the submission is well formed.
func Validate(p Policy, sub Submission, now time.Time) map[string]string {
	problems := map[string]string{}

	if !p.validCoordinate(sub.Start) {
		problems["start"] = "latitude must be within [-90,90] and longitude within [-180,180]"
	}
	if !p.validCoordinate(sub.End) {
		problems["end"] = "latitude must be within [-90,90] and longitude within [-180,180]"
	}
	if sub.ClaimedDistanceKm <= 0 || sub.ClaimedDistanceKm > 1000 {
		problems["claimed_distance_km"] = "must be greater than 0 and at most 1000"
	}
	if sub.AvgSpeedKmh <= 0 || sub.AvgSpeedKmh > 200 {
		problems["avg_speed_kmh"] = "must be greater than 0 and at most 200"
	}
	if sub.MaxSpeedKmh <= 0 || sub.MaxSpeedKmh > 300 {
		problems["max_speed_kmh"] = "must be greater than 0 and at most 300"
	} else if sub.MaxSpeedKmh < sub.AvgSpeedKmh {
		problems["max_speed_kmh"] = "must be greater than or equal to avg_speed_kmh"
	}
	if sub.DurationMinutes <= 0 || sub.DurationMinutes > 1440 {
		problems["duration_minutes"] = "must be greater than 0 and at most 1440"
	}
	if sub.Date.IsZero() {
		problems["date"] = "required"
	} else if sub.Date.After(now) {
		problems["date"] = "must not be in the future"
	} else if now.Sub(sub.Date) > maxSubmissionAge {
		problems["date"] = "must not be more than 7 days in the past"
	}
	// rune count, not bytes: accented labels must not over-count
	if l := utf8.RuneCountInString(strings.TrimSpace(sub.RegionLabel)); l < 2 || l > 50 {
		problems["region_label"] = "trimmed length must be between 2 and 50"
	}

	return problems
}

// FilterWaypoints drops coordinates that fail the same rule applied to start
// and end points. Order is preserved and the loss is reported explicitly.
func FilterWaypoints(p Policy, points []Coordinate) ([]Coordinate, int) {
	var kept []Coordinate
	dropped := 0
	for _, pt := range points {
		if p.validCoordinate(pt) {
			kept = append(kept, pt)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// Enrich derives the read-only metrics of an accepted submission. Pure and
// idempotent: the same inputs always yield the same derived fields. The
// geodesic distance is always recomputed here, never taken from the caller.
func Enrich(sub Submission) Record {
	r := Record{Submission: sub}
	r.ClaimedDistanceKm = geo.Round2(sub.ClaimedDistanceKm)
	r.AvgSpeedKmh = geo.Round1(sub.AvgSpeedKmh)
	r.MaxSpeedKmh = geo.Round1(sub.MaxSpeedKmh)
	r.GeodesicDistanceKm = geo.DistanceKm(sub.Start.Lat, sub.Start.Lng, sub.End.Lat, sub.End.Lng)
	r.DistanceDiscrepancyKm = geo.Round2(math.Abs(r.ClaimedDistanceKm - r.GeodesicDistanceKm))
	if sub.AvgSpeedKmh > 0 && sub.DurationMinutes > 0 {
		r.EfficiencyKmPerHour = geo.Round2(r.ClaimedDistanceKm / (sub.DurationMinutes / 60))
	}
	return r
}
