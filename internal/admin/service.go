package admin

import (
	"context"
	"time"

	"backend-sstrack/internal/db"
)

type Service struct {
	db          db.Querier
	toleranceKm float64
	loc         *time.Location
}

func NewService(db db.Querier, toleranceKm float64, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, toleranceKm: toleranceKm, loc: loc}
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var out Overview

	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active)
		FROM users
	`)
	if err := row.Scan(&out.TotalUsers, &out.ActiveUsers); err != nil {
		return Overview{}, err
	}

	now := time.Now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.Add(24 * time.Hour)

	row = s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(claimed_distance_km), 0)
		FROM movements
		WHERE created_at >= $1 AND created_at < $2 AND NOT deleted
	`, start, end)
	if err := row.Scan(&out.MovementsToday, &out.DistanceTodayKm); err != nil {
		return Overview{}, err
	}

	row = s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM movements
		WHERE distance_discrepancy_km > $1 AND NOT deleted
	`, s.toleranceKm)
	if err := row.Scan(&out.FlaggedReports); err != nil {
		return Overview{}, err
	}

	return out, nil
}

func (s *Service) UserDaily(ctx context.Context, userID string, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 7
	}

	now := time.Now().In(s.loc)
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -(days - 1))

	rows, err := s.db.Query(ctx, `
		SELECT date_trunc('day', created_at AT TIME ZONE $3) AS day,
		       COUNT(*),
		       COALESCE(SUM(claimed_distance_km), 0)
		FROM movements
		WHERE owner_id = $1 AND created_at >= $2 AND NOT deleted
		GROUP BY day
		ORDER BY day DESC
	`, userID, since, s.loc.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var st DailyStat
		if err := rows.Scan(&st.Day, &st.Count, &st.DistanceKm); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Service) TopRegions(ctx context.Context, limit int) ([]RegionStat, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := s.db.Query(ctx, `
		SELECT region_label, COUNT(*), COALESCE(SUM(claimed_distance_km), 0)
		FROM movements
		WHERE NOT deleted
		GROUP BY region_label
		ORDER BY COUNT(*) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []RegionStat
	for rows.Next() {
		var st RegionStat
		if err := rows.Scan(&st.Region, &st.Count, &st.DistanceKm); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
