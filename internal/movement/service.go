package movement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"backend-sstrack/internal/db"
	"backend-sstrack/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db     db.Beginner
	hub    *stream.Hub
	policy Policy
}

func NewService(db db.Beginner, hub *stream.Hub, policy Policy) *Service {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Service{db: db, hub: hub, policy: policy}
}

// Submit runs the full pipeline: directory check, field validation, waypoint
// filtering, enrichment, quota claim, insert, feed broadcast. Any rejection
// is terminal for the submission; no record is created.
func (s *Service) Submit(ctx context.Context, ownerID string, sub Submission) (Acceptance, error) {
	var active bool
	if err := s.db.QueryRow(ctx, `SELECT active FROM users WHERE id=$1`, ownerID).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Acceptance{}, ErrOwnerNotFound
		}
		return Acceptance{}, err
	}
	if !active {
		return Acceptance{}, ErrOwnerInactive
	}

	if problems := Validate(s.policy, sub, time.Now()); len(problems) > 0 {
		return Acceptance{}, &ValidationError{Fields: problems}
	}

	kept, dropped := FilterWaypoints(s.policy, sub.Waypoints)
	sub.Waypoints = kept

	rec := Enrich(sub)
	rec.ID = uuid.NewString()
	rec.OwnerID = ownerID
	rec.DroppedWaypoints = dropped
	if rec.DistanceDiscrepancyKm > s.policy.ToleranceKm {
		log.Printf("movement discrepancy above tolerance: owner=%s claimed=%.2fkm geodesic=%.2fkm",
			ownerID, rec.ClaimedDistanceKm, rec.GeodesicDistanceKm)
	}

	// Quota claim and insert share one transaction: a failed insert must not
	// leave the day's slot consumed.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Acceptance{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	count, err := s.claimQuota(ctx, tx, ownerID, rec.Date)
	if err != nil {
		return Acceptance{}, err
	}

	waypoints, _ := json.Marshal(rec.Waypoints)
	row := tx.QueryRow(ctx, `
		INSERT INTO movements (
			id, owner_id,
			start_lat, start_lng, start_time, start_address,
			end_lat, end_lng, end_time, end_address,
			claimed_distance_km, avg_speed_kmh, max_speed_kmh, duration_minutes,
			date, region_label, waypoints, dropped_waypoints,
			geodesic_distance_km, distance_discrepancy_km, efficiency_km_per_hour
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING created_at
	`, rec.ID, rec.OwnerID,
		rec.Start.Lat, rec.Start.Lng, timePtr(rec.Start.Timestamp), rec.Start.Address,
		rec.End.Lat, rec.End.Lng, timePtr(rec.End.Timestamp), rec.End.Address,
		rec.ClaimedDistanceKm, rec.AvgSpeedKmh, rec.MaxSpeedKmh, rec.DurationMinutes,
		rec.Date, rec.RegionLabel, waypoints, rec.DroppedWaypoints,
		rec.GeodesicDistanceKm, rec.DistanceDiscrepancyKm, rec.EfficiencyKmPerHour)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return Acceptance{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Acceptance{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(rec)
		s.hub.Broadcast(ownerID, payload)
	}

	return Acceptance{Movement: rec, TodayCount: count, Remaining: s.policy.DailyLimit - count}, nil
}

// claimQuota increments the owner's counter for the record's day, refusing
// atomically once the ceiling is reached. Concurrent submissions cannot both
// slip under the limit the way a separate count-then-insert would allow.
func (s *Service) claimQuota(ctx context.Context, q db.Querier, ownerID string, asOf time.Time) (int, error) {
	day := dayStart(asOf, s.policy.Location)

	var count int
	err := q.QueryRow(ctx, `
		INSERT INTO movement_quota (owner_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (owner_id, day) DO UPDATE
		SET count = movement_quota.count + 1
		WHERE movement_quota.count < $3
		RETURNING count
	`, ownerID, day, s.policy.DailyLimit).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row back: the ceiling was hit. Read the current count for the error.
	status, qerr := s.quotaStatus(ctx, q, ownerID, asOf)
	if qerr != nil {
		return 0, qerr
	}
	return 0, &QuotaError{Count: status.Count, Limit: status.Limit}
}

// CheckQuota counts accepted, non-deleted records in the owner's calendar
// day (service time zone) containing asOf.
func (s *Service) CheckQuota(ctx context.Context, ownerID string, asOf time.Time) (QuotaStatus, error) {
	return s.quotaStatus(ctx, s.db, ownerID, asOf)
}

func (s *Service) quotaStatus(ctx context.Context, q db.Querier, ownerID string, asOf time.Time) (QuotaStatus, error) {
	start := dayStart(asOf, s.policy.Location)
	end := start.AddDate(0, 0, 1)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM movements
		WHERE owner_id=$1 AND date >= $2 AND date < $3 AND NOT deleted
	`, ownerID, start, end).Scan(&count)
	if err != nil {
		return QuotaStatus{}, err
	}
	return QuotaStatus{Count: count, Limit: s.policy.DailyLimit, Allowed: count < s.policy.DailyLimit}, nil
}

const recordColumns = `id, owner_id,
		start_lat, start_lng, start_time, start_address,
		end_lat, end_lng, end_time, end_address,
		claimed_distance_km, avg_speed_kmh, max_speed_kmh, duration_minutes,
		date, region_label, waypoints, dropped_waypoints,
		geodesic_distance_km, distance_discrepancy_km, efficiency_km_per_hour,
		deleted, deleted_at, deleted_by, created_at`

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM movements WHERE id=$1 AND NOT deleted
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM movements WHERE owner_id=$1 AND NOT deleted
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SoftDelete flags a record as deleted without removing it. Only the owner
// may delete, and only once. The day's quota slot is released in the same
// transaction, keeping the counter equal to the non-deleted record count.
func (s *Service) SoftDelete(ctx context.Context, id, ownerID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var date time.Time
	err = tx.QueryRow(ctx, `
		UPDATE movements
		SET deleted = TRUE, deleted_at = NOW(), deleted_by = $2
		WHERE id = $1 AND owner_id = $2 AND NOT deleted
		RETURNING date
	`, id, ownerID).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRecordNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE movement_quota
		SET count = GREATEST(count - 1, 0)
		WHERE owner_id = $1 AND day = $2
	`, ownerID, dayStart(date, s.policy.Location)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var startTime, endTime, deletedAt *time.Time
	var deletedBy *string
	var waypoints []byte

	err := row.Scan(&rec.ID, &rec.OwnerID,
		&rec.Start.Lat, &rec.Start.Lng, &startTime, &rec.Start.Address,
		&rec.End.Lat, &rec.End.Lng, &endTime, &rec.End.Address,
		&rec.ClaimedDistanceKm, &rec.AvgSpeedKmh, &rec.MaxSpeedKmh, &rec.DurationMinutes,
		&rec.Date, &rec.RegionLabel, &waypoints, &rec.DroppedWaypoints,
		&rec.GeodesicDistanceKm, &rec.DistanceDiscrepancyKm, &rec.EfficiencyKmPerHour,
		&rec.Deleted, &deletedAt, &deletedBy, &rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}

	if startTime != nil {
		rec.Start.Timestamp = *startTime
	}
	if endTime != nil {
		rec.End.Timestamp = *endTime
	}
	rec.DeletedAt = deletedAt
	if deletedBy != nil {
		rec.DeletedBy = *deletedBy
	}
	if len(waypoints) > 0 {
		_ = json.Unmarshal(waypoints, &rec.Waypoints)
	}
	return rec, nil
}

func dayStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
