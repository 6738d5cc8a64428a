// README: Attempt log backed by PostgreSQL.
package validation

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"opsgate/internal/types"
)

type AttemptStore struct {
	db *pgxpool.Pool
}

func NewAttemptStore(db *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) Append(ctx context.Context, a *Attempt) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO validation_attempts (
			checklist_id, user_id, latitude, longitude, accuracy_m,
			valid, distance_m, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		string(a.ChecklistID), string(a.UserID), a.Point.Lat, a.Point.Lng, a.AccuracyMeters,
		a.Valid, a.DistanceMeters, a.CheckedAt,
	).Scan(&a.ID)
}

// ListByChecklist returns the newest attempts first.
func (s *AttemptStore) ListByChecklist(ctx context.Context, checklistID types.ID, limit int) ([]Attempt, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, checklist_id, user_id, latitude, longitude, accuracy_m,
		       valid, distance_m, checked_at
		FROM validation_attempts
		WHERE checklist_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT $2`, string(checklistID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var checklist, user string
		if err := rows.Scan(
			&a.ID, &checklist, &user, &a.Point.Lat, &a.Point.Lng, &a.AccuracyMeters,
			&a.Valid, &a.DistanceMeters, &a.CheckedAt,
		); err != nil {
			return nil, err
		}
		a.ChecklistID = types.ID(checklist)
		a.UserID = types.ID(user)
		out = append(out, a)
	}
	return out, rows.Err()
}
