// README: Completion store backed by PostgreSQL.
package activity

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"opsgate/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Completion) error {
	var lat, lng *float64
	if c.Point != nil {
		lat, lng = &c.Point.Lat, &c.Point.Lng
	}
	return s.db.QueryRow(ctx, `
		INSERT INTO activity_completions (
			checklist_id, activity_id, user_id, latitude, longitude, photo, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		string(c.ChecklistID), string(c.ActivityID), string(c.UserID), lat, lng, c.Photo, c.CompletedAt,
	).Scan(&c.ID)
}

// CompletedSince lists the distinct activity ids a user completed on a
// checklist at or after since.
func (s *Store) CompletedSince(ctx context.Context, checklistID, userID types.ID, since time.Time) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT activity_id
		FROM activity_completions
		WHERE checklist_id = $1 AND user_id = $2 AND completed_at >= $3
		ORDER BY activity_id`,
		string(checklistID), string(userID), since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}
