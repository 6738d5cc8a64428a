// README: Checklist store backed by PostgreSQL; activities are kept as JSONB.
package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"opsgate/internal/types"
)

var _ Repository = (*Store)(nil)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectColumns = `
	id, plant_id, name, lane, area, role, requires_location,
	location_address, location_lat, location_lng, location_radius_m,
	activities, created_at, updated_at`

func (s *Store) Create(ctx context.Context, c *Checklist) error {
	activities, err := json.Marshal(c.Activities)
	if err != nil {
		return fmt.Errorf("encoding activities: %w", err)
	}
	addr, lat, lng, radius := locationColumns(c.Location)
	_, err = s.db.Exec(ctx, `
		INSERT INTO checklists (
			id, plant_id, name, lane, area, role, requires_location,
			location_address, location_lat, location_lng, location_radius_m,
			activities, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14
		)`,
		string(c.ID), string(c.PlantID), c.Name, c.Lane, c.Area, c.Role, c.RequiresLocation,
		addr, lat, lng, radius,
		activities, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Checklist, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM checklists WHERE id = $1`, string(id))
	c, err := scanChecklist(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) Update(ctx context.Context, c *Checklist) error {
	activities, err := json.Marshal(c.Activities)
	if err != nil {
		return fmt.Errorf("encoding activities: %w", err)
	}
	addr, lat, lng, radius := locationColumns(c.Location)
	tag, err := s.db.Exec(ctx, `
		UPDATE checklists
		SET plant_id = $2,
		    name = $3,
		    lane = $4,
		    area = $5,
		    role = $6,
		    requires_location = $7,
		    location_address = $8,
		    location_lat = $9,
		    location_lng = $10,
		    location_radius_m = $11,
		    activities = $12,
		    updated_at = $13
		WHERE id = $1`,
		string(c.ID), string(c.PlantID), c.Name, c.Lane, c.Area, c.Role, c.RequiresLocation,
		addr, lat, lng, radius,
		activities, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM checklists WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the checklists of a plant, or every checklist when plantID is empty.
func (s *Store) List(ctx context.Context, plantID types.ID) ([]Checklist, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM checklists
		WHERE $1 = '' OR plant_id = $1
		ORDER BY name, id`, string(plantID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Checklist
	for rows.Next() {
		c, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ClearLocation drops the geofence and the requires-location flag together.
func (s *Store) ClearLocation(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE checklists
		SET requires_location = FALSE,
		    location_address = NULL,
		    location_lat = NULL,
		    location_lng = NULL,
		    location_radius_m = NULL,
		    updated_at = NOW()
		WHERE id = $1`, string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanChecklist(row pgx.Row) (*Checklist, error) {
	var (
		c                Checklist
		id, plantID      string
		addr             *string
		lat, lng, radius *float64
		activities       []byte
	)
	err := row.Scan(
		&id, &plantID, &c.Name, &c.Lane, &c.Area, &c.Role, &c.RequiresLocation,
		&addr, &lat, &lng, &radius,
		&activities, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ID = types.ID(id)
	c.PlantID = types.ID(plantID)
	if lat != nil && lng != nil && radius != nil {
		c.Location = &Location{Latitude: *lat, Longitude: *lng, Radius: *radius}
		if addr != nil {
			c.Location.Address = *addr
		}
	}
	if len(activities) > 0 {
		if err := json.Unmarshal(activities, &c.Activities); err != nil {
			return nil, fmt.Errorf("decoding activities of %s: %w", id, err)
		}
	}
	return &c, nil
}

func locationColumns(l *Location) (*string, *float64, *float64, *float64) {
	if l == nil {
		return nil, nil, nil, nil
	}
	addr, lat, lng, radius := l.Address, l.Latitude, l.Longitude, l.Radius
	return &addr, &lat, &lng, &radius
}
