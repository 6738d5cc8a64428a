// README: Persistence contract shared by the Postgres store and the Redis cache.
package checklist

import (
	"context"

	"opsgate/internal/types"
)

type Repository interface {
	Create(ctx context.Context, c *Checklist) error
	Get(ctx context.Context, id types.ID) (*Checklist, error)
	Update(ctx context.Context, c *Checklist) error
	Delete(ctx context.Context, id types.ID) error
	List(ctx context.Context, plantID types.ID) ([]Checklist, error)
	ClearLocation(ctx context.Context, id types.ID) error
}
