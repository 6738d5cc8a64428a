// README: Redis-backed gate passes, the server-side record of a validated visit.
package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

const passKeyFormat = "gatepass:%s:%s"

// PassStore keeps one pass per user and checklist. The stored value is the
// fingerprint of the fence that was passed, so moving or resizing the fence
// voids every outstanding pass for it.
type PassStore struct {
	redis *redis.Client
}

func NewPassStore(rdb *redis.Client) *PassStore {
	return &PassStore{redis: rdb}
}

// Grant records that userID passed fence on checklistID. The pass lapses
// after ttl.
func (s *PassStore) Grant(ctx context.Context, userID, checklistID types.ID, fence geofence.Geofence, ttl time.Duration) error {
	return s.redis.Set(ctx, passKey(userID, checklistID), fence.Fingerprint(), ttl).Err()
}

// Has reports whether userID holds a pass for the checklist's current fence.
// A pass granted against an earlier fence is deleted.
func (s *PassStore) Has(ctx context.Context, userID, checklistID types.ID, fence geofence.Geofence) (bool, error) {
	got, err := s.redis.Get(ctx, passKey(userID, checklistID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if got != fence.Fingerprint() {
		return false, s.Revoke(ctx, userID, checklistID)
	}
	return true, nil
}

func (s *PassStore) Revoke(ctx context.Context, userID, checklistID types.ID) error {
	return s.redis.Del(ctx, passKey(userID, checklistID)).Err()
}

func passKey(userID, checklistID types.ID) string {
	return fmt.Sprintf(passKeyFormat, string(userID), string(checklistID))
}
