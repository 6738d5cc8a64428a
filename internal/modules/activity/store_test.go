package activity

import (
	"context"
	"testing"
	"time"

	"opsgate/internal/modules/geofence"
	"opsgate/internal/testdb"
)

func TestStoreCompletedSince(t *testing.T) {
	db := testdb.Postgres(t, "activity_completions")
	store := NewStore(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := []*Completion{
		{ChecklistID: "cl-1", ActivityID: "a-2", UserID: "u-1", Point: &geofence.GeoPoint{Lat: 40.7, Lng: -74}, CompletedAt: now},
		{ChecklistID: "cl-1", ActivityID: "a-1", UserID: "u-1", Photo: "p.jpg", CompletedAt: now},
		{ChecklistID: "cl-1", ActivityID: "a-1", UserID: "u-1", CompletedAt: now.Add(time.Minute)},
		{ChecklistID: "cl-1", ActivityID: "a-3", UserID: "u-1", CompletedAt: now.Add(-48 * time.Hour)},
		{ChecklistID: "cl-1", ActivityID: "a-4", UserID: "u-2", CompletedAt: now},
	}
	for _, c := range rows {
		if err := store.Create(ctx, c); err != nil {
			t.Fatalf("create: %v", err)
		}
		if c.ID == 0 {
			t.Fatalf("expected generated id")
		}
	}

	got, err := store.CompletedSince(ctx, "cl-1", "u-1", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("completed since: %v", err)
	}
	if len(got) != 2 || got[0] != "a-1" || got[1] != "a-2" {
		t.Fatalf("unexpected ids: %v", got)
	}
}
