package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/repository"
)

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore()
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Load() err = %v, want ErrNotFound", err)
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	cfg := models.DefaultBepConfig("r1")
	cfg.FixedCosts = append(cfg.FixedCosts, models.FixedCostItem{ID: "rent", Amount: 1500})
	if err := s.Save(ctx, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// mutating the caller copy must not leak into the store
	cfg.FixedCosts[0].Amount = 1

	got, err := s.Load(ctx, "r1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FixedCosts[0].Amount != 1500 {
		t.Fatalf("stored amount = %v, want 1500", got.FixedCosts[0].Amount)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not set")
	}
}

func TestStoreSaveRequiresRestaurant(t *testing.T) {
	if err := NewStore().Save(context.Background(), models.BepConfig{}); err == nil {
		t.Fatalf("expected error for empty restaurant id")
	}
}

func TestStoreSnapshots(t *testing.T) {
	s := NewStore()
	_ = s.SaveSnapshot(context.Background(), models.BreakEvenSnapshot{RestaurantID: "r1", BreakEvenRevenue: 10})
	_ = s.SaveSnapshot(context.Background(), models.BreakEvenSnapshot{RestaurantID: "r1", BreakEvenRevenue: 20})

	snaps := s.Snapshots()
	if len(snaps) != 2 || snaps[1].BreakEvenRevenue != 20 {
		t.Fatalf("Snapshots() = %+v", snaps)
	}
}

func TestStoreSaveRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	cfg := models.DefaultBepConfig("r1")
	if err := s.Save(ctx, cfg); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	loaded, err := s.Load(ctx, "r1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Version != 1 {
		t.Fatalf("version = %d, want 1", loaded.Version)
	}

	// cfg still carries version 0
	if err := s.Save(ctx, cfg); !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("stale Save = %v, want ErrVersionConflict", err)
	}

	loaded.AverageTicket = 20
	if err := s.Save(ctx, loaded); err != nil {
		t.Fatalf("Save at current version: %v", err)
	}
	got, _ := s.Load(ctx, "r1")
	if got.Version != 2 || got.AverageTicket != 20 {
		t.Fatalf("got = %+v", got)
	}
}
