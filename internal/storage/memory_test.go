package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	session := &domain.CookingSession{
		ID:               "test-session-1",
		UserID:           "u1",
		RecipeID:         "test-recipe",
		Status:           domain.SessionActive,
		CurrentStepIndex: 0,
		StartedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	// Create.
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Duplicate create.
	if err := store.Create(ctx, session); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Get.
	loaded, err := store.Get(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.ID != session.ID {
		t.Fatalf("expected ID %s, got %s", session.ID, loaded.ID)
	}

	// Mutating the loaded copy must not leak into the store.
	loaded.Status = domain.SessionCancelled
	again, err := store.Get(ctx, "test-session-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Status != domain.SessionActive {
		t.Fatal("stored session mutated through a returned copy")
	}

	// Update.
	loaded.Status = domain.SessionPaused
	if err := store.Update(ctx, loaded); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, _ := store.Get(ctx, "test-session-1")
	if updated.Status != domain.SessionPaused {
		t.Fatalf("expected paused after update, got %s", updated.Status)
	}

	// Get nonexistent.
	if _, err := store.Get(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Update nonexistent.
	if err := store.Update(ctx, &domain.CookingSession{ID: "nonexistent"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete.
	if err := store.Delete(ctx, "test-session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "test-session-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete nonexistent.
	if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListActiveFilters(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	sessions := []*domain.CookingSession{
		{ID: "s1", Status: domain.SessionActive},
		{ID: "s2", Status: domain.SessionPaused},
		{ID: "s3", Status: domain.SessionCompleted},
		{ID: "s4", Status: domain.SessionCancelled},
	}

	for _, s := range sessions {
		if err := store.Create(ctx, s); err != nil {
			t.Fatalf("create %s: %v", s.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active/paused sessions, got %d", len(active))
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store, err := NewBadgerStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("opening badger store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	session := &domain.CookingSession{
		ID:               "b1",
		UserID:           "u1",
		RecipeID:         "test-recipe",
		Status:           domain.SessionActive,
		CurrentStepIndex: 1,
		StartedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}

	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, session); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	loaded, err := store.Get(ctx, "b1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.CurrentStepIndex != 1 || loaded.RecipeID != "test-recipe" {
		t.Fatalf("round-trip mismatch: %+v", loaded)
	}

	loaded.Status = domain.SessionCompleted
	if err := store.Update(ctx, loaded); err != nil {
		t.Fatalf("update: %v", err)
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active sessions after completion, got %d", len(active))
	}

	if err := store.Delete(ctx, "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
