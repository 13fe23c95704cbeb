package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/connection-monitor/internal/database"
	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/utils"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUsers()
	u, err := users.Create(ctx, " Admin@Example.Local ", "secret", model.RoleAdmin, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "admin@example.local" || u.ID == "" {
		t.Fatalf("unexpected record %+v", u)
	}
	if _, err := users.Create(ctx, "admin@example.local", "x", model.RoleUser, bcrypt.MinCost); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	got, err := users.GetByEmail(ctx, "ADMIN@example.local")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !utils.VerifyPassword(got.PasswordHash, "secret") {
		t.Fatal("stored hash does not verify")
	}
	if got.User().Role != model.RoleAdmin {
		t.Fatalf("unexpected role %q", got.User().Role)
	}
	if _, err := users.GetByEmail(ctx, "nobody@example.local"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessions()
	_ = s.Open(ctx, "u1", "h1", time.Now().Add(time.Hour))
	_ = s.Open(ctx, "u1", "h2", time.Now().Add(time.Hour))
	_ = s.Open(ctx, "u2", "old", time.Now().Add(-time.Minute))

	if id, err := s.Validate(ctx, "h1"); err != nil || id != "u1" {
		t.Fatalf("expected u1, got %q %v", id, err)
	}
	if _, err := s.Validate(ctx, "old"); err != ErrSessionNotFound {
		t.Fatalf("expired session should not validate, got %v", err)
	}
	_ = s.Revoke(ctx, "h1")
	if _, err := s.Validate(ctx, "h1"); err != ErrSessionNotFound {
		t.Fatalf("revoked session should not validate, got %v", err)
	}
	_ = s.RevokeAllForUser(ctx, "u1")
	if _, err := s.Validate(ctx, "h2"); err != ErrSessionNotFound {
		t.Fatalf("all sessions should be revoked, got %v", err)
	}
}

func TestBoltSnapshotRoundTrip(t *testing.T) {
	db, err := database.OpenBolt(filepath.Join(t.TempDir(), "snap.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo := NewBoltSnapshotRepo(db)
	ctx := context.Background()

	empty, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(empty.Connections) != 0 || len(empty.Addresses) != 0 {
		t.Fatalf("expected empty dataset, got %+v", empty)
	}

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ds := model.ExampleDataset(now)
	ds.Connections[0].Photos = []model.Photo{{ID: "p1", URL: "http://x/p.jpg", ConnectionID: "1", CreatedAt: now}}
	if err := repo.SaveAll(ctx, ds); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Connections) != 1 || got.Connections[0].ClientName != "Іван Петренко" {
		t.Fatalf("unexpected connections %+v", got.Connections)
	}
	if !got.Connections[0].LastCheck.Equal(now) || len(got.Connections[0].Photos) != 1 {
		t.Fatalf("unexpected connection detail %+v", got.Connections[0])
	}
	if len(got.Addresses) != 1 || got.Addresses[0].Label() != "вул. Шевченка 25" {
		t.Fatalf("unexpected addresses %+v", got.Addresses)
	}
}

func TestMemorySnapshotRepo(t *testing.T) {
	repo := &MemorySnapshotRepo{}
	ctx := context.Background()
	ds, _ := repo.LoadAll(ctx)
	if ds.Connections == nil || len(ds.Connections) != 0 {
		t.Fatalf("expected empty non-nil dataset, got %+v", ds)
	}
	_ = repo.SaveAll(ctx, model.ExampleDataset(time.Now()))
	ds, _ = repo.LoadAll(ctx)
	if len(ds.Connections) != 1 || repo.Saves() != 1 {
		t.Fatalf("unexpected state %d saves, %+v", repo.Saves(), ds)
	}
}
