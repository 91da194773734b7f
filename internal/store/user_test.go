package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/model"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(setupTestDB(t))
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	u, err := us.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated ID")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.PasswordHash != "hash" {
		t.Errorf("password hash = %q, want %q", u.PasswordHash, "hash")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestUserCreateKeepsGivenTimestamps(t *testing.T) {
	us := setupUserTestDB(t)

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	u, err := us.Create(context.Background(), &model.User{Email: "a@x.com", PasswordHash: "h", CreatedAt: at, UpdatedAt: at})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !u.CreatedAt.Equal(at) {
		t.Errorf("created_at = %v, want %v", u.CreatedAt, at)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	if _, err := us.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h1"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := us.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h2"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserGetByID(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	created, err := us.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u == nil || u.Email != "alice@example.com" {
		t.Errorf("got %+v, want alice", u)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)
	ctx := context.Background()

	if _, err := us.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}

	missing, err := us.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for nonexistent email")
	}
}
