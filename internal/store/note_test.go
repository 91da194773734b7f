package store

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/notepad/internal/model"
)

func setupNoteTestDB(t *testing.T) (*NoteStore, *UserStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewNoteStore(db), NewUserStore(db)
}

func createOwner(t *testing.T, us *UserStore, email string) *model.User {
	t.Helper()
	u, err := us.Create(context.Background(), &model.User{Email: email, PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return u
}

func TestNoteCRUD(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, us, "alice@example.com")

	// Create
	note, err := ns.Create(ctx, &model.Note{OwnerID: owner.ID, Title: "Shopping", Content: "milk", Color: model.ColorYellow})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.ID == "" {
		t.Error("expected generated ID")
	}
	if note.Title != "Shopping" || note.Content != "milk" {
		t.Errorf("note = %+v", note)
	}
	if note.OwnerID != owner.ID {
		t.Errorf("owner_id = %q, want %q", note.OwnerID, owner.ID)
	}
	if note.Color != model.ColorYellow {
		t.Errorf("color = %q, want yellow", note.Color)
	}
	if note.Pinned {
		t.Error("expected not pinned")
	}

	// Get by ID
	got, err := ns.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got == nil || got.Title != "Shopping" {
		t.Fatalf("got %+v", got)
	}

	// Update
	got.Title = "Groceries"
	got.Pinned = true
	got.Color = model.ColorBlue
	got.UpdatedAt = time.Time{}
	updated, err := ns.Update(ctx, got)
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Title != "Groceries" {
		t.Errorf("title = %q, want %q", updated.Title, "Groceries")
	}
	if !updated.Pinned {
		t.Error("expected pinned")
	}
	if updated.Color != model.ColorBlue {
		t.Errorf("color = %q, want blue", updated.Color)
	}
	if updated.Content != "milk" {
		t.Errorf("content = %q, want milk", updated.Content)
	}

	// Delete
	if err := ns.Delete(ctx, note.ID, owner.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	got, err = ns.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("get deleted note: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestNoteNotFound(t *testing.T) {
	ns, _ := setupNoteTestDB(t)

	got, err := ns.GetByID(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got != nil {
		t.Error("expected nil for non-existent note")
	}
}

func TestNoteListOrdering(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, us, "alice@example.com")

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	seed := []struct {
		title  string
		pinned bool
		offset time.Duration
	}{
		{"old unpinned", false, 0},
		{"old pinned", true, time.Minute},
		{"new unpinned", false, 2 * time.Minute},
		{"new pinned", true, 3 * time.Minute},
		{"newest unpinned", false, 4 * time.Minute},
	}
	for _, s := range seed {
		_, err := ns.Create(ctx, &model.Note{
			OwnerID: owner.ID, Title: s.title, Content: "x", Color: model.ColorGreen,
			Pinned: s.pinned, CreatedAt: base.Add(s.offset),
		})
		if err != nil {
			t.Fatalf("create %q: %v", s.title, err)
		}
	}

	notes, err := ns.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}

	expected := []string{"new pinned", "old pinned", "newest unpinned", "new unpinned", "old unpinned"}
	if len(notes) != len(expected) {
		t.Fatalf("expected %d notes, got %d", len(expected), len(notes))
	}
	for i, e := range expected {
		if notes[i].Title != e {
			t.Errorf("notes[%d].Title = %q, want %q", i, notes[i].Title, e)
		}
	}
}

func TestNoteListScopedToOwner(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	ctx := context.Background()
	alice := createOwner(t, us, "alice@example.com")
	bob := createOwner(t, us, "bob@example.com")

	ns.Create(ctx, &model.Note{OwnerID: alice.ID, Title: "alice's", Content: "a", Color: model.ColorPink})
	ns.Create(ctx, &model.Note{OwnerID: bob.ID, Title: "bob's", Content: "b", Color: model.ColorPink})

	notes, err := ns.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Title != "alice's" {
		t.Fatalf("alice sees %+v", notes)
	}

	empty, err := ns.ListByOwner(ctx, "nobody")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no notes, got %d", len(empty))
	}
}

func TestNoteUpdateAndDeleteRequireOwner(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	ctx := context.Background()
	alice := createOwner(t, us, "alice@example.com")
	bob := createOwner(t, us, "bob@example.com")

	note, err := ns.Create(ctx, &model.Note{OwnerID: alice.ID, Title: "mine", Content: "a", Color: model.ColorYellow})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	forged := *note
	forged.OwnerID = bob.ID
	forged.Title = "stolen"
	if _, err := ns.Update(ctx, &forged); err != nil {
		t.Fatalf("update note: %v", err)
	}
	if err := ns.Delete(ctx, note.ID, bob.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}

	got, err := ns.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got == nil {
		t.Fatal("note deleted by non-owner")
	}
	if got.Title != "mine" || got.OwnerID != alice.ID {
		t.Errorf("note changed by non-owner: %+v", got)
	}
}

func TestNoteRejectsUnknownColor(t *testing.T) {
	ns, us := setupNoteTestDB(t)
	owner := createOwner(t, us, "alice@example.com")

	_, err := ns.Create(context.Background(), &model.Note{OwnerID: owner.ID, Title: "t", Content: "c", Color: "purple"})
	if err == nil {
		t.Fatal("expected CHECK constraint failure for unknown color")
	}
}

func TestNoteRequiresExistingOwner(t *testing.T) {
	ns, _ := setupNoteTestDB(t)

	_, err := ns.Create(context.Background(), &model.Note{OwnerID: "ghost", Title: "t", Content: "c", Color: model.ColorYellow})
	if err == nil {
		t.Fatal("expected foreign key failure for unknown owner")
	}
}
