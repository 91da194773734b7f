package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/model"
	"github.com/google/uuid"
)

type NoteStore struct {
	db *database.DB
}

func NewNoteStore(db *database.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var color string

	err := scanner.Scan(
		&n.ID, &n.OwnerID, &n.Title, &n.Content, &color,
		&n.Pinned, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Color = model.Color(color)
	return &n, nil
}

const noteCols = `id, owner_id, title, content, color, pinned, created_at, updated_at`

// Create inserts n, filling in ID and timestamps when they are unset.
func (s *NoteStore) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO notes (`+noteCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		n.ID, n.OwnerID, n.Title, n.Content, string(n.Color), n.Pinned, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetByID(ctx, n.ID)
}

// GetByID returns the note with the given id regardless of owner, or nil if
// there is none. Ownership is the caller's decision.
func (s *NoteStore) GetByID(ctx context.Context, id string) (*model.Note, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+noteCols+` FROM notes WHERE id = ?`), id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListByOwner returns the owner's notes, pinned first, newest first within
// each group.
func (s *NoteStore) ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(
		`SELECT `+noteCols+` FROM notes
		 WHERE owner_id = ?
		 ORDER BY pinned DESC, created_at DESC`),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// Update writes the mutable fields of n. The owner_id predicate keeps a
// stale caller from touching a note it does not own.
func (s *NoteStore) Update(ctx context.Context, n *model.Note) (*model.Note, error) {
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE notes SET title = ?, content = ?, color = ?, pinned = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`),
		n.Title, n.Content, string(n.Color), n.Pinned, n.UpdatedAt, n.ID, n.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return s.GetByID(ctx, n.ID)
}

func (s *NoteStore) Delete(ctx context.Context, id, ownerID string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM notes WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}
