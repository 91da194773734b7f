package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/notepad/internal/model"
)

type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	GetByID(ctx context.Context, id string) (*model.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error)
	Update(ctx context.Context, n *model.Note) (*model.Note, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// NoteInput is the body of a create request. Color may be left empty.
type NoteInput struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Color   model.Color `json:"color"`
}

// NotePatch carries the fields an update supplies; nil fields are left as is.
type NotePatch struct {
	Title   *string      `json:"title"`
	Content *string      `json:"content"`
	Color   *model.Color `json:"color"`
	Pinned  *bool        `json:"pinned"`
}

type NoteService struct {
	notes  NoteRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewNoteService(notes NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{notes: notes, logger: logger, now: time.Now}
}

// timestamp is truncated to microseconds so values round-trip through
// postgres unchanged.
func (s *NoteService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *NoteService) List(ctx context.Context, ownerID string) ([]model.Note, error) {
	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, ownerID string, in NoteInput) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "content is required")
	}
	color := in.Color
	if color == "" {
		color = model.DefaultColor
	}
	if !color.Valid() {
		return nil, invalid("color", fmt.Sprintf("unknown color %q", color))
	}

	now := s.timestamp()
	note, err := s.notes.Create(ctx, &model.Note{
		OwnerID:   ownerID,
		Title:     title,
		Content:   in.Content,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("note created", "note_id", note.ID, "owner_id", ownerID)
	return note, nil
}

// owned loads the note and confirms ownerID owns it. It runs before any
// request body is looked at.
func (s *NoteService) owned(ctx context.Context, ownerID, noteID string) (*model.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNotFound
	}
	if note.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return note, nil
}

// CheckOwnership reports ErrNotFound or ErrForbidden exactly as Update and
// Delete would, without touching the note.
func (s *NoteService) CheckOwnership(ctx context.Context, ownerID, noteID string) error {
	_, err := s.owned(ctx, ownerID, noteID)
	return err
}

func (s *NoteService) Update(ctx context.Context, ownerID, noteID string, patch NotePatch) (*model.Note, error) {
	note, err := s.owned(ctx, ownerID, noteID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title", "title must not be empty")
		}
		note.Title = title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, invalid("content", "content must not be empty")
		}
		note.Content = *patch.Content
	}
	if patch.Color != nil {
		if !patch.Color.Valid() {
			return nil, invalid("color", fmt.Sprintf("unknown color %q", *patch.Color))
		}
		note.Color = *patch.Color
	}
	if patch.Pinned != nil {
		note.Pinned = *patch.Pinned
	}
	note.UpdatedAt = s.timestamp()

	updated, err := s.notes.Update(ctx, note)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// Deleted between the ownership check and the write.
		return nil, ErrNotFound
	}
	return updated, nil
}

func (s *NoteService) Delete(ctx context.Context, ownerID, noteID string) error {
	if _, err := s.owned(ctx, ownerID, noteID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID, ownerID); err != nil {
		return err
	}
	s.logger.Debug("note deleted", "note_id", noteID, "owner_id", ownerID)
	return nil
}
