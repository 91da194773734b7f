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

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, password_hash, created_at, updated_at`

// Create inserts u, filling in ID and timestamps when they are unset.
// The email is stored as given; callers normalize it first.
func (s *UserStore) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, u.ID)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(`SELECT `+userCols+` FROM users WHERE email = ?`), email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}
