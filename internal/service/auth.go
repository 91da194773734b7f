package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dukerupert/notepad/internal/model"
	"github.com/dukerupert/notepad/internal/store"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, hash string) bool
}

type TokenSigner interface {
	Issue(userID string) (string, error)
}

// Session is what a successful signup or login hands back to the client.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenSigner
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenSigner, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "email is not a valid address")
	}
	return nil
}

func validatePassword(raw string) error {
	if raw == "" {
		return invalid("password", "password is required")
	}
	if utf8.RuneCountInString(raw) < minPasswordLen {
		return invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(raw) > maxPasswordBytes {
		return invalid("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func (s *AuthService) Signup(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{Email: email, PasswordHash: hash})
	if errors.Is(err, store.ErrDuplicateEmail) {
		// Lost a race with a concurrent signup for the same address.
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return s.session(user.ID)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if password == "" {
		return nil, invalid("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		// Spend the same bcrypt time as a real compare so unknown emails
		// are not distinguishable by latency.
		s.hasher.Verify(password, s.dummy())
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.session(user.ID)
}

func (s *AuthService) session(userID string) (*Session, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, UserID: userID}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("notepad-dummy-password")
		if err != nil {
			s.logger.Error("dummy hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
