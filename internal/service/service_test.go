package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/notepad/internal/auth"
	"github.com/dukerupert/notepad/internal/database"
	"github.com/dukerupert/notepad/internal/store"
)

type testEnv struct {
	db     *database.DB
	users  *store.UserStore
	notes  *store.NoteStore
	tokens *auth.TokenIssuer
	auth   *AuthService
	svc    *NoteService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	users := store.NewUserStore(db)
	notes := store.NewNoteStore(db)
	logger := discardLogger()

	return &testEnv{
		db:     db,
		users:  users,
		notes:  notes,
		tokens: tokens,
		auth:   NewAuthService(users, hasher, tokens, logger),
		svc:    NewNoteService(notes, logger),
	}
}

func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	sess, err := e.auth.Signup(context.Background(), email, "secret1")
	require.NoError(t, err)
	return sess.UserID
}

func ptr[T any](v T) *T { return &v }
