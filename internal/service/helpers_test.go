package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// recordingCovers records cover deletions instead of touching the filesystem.
type recordingCovers struct {
	mu      sync.Mutex
	deleted []string
}

func (r *recordingCovers) Delete(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ref)
	return nil
}

func (r *recordingCovers) Deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

type testEnv struct {
	store  *sqlite.Store
	books  *BookService
	users  *UserService
	seeder *Seeder
	covers *recordingCovers
	hasher *auth.Hasher
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	v := validation.New()
	covers := &recordingCovers{}
	books := NewBookService(s, covers, v, logger)
	users := NewUserService(s, hasher, v, logger)

	return &testEnv{
		store:  s,
		books:  books,
		users:  users,
		seeder: NewSeeder(s, books, users, logger),
		covers: covers,
		hasher: hasher,
	}
}

func (e *testEnv) createBook(t *testing.T, title string) *domain.Book {
	t.Helper()
	res, err := e.books.Create(context.Background(), CreateBookInput{Title: title, Author: "Test Author"})
	require.NoError(t, err)
	return res.Data
}

func (e *testEnv) createUser(t *testing.T, email string, library ...string) *domain.User {
	t.Helper()
	res, err := e.users.Create(context.Background(), CreateUserInput{
		Email:    email,
		Password: "s3cret-pass",
		Name:     "Test User",
		Library:  library,
	})
	require.NoError(t, err)
	return res.Data
}

func ptr[T any](v T) *T {
	return &v
}
