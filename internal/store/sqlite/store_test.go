package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestBook creates a domain.Book with sensible defaults for testing.
func makeTestBook(id, title string) *domain.Book {
	b := &domain.Book{
		Entity: domain.Entity{ID: id},
		Title:  title,
		Author: "Test Author",
	}
	b.InitTimestamps()
	return b
}

// makeTestUser creates a domain.User with sensible defaults for testing.
func makeTestUser(id, email string) *domain.User {
	u := &domain.User{
		Entity:       domain.Entity{ID: id},
		Email:        email,
		PasswordHash: "$2a$10$fakehashfortest",
		Name:         "Test User",
	}
	u.InitTimestamps()
	return u
}

func mustCreateBook(t *testing.T, s *Store, id, title string) *domain.Book {
	t.Helper()
	b := makeTestBook(id, title)
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook(%s): %v", id, err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	for _, table := range []string{"users", "books", "library_entries", "reviews"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s1.CreateBook(context.Background(), makeTestBook("book-1", "Kept")); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	s1.Close()

	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetBook(context.Background(), "book-1"); err != nil {
		t.Errorf("book lost across reopen: %v", err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 800, time.FixedZone("X", 3600))
	got, err := parseTime(formatTime(now))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("got %v, want %v", got, now)
	}

	// Whole seconds must still sort before fractional ones.
	a := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	b := formatTime(time.Date(2026, 1, 1, 0, 0, 0, 100, time.UTC))
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{errors.New("constraint failed: UNIQUE constraint failed: users.email_key (2067)"), store.ErrAlreadyExists},
		{errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), store.ErrReferenceNotFound},
	}
	for _, tt := range tests {
		if got := classify(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("classify(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	plain := fmt.Errorf("disk I/O error")
	if got := classify(plain); got != plain {
		t.Errorf("unexpected rewrite of %v", plain)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}
