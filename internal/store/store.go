// Package store defines the persistence gateway for the bookshelf server.
//
// The gateway holds no business rules. It reports integrity violations with
// the sentinels in errors.go and leaves their interpretation to the services.
package store

import (
	"context"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Gateway defines every persistence operation the services rely on.
type Gateway interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User, bookIDs []string) error
	GetUser(ctx context.Context, id string, withRelations bool) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByEmailKey(ctx context.Context, key string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.User, error)

	// Library entries
	AddLibraryEntry(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error)
	RemoveLibraryEntry(ctx context.Context, userID, bookID string) error
	ListLibrary(ctx context.Context, userID string) ([]domain.LibraryEntry, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, limit int) ([]*domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	UpdateBook(ctx context.Context, id string, patch BookPatch) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) (*domain.Book, error)

	// Reviews
	CreateReview(ctx context.Context, review *domain.Review) error
	ListReviewsByUser(ctx context.Context, userID string) ([]domain.Review, error)
}
