package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// CoverFiles removes stored cover files that are no longer referenced.
type CoverFiles interface {
	Delete(ref string) error
}

// BookService manages the book catalog.
type BookService struct {
	store     store.Gateway
	covers    CoverFiles
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service. covers may be nil, in which
// case replaced or orphaned cover files are left on disk.
func NewBookService(store store.Gateway, covers CoverFiles, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		covers:    covers,
		validator: validator,
		logger:    logger,
	}
}

// CreateBookInput holds the fields of a new book.
type CreateBookInput struct {
	Title         string         `json:"title" validate:"required,max=500"`
	Author        string         `json:"author" validate:"required,max=300"`
	Cover         string         `json:"cover,omitempty" validate:"max=2048"`
	Description   string         `json:"description,omitempty" validate:"max=10000"`
	Genre         string         `json:"genre,omitempty" validate:"max=100"`
	Publisher     string         `json:"publisher,omitempty" validate:"max=300"`
	PublishedYear int            `json:"published_year,omitempty" validate:"gte=0,lte=9999"`
	ISBN          string         `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Pages         int            `json:"pages,omitempty" validate:"gte=0"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// UpdateBookInput holds a partial book update. Nil fields are left untouched.
type UpdateBookInput struct {
	Title         *string        `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Author        *string        `json:"author,omitempty" validate:"omitempty,min=1,max=300"`
	Cover         *string        `json:"cover,omitempty" validate:"omitempty,max=2048"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=10000"`
	Genre         *string        `json:"genre,omitempty" validate:"omitempty,max=100"`
	Publisher     *string        `json:"publisher,omitempty" validate:"omitempty,max=300"`
	PublishedYear *int           `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=9999"`
	ISBN          *string        `json:"isbn,omitempty" validate:"omitempty,isbn"`
	Pages         *int           `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Create validates and stores a new book.
func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*Result[*domain.Book], error) {
	in.Title = normalize.Text(in.Title)
	in.Author = normalize.Text(in.Author)
	in.Cover = normalize.Text(in.Cover)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := checkCoverReference(in.Cover); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to generate book id")
	}

	book := &domain.Book{
		Entity:        domain.Entity{ID: bookID},
		Title:         in.Title,
		Author:        in.Author,
		Cover:         in.Cover,
		Description:   in.Description,
		Genre:         in.Genre,
		Publisher:     in.Publisher,
		PublishedYear: in.PublishedYear,
		ISBN:          in.ISBN,
		Pages:         in.Pages,
		Extra:         in.Extra,
	}
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, internalError(s.logger, err, "failed to create book", "title", book.Title)
	}

	s.logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return newResult("Book created successfully", book), nil
}

// FindAll lists books in insertion order. A non-nil positive limit caps the
// result; nil, zero or negative returns every book.
func (s *BookService) FindAll(ctx context.Context, limit *int) ([]*domain.Book, error) {
	n := 0
	if limit != nil && *limit > 0 {
		n = *limit
	}

	books, err := s.store.ListBooks(ctx, n)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to list books")
	}
	return books, nil
}

// FindOne returns a book by ID.
func (s *BookService) FindOne(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to get book", "book_id", bookID)
	}
	return book, nil
}

// Update applies a partial update. An empty update returns the book as stored.
func (s *BookService) Update(ctx context.Context, bookID string, in UpdateBookInput) (*Result[*domain.Book], error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	patch := store.BookPatch{
		Title:         trimmed(in.Title),
		Author:        trimmed(in.Author),
		Cover:         trimmed(in.Cover),
		Description:   in.Description,
		Genre:         in.Genre,
		Publisher:     in.Publisher,
		PublishedYear: in.PublishedYear,
		ISBN:          in.ISBN,
		Pages:         in.Pages,
		Extra:         in.Extra,
	}
	if (patch.Title != nil && *patch.Title == "") || (patch.Author != nil && *patch.Author == "") {
		return nil, domainerrors.Validation("title and author cannot be blank")
	}
	if patch.Cover != nil {
		if err := checkCoverReference(*patch.Cover); err != nil {
			return nil, err
		}
	}

	var previous *domain.Book
	if patch.Cover != nil {
		var err error
		if previous, err = s.FindOne(ctx, bookID); err != nil {
			return nil, err
		}
		empty := ""
		patch.CoverBlurHash = &empty
	}

	book, err := s.store.UpdateBook(ctx, bookID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to update book", "book_id", bookID)
	}

	if previous != nil && previous.Cover != book.Cover {
		s.deleteCover(previous.Cover)
	}
	return newResult("Book updated successfully", book), nil
}

// Remove deletes a book. Library entries and reviews referencing it are
// removed with it.
func (s *BookService) Remove(ctx context.Context, bookID string) (*Result[*domain.Book], error) {
	book, err := s.store.DeleteBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to delete book", "book_id", bookID)
	}

	s.deleteCover(book.Cover)
	s.logger.Info("book deleted", "book_id", bookID)
	return newResult("Book deleted successfully", book), nil
}

// SetCover points the book at an uploaded cover and replaces its blur hash.
// The previous uploaded cover file, if any, is removed.
func (s *BookService) SetCover(ctx context.Context, bookID string, cover *covers.Stored) (*Result[*domain.Book], error) {
	if cover == nil || cover.Path == "" {
		return nil, domainerrors.Validation("cover is required")
	}

	previous, err := s.FindOne(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book, err := s.store.UpdateBook(ctx, bookID, store.BookPatch{
		Cover:         &cover.Path,
		CoverBlurHash: &cover.BlurHash,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to set book cover", "book_id", bookID)
	}

	if previous.Cover != cover.Path {
		s.deleteCover(previous.Cover)
	}
	return newResult("Book cover updated successfully", book), nil
}

// deleteCover removes a cover file that no book references anymore.
// Failures are logged; the catalog change has already been committed.
func (s *BookService) deleteCover(ref string) {
	if s.covers == nil || ref == "" {
		return
	}
	if err := s.covers.Delete(ref); err != nil {
		s.logger.Warn("failed to delete cover file", "cover", ref, "error", err)
	}
}

// checkCoverReference rejects references to uploaded cover files. Each
// uploaded file belongs to the one book SetCover attached it to, and is
// deleted together with that book's cover.
func checkCoverReference(cover string) error {
	if covers.IsStored(cover) {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"cover": "uploaded covers can only be attached through the cover upload",
		})
	}
	return nil
}

// trimmed returns a pointer to the normalized value of s, or nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalize.Text(*s)
	return &v
}
