package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
)

func TestBookService_Create(t *testing.T) {
	env := setupTestEnv(t)

	res, err := env.books.Create(context.Background(), CreateBookInput{
		Title:         "  Dune ",
		Author:        "Frank Herbert",
		PublishedYear: 1965,
		Extra:         map[string]any{"series": "Dune Chronicles"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Book created successfully", res.Message)
	assert.True(t, strings.HasPrefix(res.Data.ID, id.PrefixBook+"-"))
	assert.Equal(t, "Dune", res.Data.Title)
	assert.False(t, res.Data.CreatedAt.IsZero())

	got, err := env.books.FindOne(context.Background(), res.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", got.Author)
	assert.Equal(t, "Dune Chronicles", got.Extra["series"])
}

func TestBookService_Create_Validation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name  string
		input CreateBookInput
		field string
	}{
		{"missing title", CreateBookInput{Author: "A"}, "title"},
		{"blank author", CreateBookInput{Title: "T", Author: "   "}, "author"},
		{"bad isbn", CreateBookInput{Title: "T", Author: "A", ISBN: "123"}, "isbn"},
		{"negative pages", CreateBookInput{Title: "T", Author: "A", Pages: -1}, "pages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.books.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, domainerrors.ErrValidation)

			var de *domainerrors.Error
			require.ErrorAs(t, err, &de)
			assert.Contains(t, de.Details, tt.field)
		})
	}

	books, err := env.books.FindAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookService_FindAll_Limit(t *testing.T) {
	env := setupTestEnv(t)
	for _, title := range []string{"A", "B", "C", "D"} {
		env.createBook(t, title)
	}
	ctx := context.Background()

	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"nil returns all", nil, 4},
		{"zero returns all", ptr(0), 4},
		{"negative returns all", ptr(-3), 4},
		{"caps result", ptr(2), 2},
		{"larger than catalog", ptr(10), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := env.books.FindAll(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, books, tt.want)
		})
	}

	books, err := env.books.FindAll(ctx, ptr(2))
	require.NoError(t, err)
	assert.Equal(t, "A", books[0].Title)
	assert.Equal(t, "B", books[1].Title)
}

func TestBookService_UnknownID(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.books.FindOne(ctx, "book-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.books.Update(ctx, "book-missing", UpdateBookInput{Title: ptr("New")})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.books.Update(ctx, "book-missing", UpdateBookInput{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.books.Remove(ctx, "book-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookService_Update(t *testing.T) {
	env := setupTestEnv(t)
	book := env.createBook(t, "Dune")

	res, err := env.books.Update(context.Background(), book.ID, UpdateBookInput{
		Title: ptr("Dune Messiah"),
		Pages: ptr(256),
	})
	require.NoError(t, err)

	assert.Equal(t, "Book updated successfully", res.Message)
	assert.Equal(t, "Dune Messiah", res.Data.Title)
	assert.Equal(t, 256, res.Data.Pages)
	assert.Equal(t, book.Author, res.Data.Author)
	assert.True(t, res.Data.UpdatedAt.After(book.UpdatedAt))
}

func TestBookService_Update_EmptyReturnsUnchanged(t *testing.T) {
	env := setupTestEnv(t)
	book := env.createBook(t, "Dune")

	res, err := env.books.Update(context.Background(), book.ID, UpdateBookInput{})
	require.NoError(t, err)

	assert.Equal(t, book.Title, res.Data.Title)
	assert.True(t, res.Data.UpdatedAt.Equal(book.UpdatedAt), "updated_at must not move")
}

func TestBookService_Update_RejectsBlankTitle(t *testing.T) {
	env := setupTestEnv(t)
	book := env.createBook(t, "Dune")

	_, err := env.books.Update(context.Background(), book.ID, UpdateBookInput{Title: ptr("   ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestBookService_Remove_CascadesLibrary(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	dune := env.createBook(t, "Dune")
	emma := env.createBook(t, "Emma")
	user := env.createUser(t, "reader@example.com", dune.ID, emma.ID)

	res, err := env.books.Remove(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book deleted successfully", res.Message)
	assert.Equal(t, dune.ID, res.Data.ID)

	got, err := env.users.FindOne(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{emma.ID}, got.BookIDs())
}

func TestBookService_SetCover(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	first := &covers.Stored{Path: "/uploads/covers/first.png", BlurHash: "LEHV6nWB2yk8"}
	res, err := env.books.SetCover(ctx, book.ID, first)
	require.NoError(t, err)
	assert.Equal(t, first.Path, res.Data.Cover)
	assert.Equal(t, first.BlurHash, res.Data.CoverBlurHash)
	assert.Empty(t, env.covers.Deleted())

	second := &covers.Stored{Path: "/uploads/covers/second.png", BlurHash: "L6PZfSi_.AyE"}
	_, err = env.books.SetCover(ctx, book.ID, second)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Path}, env.covers.Deleted())

	_, err = env.books.Remove(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Path, second.Path}, env.covers.Deleted())

	_, err = env.books.SetCover(ctx, "book-missing", second)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.books.SetCover(ctx, book.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestBookService_Update_CoverClearsBlurHash(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Dune")

	_, err := env.books.SetCover(ctx, book.ID, &covers.Stored{Path: "/uploads/covers/a.png", BlurHash: "LEHV6nWB2yk8"})
	require.NoError(t, err)

	res, err := env.books.Update(ctx, book.ID, UpdateBookInput{Cover: ptr("https://covers.example.com/dune.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "https://covers.example.com/dune.jpg", res.Data.Cover)
	assert.Empty(t, res.Data.CoverBlurHash)
	assert.Equal(t, []string{"/uploads/covers/a.png"}, env.covers.Deleted())
}

func TestBookService_UploadedCoverCannotBeShared(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	owner := env.createBook(t, "Dune")
	other := env.createBook(t, "Emma")

	uploaded := "/uploads/covers/0b4e7a0e-5fe1-4d8b-9a1c-1c2b3d4e5f60.png"
	_, err := env.books.SetCover(ctx, owner.ID, &covers.Stored{Path: uploaded, BlurHash: "LEHV6nWB2yk8"})
	require.NoError(t, err)

	_, err = env.books.Update(ctx, other.ID, UpdateBookInput{Cover: ptr(uploaded)})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.books.Create(ctx, CreateBookInput{Title: "Persuasion", Author: "Jane Austen", Cover: uploaded})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	got, err := env.books.FindOne(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Cover)

	_, err = env.books.Remove(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{uploaded}, env.covers.Deleted())
}

func TestBookService_ContextCanceled(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := env.books.FindAll(ctx, nil)
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
}
