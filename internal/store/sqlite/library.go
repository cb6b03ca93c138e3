package sqlite

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// libraryRow is a library entry joined with its book.
type libraryRow struct {
	UserID  string `db:"user_id"`
	BookID  string `db:"book_id"`
	AddedAt string `db:"added_at"`
	bookRow
}

func (r *libraryRow) toDomain() (domain.LibraryEntry, error) {
	entry := domain.LibraryEntry{UserID: r.UserID, BookID: r.BookID}
	var err error
	if entry.AddedAt, err = parseTime(r.AddedAt); err != nil {
		return entry, err
	}
	if entry.Book, err = r.bookRow.toDomain(); err != nil {
		return entry, err
	}
	return entry, nil
}

func insertLibraryEntry(ctx context.Context, e sqlx.ExecerContext, userID, bookID string, addedAt time.Time) error {
	record := goqu.Record{
		"user_id":  userID,
		"book_id":  bookID,
		"added_at": formatTime(addedAt),
	}
	_, err := exec(ctx, e, dialect.Insert("library_entries").Rows(record).Prepared(true))
	return err
}

func libraryQuery() *goqu.SelectDataset {
	cols := append([]any{
		goqu.T("le").Col("user_id"),
		goqu.T("le").Col("book_id"),
		goqu.T("le").Col("added_at"),
	}, selectBookColumns("b")...)

	return dialect.From(goqu.T("library_entries").As("le")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.T("le").Col("book_id").Eq(goqu.T("b").Col("id")))).
		Select(cols...)
}

// AddLibraryEntry records that userID holds bookID.
// Returns store.ErrAlreadyExists for a duplicate pair and
// store.ErrReferenceNotFound when the user or book does not exist.
func (s *Store) AddLibraryEntry(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error) {
	if err := insertLibraryEntry(ctx, s.db, userID, bookID, time.Now()); err != nil {
		return nil, err
	}

	var row libraryRow
	ds := libraryQuery().
		Where(goqu.T("le").Col("user_id").Eq(userID), goqu.T("le").Col("book_id").Eq(bookID)).
		Prepared(true)
	if err := get(ctx, s.db, &row, ds); err != nil {
		return nil, err
	}
	entry, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveLibraryEntry deletes the (userID, bookID) entry.
func (s *Store) RemoveLibraryEntry(ctx context.Context, userID, bookID string) error {
	n, err := exec(ctx, s.db, dialect.Delete("library_entries").
		Where(goqu.Ex{"user_id": userID, "book_id": bookID}).Prepared(true))
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListLibrary returns the user's library entries joined with their books,
// in the order they were added.
func (s *Store) ListLibrary(ctx context.Context, userID string) ([]domain.LibraryEntry, error) {
	ds := libraryQuery().
		Where(goqu.T("le").Col("user_id").Eq(userID)).
		Order(goqu.T("le").Col("added_at").Asc(), goqu.L("le.rowid").Asc()).
		Prepared(true)

	var rows []libraryRow
	if err := selectAll(ctx, s.db, &rows, ds); err != nil {
		return nil, err
	}

	entries := make([]domain.LibraryEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
