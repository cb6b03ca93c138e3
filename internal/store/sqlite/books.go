package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
var bookColumns = []string{
	"id", "created_at", "updated_at", "title", "author", "cover", "cover_blur_hash",
	"description", "genre", "publisher", "published_year", "isbn", "pages", "extra",
}

func selectBookColumns(table string) []any {
	cols := make([]any, 0, len(bookColumns))
	for _, c := range bookColumns {
		if table == "" {
			cols = append(cols, goqu.C(c))
		} else {
			cols = append(cols, goqu.T(table).Col(c))
		}
	}
	return cols
}

type bookRow struct {
	ID            string `db:"id"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
	Title         string `db:"title"`
	Author        string `db:"author"`
	Cover         string `db:"cover"`
	CoverBlurHash string `db:"cover_blur_hash"`
	Description   string `db:"description"`
	Genre         string `db:"genre"`
	Publisher     string `db:"publisher"`
	PublishedYear int    `db:"published_year"`
	ISBN          string `db:"isbn"`
	Pages         int    `db:"pages"`
	Extra         string `db:"extra"`
}

func (r *bookRow) toDomain() (*domain.Book, error) {
	b := &domain.Book{
		Entity:        domain.Entity{ID: r.ID},
		Title:         r.Title,
		Author:        r.Author,
		Cover:         r.Cover,
		CoverBlurHash: r.CoverBlurHash,
		Description:   r.Description,
		Genre:         r.Genre,
		Publisher:     r.Publisher,
		PublishedYear: r.PublishedYear,
		ISBN:          r.ISBN,
		Pages:         r.Pages,
	}
	var err error
	if b.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	if r.Extra != "" && r.Extra != "{}" {
		if err := json.UnmarshalFromString(r.Extra, &b.Extra); err != nil {
			return nil, fmt.Errorf("decode book extra: %w", err)
		}
	}
	return b, nil
}

func encodeExtra(extra map[string]any) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	s, err := json.MarshalToString(extra)
	if err != nil {
		return "", fmt.Errorf("encode book extra: %w", err)
	}
	return s, nil
}

// CreateBook inserts a new book.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	extra, err := encodeExtra(b.Extra)
	if err != nil {
		return err
	}

	record := goqu.Record{
		"id":              b.ID,
		"created_at":      formatTime(b.CreatedAt),
		"updated_at":      formatTime(b.UpdatedAt),
		"title":           b.Title,
		"author":          b.Author,
		"cover":           b.Cover,
		"cover_blur_hash": b.CoverBlurHash,
		"description":     b.Description,
		"genre":           b.Genre,
		"publisher":       b.Publisher,
		"published_year":  b.PublishedYear,
		"isbn":            b.ISBN,
		"pages":           b.Pages,
		"extra":           extra,
	}

	_, err = exec(ctx, s.db, dialect.Insert("books").Rows(record).Prepared(true))
	return err
}

func getBook(ctx context.Context, q sqlx.QueryerContext, id string) (*domain.Book, error) {
	var row bookRow
	ds := dialect.From("books").Select(selectBookColumns("")...).Where(goqu.Ex{"id": id}).Prepared(true)
	if err := get(ctx, q, &row, ds); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return getBook(ctx, s.db, id)
}

// ListBooks returns books in insertion order. A positive limit caps the
// result; zero or negative returns every book.
func (s *Store) ListBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	ds := dialect.From("books").Select(selectBookColumns("")...).Order(insertionOrder()...)
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	var rows []bookRow
	if err := selectAll(ctx, s.db, &rows, ds.Prepared(true)); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// CountBooks returns the number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return count(ctx, s.db, "books")
}

// UpdateBook applies patch to the book and returns the stored result.
// An empty patch performs no write.
func (s *Store) UpdateBook(ctx context.Context, id string, patch store.BookPatch) (*domain.Book, error) {
	if patch.IsEmpty() {
		return s.GetBook(ctx, id)
	}

	record := goqu.Record{"updated_at": formatTime(time.Now())}
	setString := func(col string, v *string) {
		if v != nil {
			record[col] = *v
		}
	}
	setString("title", patch.Title)
	setString("author", patch.Author)
	setString("cover", patch.Cover)
	setString("cover_blur_hash", patch.CoverBlurHash)
	setString("description", patch.Description)
	setString("genre", patch.Genre)
	setString("publisher", patch.Publisher)
	setString("isbn", patch.ISBN)
	if patch.PublishedYear != nil {
		record["published_year"] = *patch.PublishedYear
	}
	if patch.Pages != nil {
		record["pages"] = *patch.Pages
	}
	if patch.Extra != nil {
		extra, err := encodeExtra(patch.Extra)
		if err != nil {
			return nil, err
		}
		record["extra"] = extra
	}

	var updated *domain.Book
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, dialect.Update("books").Set(record).Where(goqu.Ex{"id": id}).Prepared(true))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		updated, err = getBook(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteBook removes a book and returns it as it was before deletion.
// Library entries and reviews referencing the book are removed by cascade.
func (s *Store) DeleteBook(ctx context.Context, id string) (*domain.Book, error) {
	var deleted *domain.Book
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if deleted, err = getBook(ctx, tx, id); err != nil {
			return err
		}
		n, err := exec(ctx, tx, dialect.Delete("books").Where(goqu.Ex{"id": id}).Prepared(true))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
