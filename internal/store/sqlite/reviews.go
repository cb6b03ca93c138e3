package sqlite

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

type reviewRow struct {
	ID        string `db:"id"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
	UserID    string `db:"user_id"`
	BookID    string `db:"book_id"`
	Rating    int    `db:"rating"`
	Comment   string `db:"comment"`
}

// CreateReview inserts a review. Unknown user or book ids yield
// store.ErrReferenceNotFound.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	record := goqu.Record{
		"id":         r.ID,
		"created_at": formatTime(r.CreatedAt),
		"updated_at": formatTime(r.UpdatedAt),
		"user_id":    r.UserID,
		"book_id":    r.BookID,
		"rating":     r.Rating,
		"comment":    r.Comment,
	}
	_, err := exec(ctx, s.db, dialect.Insert("reviews").Rows(record).Prepared(true))
	return err
}

// ListReviewsByUser returns the reviews written by userID, oldest first.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	ds := dialect.From("reviews").
		Select("id", "created_at", "updated_at", "user_id", "book_id", "rating", "comment").
		Where(goqu.Ex{"user_id": userID}).
		Order(insertionOrder()...).
		Prepared(true)

	var rows []reviewRow
	if err := selectAll(ctx, s.db, &rows, ds); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		r := domain.Review{
			Entity:  domain.Entity{ID: row.ID},
			UserID:  row.UserID,
			BookID:  row.BookID,
			Rating:  row.Rating,
			Comment: row.Comment,
		}
		var err error
		if r.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
			return nil, err
		}
		if r.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}
