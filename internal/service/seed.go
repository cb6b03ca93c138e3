package service

import (
	"context"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// baselineBooks is the catalog a fresh installation starts with.
var baselineBooks = []CreateBookInput{
	{
		Title:         "Cien años de soledad",
		Author:        "Gabriel García Márquez",
		Genre:         "Magical realism",
		Publisher:     "Editorial Sudamericana",
		PublishedYear: 1967,
		Pages:         471,
		Description:   "The rise and fall of Macondo and seven generations of the Buendía family.",
	},
	{
		Title:         "Pride and Prejudice",
		Author:        "Jane Austen",
		Genre:         "Romance",
		Publisher:     "T. Egerton",
		PublishedYear: 1813,
		Pages:         432,
		Description:   "Elizabeth Bennet navigates manners, marriage and money in Regency England.",
	},
	{
		Title:         "Nineteen Eighty-Four",
		Author:        "George Orwell",
		Genre:         "Dystopian fiction",
		Publisher:     "Secker & Warburg",
		PublishedYear: 1949,
		Pages:         328,
		Description:   "Winston Smith rebels against the Party in a state of total surveillance.",
	},
	{
		Title:         "The Hobbit",
		Author:        "J. R. R. Tolkien",
		Genre:         "Fantasy",
		Publisher:     "George Allen & Unwin",
		PublishedYear: 1937,
		Pages:         310,
		Description:   "Bilbo Baggins joins thirteen dwarves on a quest for the treasure of Erebor.",
	},
	{
		Title:         "Ficciones",
		Author:        "Jorge Luis Borges",
		Genre:         "Short stories",
		Publisher:     "Editorial Sur",
		PublishedYear: 1944,
		Pages:         174,
		Description:   "Labyrinths, mirrors and infinite libraries.",
	},
}

// baselineUser is a seeded account. It starts with the first LibrarySize
// books of the catalog and reviews the first of them.
type baselineUser struct {
	Input       CreateUserInput
	LibrarySize int
	Rating      int
	Comment     string
}

var baselineUsers = []baselineUser{
	{
		Input: CreateUserInput{
			Email:    "admin@bookshelf.local",
			Password: "bookshelf-admin",
			Name:     "Bookshelf Admin",
		},
		LibrarySize: 3,
		Rating:      5,
		Comment:     "A classic every library should hold.",
	},
	{
		Input: CreateUserInput{
			Email:    "reader@bookshelf.local",
			Password: "bookshelf-reader",
			Name:     "Demo Reader",
			Phone:    "+15550100",
		},
		LibrarySize: 2,
		Rating:      4,
		Comment:     "Slow start, unforgettable ending.",
	},
}

// SeedResult reports what a seeding run created.
type SeedResult struct {
	BooksCreated   int `json:"books_created"`
	UsersCreated   int `json:"users_created"`
	ReviewsCreated int `json:"reviews_created"`
}

// Seeder fills an empty store with baseline books and users.
type Seeder struct {
	store  store.Gateway
	books  *BookService
	users  *UserService
	logger *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(store store.Gateway, books *BookService, users *UserService, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		books:  books,
		users:  users,
		logger: logger,
	}
}

// Seed creates the baseline books when there are no books and the baseline
// users when there are no users. Running it against a populated store
// changes nothing.
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	bookCount, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to count books")
	}
	if bookCount == 0 {
		for _, in := range baselineBooks {
			if _, err := s.books.Create(ctx, in); err != nil {
				return result, err
			}
			result.BooksCreated++
		}
	}

	userCount, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to count users")
	}
	if userCount == 0 {
		if err := s.seedUsers(ctx, result); err != nil {
			return result, err
		}
	}

	if result.BooksCreated > 0 || result.UsersCreated > 0 {
		s.logger.Info("baseline data seeded",
			"books", result.BooksCreated,
			"users", result.UsersCreated,
			"reviews", result.ReviewsCreated,
		)
	} else {
		s.logger.Debug("store already populated, nothing seeded")
	}
	return result, nil
}

func (s *Seeder) seedUsers(ctx context.Context, result *SeedResult) error {
	catalog, err := s.books.FindAll(ctx, nil)
	if err != nil {
		return err
	}

	for _, bu := range baselineUsers {
		in := bu.Input
		for _, book := range catalog[:min(bu.LibrarySize, len(catalog))] {
			in.Library = append(in.Library, book.ID)
		}

		created, err := s.users.Create(ctx, in)
		if domainerrors.Is(err, domainerrors.ErrConflict) {
			// A concurrent run seeded this account first.
			continue
		}
		if err != nil {
			return err
		}
		result.UsersCreated++

		if len(in.Library) == 0 {
			continue
		}
		if err := s.seedReview(ctx, created.Data.ID, in.Library[0], bu.Rating, bu.Comment); err != nil {
			return err
		}
		result.ReviewsCreated++
	}
	return nil
}

func (s *Seeder) seedReview(ctx context.Context, userID, bookID string, rating int, comment string) error {
	if !domain.ValidRating(rating) {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{"rating": "must be between 1 and 5"})
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return internalError(s.logger, err, "failed to generate review id")
	}

	review := &domain.Review{
		Entity:  domain.Entity{ID: reviewID},
		UserID:  userID,
		BookID:  bookID,
		Rating:  rating,
		Comment: comment,
	}
	review.InitTimestamps()

	if err := s.store.CreateReview(ctx, review); err != nil {
		return internalError(s.logger, err, "failed to seed review", "user_id", userID, "book_id", bookID)
	}
	return nil
}
