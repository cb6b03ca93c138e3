package sqlite

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
var userColumns = []any{
	"id", "created_at", "updated_at", "email", "email_key", "password_hash", "name", "phone",
}

type userRow struct {
	ID           string `db:"id"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
	Email        string `db:"email"`
	EmailKey     string `db:"email_key"`
	PasswordHash string `db:"password_hash"`
	Name         string `db:"name"`
	Phone        string `db:"phone"`
}

func (r *userRow) toDomain() (*domain.User, error) {
	u := &domain.User{
		Entity:       domain.Entity{ID: r.ID},
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Phone:        r.Phone,
	}
	var err error
	if u.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user together with its initial library in one
// transaction. Duplicate book ids are collapsed. The email key is derived
// from the email here so every insert path enforces uniqueness the same way.
func (s *Store) CreateUser(ctx context.Context, u *domain.User, bookIDs []string) error {
	record := goqu.Record{
		"id":            u.ID,
		"created_at":    formatTime(u.CreatedAt),
		"updated_at":    formatTime(u.UpdatedAt),
		"email":         u.Email,
		"email_key":     normalize.Email(u.Email),
		"password_hash": u.PasswordHash,
		"name":          u.Name,
		"phone":         u.Phone,
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := exec(ctx, tx, dialect.Insert("users").Rows(record).Prepared(true)); err != nil {
			return err
		}

		seen := make(map[string]bool, len(bookIDs))
		for _, bookID := range bookIDs {
			if seen[bookID] {
				continue
			}
			seen[bookID] = true
			if err := insertLibraryEntry(ctx, tx, u.ID, bookID, u.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func getUser(ctx context.Context, q sqlx.QueryerContext, where goqu.Ex) (*domain.User, error) {
	var row userRow
	if err := get(ctx, q, &row, dialect.From("users").Select(userColumns...).Where(where).Prepared(true)); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// GetUser retrieves a user by ID. With relations, the library (joined with
// books) and the user's reviews are loaded as well.
func (s *Store) GetUser(ctx context.Context, id string, withRelations bool) (*domain.User, error) {
	u, err := getUser(ctx, s.db, goqu.Ex{"id": id})
	if err != nil {
		return nil, err
	}
	if !withRelations {
		return u, nil
	}

	if u.Library, err = s.ListLibrary(ctx, id); err != nil {
		return nil, err
	}
	if u.Reviews, err = s.ListReviewsByUser(ctx, id); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by the email exactly as stored.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return getUser(ctx, s.db, goqu.Ex{"email": email})
}

// GetUserByEmailKey retrieves a user by normalized email.
func (s *Store) GetUserByEmailKey(ctx context.Context, key string) (*domain.User, error) {
	return getUser(ctx, s.db, goqu.Ex{"email_key": key})
}

// ListUsers returns every user in insertion order, without relations.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	ds := dialect.From("users").Select(userColumns...).Order(insertionOrder()...).Prepared(true)
	if err := selectAll(ctx, s.db, &rows, ds); err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return count(ctx, s.db, "users")
}

// UpdateUser applies patch to the user and returns the stored result.
// An empty patch performs no write.
func (s *Store) UpdateUser(ctx context.Context, id string, patch store.UserPatch) (*domain.User, error) {
	if patch.IsEmpty() {
		return s.GetUser(ctx, id, false)
	}

	record := goqu.Record{"updated_at": formatTime(time.Now())}
	if patch.Email != nil {
		record["email"] = *patch.Email
		record["email_key"] = normalize.Email(*patch.Email)
	}
	if patch.PasswordHash != nil {
		record["password_hash"] = *patch.PasswordHash
	}
	if patch.Name != nil {
		record["name"] = *patch.Name
	}
	if patch.Phone != nil {
		record["phone"] = *patch.Phone
	}

	var updated *domain.User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, dialect.Update("users").Set(record).Where(goqu.Ex{"id": id}).Prepared(true))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		updated, err = getUser(ctx, tx, goqu.Ex{"id": id})
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser removes a user and returns it as it was before deletion.
// Library entries and reviews are removed by cascade.
func (s *Store) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	var deleted *domain.User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if deleted, err = getUser(ctx, tx, goqu.Ex{"id": id}); err != nil {
			return err
		}
		n, err := exec(ctx, tx, dialect.Delete("users").Where(goqu.Ex{"id": id}).Prepared(true))
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
