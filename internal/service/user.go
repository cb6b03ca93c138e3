package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// PasswordHasher turns plaintext passwords into digests and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) (bool, error)
}

// UserService manages user accounts and their libraries.
type UserService struct {
	store     store.Gateway
	hasher    PasswordHasher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Gateway, hasher PasswordHasher, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		hasher:    hasher,
		validator: validator,
		logger:    logger,
	}
}

// CreateUserInput holds the fields of a new account. Library lists the ids
// of books the user starts with.
type CreateUserInput struct {
	Email    string   `json:"email" validate:"required,email,max=254"`
	Password string   `json:"password" validate:"required,max=72"`
	Name     string   `json:"name,omitempty" validate:"max=200"`
	Phone    string   `json:"phone,omitempty" validate:"max=32"`
	Library  []string `json:"library,omitempty" validate:"dive,required"`
}

// UpdateUserInput holds a partial account update. Nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=72"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// Create registers a user. The password is hashed before it reaches the
// store, and the unique email index is the only duplicate check: a
// case-insensitive collision yields Conflict without writing anything.
// The returned user carries its library and reviews.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*Result[*domain.User], error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	digest, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to generate user id")
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        in.Email,
		PasswordHash: digest,
		Name:         normalize.Text(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
	}
	user.InitTimestamps()

	err = s.store.CreateUser(ctx, user, in.Library)
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return nil, domainerrors.Conflict("user already exists")
	case errors.Is(err, store.ErrReferenceNotFound):
		return nil, domainerrors.NotFound("library references a book that does not exist")
	case err != nil:
		return nil, internalError(s.logger, err, "failed to create user")
	}

	created, err := s.store.GetUser(ctx, userID, true)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to load created user", "user_id", userID)
	}

	s.logger.Info("user created", "user_id", userID, "library_size", len(created.Library))
	return newResult("User created successfully", created), nil
}

// FindByEmail returns the user whose stored email equals email exactly,
// or nil when there is none.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to find user by email")
	}
	return user, nil
}

// FindAll lists every user without relations.
func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to list users")
	}
	return users, nil
}

// FindOne returns a user with library and reviews.
func (s *UserService) FindOne(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID, true)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("user not found")
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to get user", "user_id", userID)
	}
	return user, nil
}

// Update applies a partial update. A new password is hashed first. The
// write is attempted directly and its failure classified.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*Result[*domain.User], error) {
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		in.Email = &email
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	patch := store.UserPatch{
		Email: in.Email,
		Name:  trimmed(in.Name),
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		patch.Phone = &phone
	}
	if in.Password != nil {
		digest, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &digest
	}

	user, err := s.store.UpdateUser(ctx, userID, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, domainerrors.NotFound("user not found")
	case errors.Is(err, store.ErrAlreadyExists):
		return nil, domainerrors.Conflict("user already exists")
	case err != nil:
		return nil, internalError(s.logger, err, "failed to update user", "user_id", userID)
	}

	return newResult("User updated successfully", user), nil
}

// Remove deletes a user and returns it. Library entries and reviews go with it.
func (s *UserService) Remove(ctx context.Context, userID string) (*Result[*domain.User], error) {
	user, err := s.store.DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("user not found")
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to delete user", "user_id", userID)
	}

	s.logger.Info("user deleted", "user_id", userID)
	return newResult("User deleted successfully", user), nil
}

// AddToLibrary puts a book into the user's library and returns the user
// with relations.
func (s *UserService) AddToLibrary(ctx context.Context, userID, bookID string) (*Result[*domain.User], error) {
	_, err := s.store.AddLibraryEntry(ctx, userID, bookID)
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		return nil, domainerrors.Conflict("book already in library")
	case errors.Is(err, store.ErrReferenceNotFound):
		return nil, s.missingReference(ctx, userID, bookID)
	case err != nil:
		return nil, internalError(s.logger, err, "failed to add book to library", "user_id", userID, "book_id", bookID)
	}

	user, err := s.FindOne(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newResult("Book added to library", user), nil
}

// RemoveFromLibrary takes a book out of the user's library and returns the
// user with relations.
func (s *UserService) RemoveFromLibrary(ctx context.Context, userID, bookID string) (*Result[*domain.User], error) {
	err := s.store.RemoveLibraryEntry(ctx, userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("book not in library")
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to remove book from library", "user_id", userID, "book_id", bookID)
	}

	user, err := s.FindOne(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newResult("Book removed from library", user), nil
}

// Authenticate checks a password against the stored digest of the account
// with the given email, compared case-insensitively. An unknown email and a
// wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.store.GetUserByEmailKey(ctx, normalize.Email(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	if err != nil {
		return nil, internalError(s.logger, err, "failed to look up user for authentication")
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, internalError(s.logger, err, "failed to verify password", "user_id", user.ID)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	digest, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword):
		return "", domainerrors.ValidationWithDetails("validation failed", map[string]string{"password": "is required"})
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "", domainerrors.ValidationWithDetails("validation failed", map[string]string{"password": "must not exceed 72 bytes"})
	case err != nil:
		return "", internalError(s.logger, err, "failed to hash password")
	}
	return digest, nil
}

// missingReference reports which side of a library entry does not exist.
func (s *UserService) missingReference(ctx context.Context, userID, bookID string) error {
	if _, err := s.store.GetUser(ctx, userID, false); errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("user not found")
	}
	return domainerrors.NotFoundf("book %s not found", bookID)
}
