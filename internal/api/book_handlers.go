package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Lists books in insertion order, optionally capped by quantity",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Updates the fields present in the request body",
		Tags:        []string{"Books"},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book together with the library entries and reviews that reference it",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse is a catalog book with its resolved cover URL.
type BookResponse struct {
	domain.Book
	CoverURL string `json:"cover_url" doc:"Cover image URL, the default cover when the book has none"`
}

// CreateBookRequest is the request for creating a book.
type CreateBookRequest struct {
	Body service.CreateBookInput
}

// ListBooksInput contains the list query.
type ListBooksInput struct {
	Quantity string `query:"quantity" doc:"Maximum number of books to return; missing or non-numeric returns all"`
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// UpdateBookRequest is the request for updating a book.
type UpdateBookRequest struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.UpdateBookInput
}

// BookOutput wraps a single book.
type BookOutput struct {
	Body BookResponse
}

// BookListOutput wraps a list of books.
type BookListOutput struct {
	Body []BookResponse
}

// BookMessageOutput wraps the result of a book mutation.
type BookMessageOutput struct {
	Body MessageBody[BookResponse]
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookRequest) (*BookMessageOutput, error) {
	res, err := s.services.Book.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return s.bookMessage(res), nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookListOutput, error) {
	books, err := s.services.Book.FindAll(ctx, parseQuantity(input.Quantity))
	if err != nil {
		return nil, err
	}

	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, s.toBookResponse(b))
	}
	return &BookListOutput{Body: out}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.FindOne(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: s.toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookRequest) (*BookMessageOutput, error) {
	res, err := s.services.Book.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return s.bookMessage(res), nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*BookMessageOutput, error) {
	res, err := s.services.Book.Remove(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.bookMessage(res), nil
}

// === Helpers ===

func (s *Server) toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		Book:     *b,
		CoverURL: b.CoverOrDefault(s.options.DefaultCover),
	}
}

func (s *Server) bookMessage(res *service.Result[*domain.Book]) *BookMessageOutput {
	return &BookMessageOutput{Body: MessageBody[BookResponse]{
		Message: res.Message,
		Data:    s.toBookResponse(res.Data),
	}}
}

// parseQuantity turns the quantity query parameter into a FindAll limit.
// Anything that is not an integer means no limit.
func parseQuantity(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}
