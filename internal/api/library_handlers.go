package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToLibrary",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{id}/library/{bookID}",
		Summary:     "Add book to library",
		Description: "Adds a catalog book to the user's library",
		Tags:        []string{"Library"},
	}, s.handleAddToLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromLibrary",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}/library/{bookID}",
		Summary:     "Remove book from library",
		Description: "Removes a book from the user's library. The catalog book is kept.",
		Tags:        []string{"Library"},
	}, s.handleRemoveFromLibrary)
}

// LibraryEntryInput identifies one book in one user's library.
type LibraryEntryInput struct {
	ID     string `path:"id" doc:"User ID"`
	BookID string `path:"bookID" doc:"Book ID"`
}

func (s *Server) handleAddToLibrary(ctx context.Context, input *LibraryEntryInput) (*UserMessageOutput, error) {
	res, err := s.services.User.AddToLibrary(ctx, input.ID, input.BookID)
	if err != nil {
		return nil, err
	}
	return s.userMessage(res), nil
}

func (s *Server) handleRemoveFromLibrary(ctx context.Context, input *LibraryEntryInput) (*UserMessageOutput, error) {
	res, err := s.services.User.RemoveFromLibrary(ctx, input.ID, input.BookID)
	if err != nil {
		return nil, err
	}
	return s.userMessage(res), nil
}
