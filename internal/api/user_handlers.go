package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Description:   "Registers a user, optionally with an initial library. Emails are unique regardless of case.",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Lists users without their library or reviews",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user with library and reviews",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user",
		Description: "Updates the fields present in the request body. A new password is hashed before it is stored.",
		Tags:        []string{"Users"},
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes a user together with their library entries and reviews",
		Tags:        []string{"Users"},
	}, s.handleDeleteUser)
}

// === DTOs ===

// UserResponse is a user as exposed by the API. The password digest is never included.
type UserResponse struct {
	ID        string                 `json:"id" doc:"User ID"`
	Email     string                 `json:"email" doc:"Email address as registered"`
	Name      string                 `json:"name" doc:"Display name"`
	Phone     string                 `json:"phone,omitempty" doc:"Phone number"`
	CreatedAt time.Time              `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time              `json:"updated_at" doc:"Last update time"`
	Library   []LibraryEntryResponse `json:"library,omitempty" doc:"Books in the user's library, on single-user reads"`
	Reviews   []domain.Review        `json:"reviews,omitempty" doc:"Reviews written by the user, on single-user reads"`
}

// LibraryEntryResponse is one book in a user's library.
type LibraryEntryResponse struct {
	BookID  string        `json:"book_id" doc:"Book ID"`
	AddedAt time.Time     `json:"added_at" doc:"When the book joined the library"`
	Book    *BookResponse `json:"book,omitempty" doc:"The catalog entry"`
}

// CreateUserRequest is the request for creating a user.
type CreateUserRequest struct {
	Body service.CreateUserInput
}

// UserIDInput identifies a user by path.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UpdateUserRequest is the request for updating a user.
type UpdateUserRequest struct {
	ID   string `path:"id" doc:"User ID"`
	Body service.UpdateUserInput
}

// UserOutput wraps a single user.
type UserOutput struct {
	Body UserResponse
}

// UserListOutput wraps a list of users.
type UserListOutput struct {
	Body []UserResponse
}

// UserMessageOutput wraps the result of a user mutation.
type UserMessageOutput struct {
	Body MessageBody[UserResponse]
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserRequest) (*UserMessageOutput, error) {
	res, err := s.services.User.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return s.userMessage(res), nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	users, err := s.services.User.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, s.toUserResponse(u))
	}
	return &UserListOutput{Body: out}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	user, err := s.services.User.FindOne(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: s.toUserResponse(user)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserRequest) (*UserMessageOutput, error) {
	res, err := s.services.User.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return s.userMessage(res), nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*UserMessageOutput, error) {
	res, err := s.services.User.Remove(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return s.userMessage(res), nil
}

// === Helpers ===

func (s *Server) toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Reviews:   u.Reviews,
	}

	if len(u.Library) > 0 {
		resp.Library = make([]LibraryEntryResponse, 0, len(u.Library))
		for _, entry := range u.Library {
			item := LibraryEntryResponse{
				BookID:  entry.BookID,
				AddedAt: entry.AddedAt,
			}
			if entry.Book != nil {
				book := s.toBookResponse(entry.Book)
				item.Book = &book
			}
			resp.Library = append(resp.Library, item)
		}
	}
	return resp
}

func (s *Server) userMessage(res *service.Result[*domain.User]) *UserMessageOutput {
	return &UserMessageOutput{Body: MessageBody[UserResponse]{
		Message: res.Message,
		Data:    s.toUserResponse(res.Data),
	}}
}
