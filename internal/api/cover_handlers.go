package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/media/covers"
)

func (s *Server) registerCoverRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "uploadBookCover",
		Method:       http.MethodPost,
		Path:         "/api/v1/books/{id}/cover",
		Summary:      "Upload book cover",
		Description:  "Stores a JPEG, PNG, GIF or WebP image as the book's cover. The request body is the raw image.",
		Tags:         []string{"Covers"},
		MaxBodyBytes: covers.MaxSize,
	}, s.handleUploadBookCover)

	// Stored covers are plain files.
	s.router.Get(covers.PublicPrefix+"{name}", s.handleServeCover)
}

// UploadBookCoverInput contains the raw image upload.
type UploadBookCoverInput struct {
	ID          string `path:"id" doc:"Book ID"`
	ContentType string `header:"Content-Type" doc:"Image content type"`
	RawBody     []byte
}

func (s *Server) handleUploadBookCover(ctx context.Context, input *UploadBookCoverInput) (*BookMessageOutput, error) {
	if s.covers == nil {
		return nil, huma.Error503ServiceUnavailable("cover uploads are disabled")
	}

	stored, err := s.covers.Save(input.RawBody)
	switch {
	case errors.Is(err, covers.ErrEmptyImage):
		return nil, huma.Error400BadRequest("cover image is empty")
	case errors.Is(err, covers.ErrTooLarge):
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "cover image exceeds 10MB")
	case errors.Is(err, covers.ErrTooManyPixels):
		return nil, huma.Error400BadRequest("cover image dimensions exceed 40 megapixels")
	case errors.Is(err, covers.ErrUnsupportedFormat):
		s.logger.Warn("rejected cover upload",
			"book_id", input.ID,
			"content_type", input.ContentType,
			"error", err,
		)
		return nil, huma.Error400BadRequest("cover must be a JPEG, PNG, GIF or WebP image")
	case err != nil:
		s.logger.Error("failed to store cover", "book_id", input.ID, "error", err)
		return nil, huma.Error500InternalServerError("failed to store cover")
	}

	res, err := s.services.Book.SetCover(ctx, input.ID, stored)
	if err != nil {
		if delErr := s.covers.Delete(stored.Path); delErr != nil {
			s.logger.Warn("failed to remove unused cover", "cover", stored.Path, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("book cover uploaded",
		"book_id", input.ID,
		"format", stored.Format,
		"width", stored.Width,
		"height", stored.Height,
		"size", stored.Size,
	)
	return s.bookMessage(res), nil
}

// handleServeCover streams a stored cover file.
func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	if s.covers == nil || !s.covers.Exists(r.URL.Path) {
		response.NotFound(w, "cover not found", s.logger)
		return
	}

	path, err := s.covers.Path(r.URL.Path)
	if err != nil {
		response.NotFound(w, "cover not found", s.logger)
		return
	}

	// File names are never reused.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, path)
}
