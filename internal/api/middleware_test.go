package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"title": "Ficciones"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(response.Envelope)
	require.True(t, ok, "Expected response.Envelope type")

	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Message)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_MessageBody(t *testing.T) {
	body := MessageBody[string]{Message: "Book created successfully", Data: "book-1"}

	for _, v := range []any{body, &body} {
		result, err := EnvelopeTransformer(nil, "201", v)
		require.NoError(t, err)

		envelope := result.(response.Envelope)
		assert.True(t, envelope.Success)
		assert.Equal(t, "Book created successfully", envelope.Message)
		assert.Equal(t, "book-1", envelope.Data)
	}
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope := result.(response.Envelope)
	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Code)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"email": "must be a valid email address"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope := result.(response.Envelope)
	assert.False(t, envelope.Success)
	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, "validation failed", envelope.Error)
	assert.Equal(t, map[string]string{"email": "must be a valid email address"}, envelope.Details)
}

func TestEnvelopeTransformer_DomainErrors(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", domainerrors.Conflict("user already exists"))
	require.NoError(t, err)

	envelope := result.(response.Envelope)
	assert.Equal(t, "CONFLICT", envelope.Code)
	assert.Equal(t, "user already exists", envelope.Error)

	// Internal causes never reach the client.
	internal := domainerrors.Wrap(errors.New("disk I/O error"), domainerrors.CodeInternal, "failed to create user")
	result, err = EnvelopeTransformer(nil, "500", internal)
	require.NoError(t, err)

	envelope = result.(response.Envelope)
	assert.Equal(t, "INTERNAL", envelope.Code)
	assert.Equal(t, "failed to create user", envelope.Error)
	assert.Nil(t, envelope.Details)
}

func TestNewAPIError(t *testing.T) {
	t.Run("domain error keeps its status", func(t *testing.T) {
		err := newAPIError(http.StatusInternalServerError, "unexpected error occurred", domainerrors.NotFound("user not found"))
		assert.Equal(t, http.StatusNotFound, err.GetStatus())
		assert.Equal(t, "user not found", err.Error())
	})

	t.Run("store sentinel", func(t *testing.T) {
		err := newAPIError(http.StatusInternalServerError, "unexpected error occurred", store.ErrAlreadyExists.WithCause(errors.New("UNIQUE constraint failed")))
		assert.Equal(t, http.StatusConflict, err.GetStatus())
		assert.Equal(t, "CONFLICT", err.(*APIError).Code)
	})

	t.Run("schema violations become bad requests", func(t *testing.T) {
		err := newAPIError(http.StatusUnprocessableEntity, "validation failed", &huma.ErrorDetail{
			Message:  "expected required property title to be present",
			Location: "body",
		})
		require.Equal(t, http.StatusBadRequest, err.GetStatus())

		apiErr := err.(*APIError)
		assert.Equal(t, "VALIDATION", apiErr.Code)
		assert.Len(t, apiErr.Details, 1)
	})

	t.Run("plain status", func(t *testing.T) {
		err := newAPIError(http.StatusServiceUnavailable, "cover uploads are disabled")
		assert.Equal(t, http.StatusServiceUnavailable, err.GetStatus())
		assert.Equal(t, "INTERNAL", err.(*APIError).Code)
		assert.Nil(t, err.(*APIError).Details)
	})
}
