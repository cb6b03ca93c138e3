package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// enveloped is implemented by response bodies that carry a message next to their data.
type enveloped interface {
	envelopeParts() (message string, data any)
}

// EnvelopeTransformer wraps every huma response body in the standard
// {success, message, data, error} envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	var apiErr *APIError
	var domainErr *domainerrors.Error
	if err, ok := v.(error); ok {
		if errors.As(err, &domainErr) {
			env := response.Envelope{
				Success: false,
				Error:   domainErr.Message,
				Code:    string(domainErr.Code),
			}
			if domainErr.Code != domainerrors.CodeInternal {
				env.Details = domainErr.Details
			}
			return env, nil
		}
		if errors.As(err, &apiErr) {
			return response.Envelope{
				Success: false,
				Error:   apiErr.Message,
				Code:    apiErr.Code,
				Details: apiErr.Details,
			}, nil
		}
		return response.Envelope{
			Success: false,
			Error:   err.Error(),
			Code:    statusToCode(code),
		}, nil
	}

	if body, ok := v.(enveloped); ok {
		message, data := body.envelopeParts()
		return response.Envelope{
			Success: code < http.StatusBadRequest,
			Message: message,
			Data:    data,
		}, nil
	}

	return response.Envelope{
		Success: code == 0 || code < http.StatusBadRequest,
		Data:    v,
	}, nil
}

// MessageBody is the body of a mutating operation: the outcome message and the affected entity.
type MessageBody[T any] struct {
	Message string `json:"message" doc:"Outcome of the operation"`
	Data    T      `json:"data" doc:"Affected entity"`
}

func (b MessageBody[T]) envelopeParts() (string, any) {
	return b.Message, b.Data
}

// requestLogger logs one line per request with its status and duration.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("remote_ip", r.RemoteAddr),
			)
		})
	}
}

// corsHandler allows browser clients from the configured origins.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
