// Package service implements the catalog's business operations on top of
// the persistence gateway.
package service

import (
	"errors"
	"log/slog"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// Result is the outcome of a mutating operation: a human-readable message
// and the affected entity.
type Result[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func newResult[T any](message string, data T) *Result[T] {
	return &Result[T]{Message: message, Data: data}
}

// internalError logs an unexpected gateway failure and wraps it as an
// Internal domain error. The cause stays reachable through errors.Unwrap.
func internalError(logger *slog.Logger, err error, msg string, args ...any) error {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}
	logger.Error(msg, append(args, "error", err)...)
	return domainerrors.Wrap(err, domainerrors.CodeInternal, msg)
}
