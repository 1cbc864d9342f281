// Package storage reads stored submission artifacts from a configurable
// backend so handlers can stream them to authorized callers.
package storage

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer(
	"github.com/crowdforge/contest-api/internal/storage",
)

// ErrNotFound reports that the backend has no object at the given path.
var ErrNotFound = errors.New("storage: object not found")

//go:generate mockgen -destination ./mock/mock.go -package mock . Store

// Object is an opened artifact. Callers own Body and must close it.
type Object struct {
	Body io.ReadCloser
	Size int64
}

// Generic artifact retrieval interface
type Store interface {
	// Open the object stored at `path` for reading
	Open(ctx context.Context, path string) (*Object, error)
	// Provide an identifier for where files are read from. Useful for logging and auditing purposes.
	StoreIdentifier(ctx context.Context) (string, error)
}
