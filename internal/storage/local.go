package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ensure LocalStore implements Store interface.
var _ Store = (*LocalStore)(nil)

// Filesystem backed store rooted at a single directory
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// resolve joins path under the root and rejects anything that escapes it.
func (s *LocalStore) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotFound
	}
	return full, nil
}

func (s *LocalStore) Open(ctx context.Context, path string) (*Object, error) {
	_, span := tracer.Start(ctx, "LocalStore.Open", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	full, err := s.resolve(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "path escapes store root")
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			span.RecordError(nil)
			span.SetStatus(codes.Ok, "did not find file")
			return nil, ErrNotFound
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open file")
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stat file")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "opened file")
	return &Object{Body: f, Size: stat.Size()}, nil
}

func (s *LocalStore) StoreIdentifier(_ context.Context) (string, error) {
	return s.root, nil
}
