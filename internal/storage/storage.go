package storage

import (
	"context"
	"io"
)

// Object describes a single upload.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service stores published article documents in remote object storage.
type Service interface {
	// PutObject uploads obj and returns its s3:// location.
	PutObject(ctx context.Context, obj Object) (string, error)
}
