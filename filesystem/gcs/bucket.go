package gcs

import (
	"context"
	"io"
	"mime"
	"path"
	"time"

	"cloud.google.com/go/storage"
)

// bucket is the slice of the GCS client the driver needs.
type bucket interface {
	Attrs(ctx context.Context, name string) error
	// Write stores content. With ifAbsent the write fails with HTTP 412 when
	// the object already exists.
	Write(ctx context.Context, name string, content []byte, ifAbsent bool) error
	Read(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	Copy(ctx context.Context, src, dst string) error
	SignedURL(name string, ttl time.Duration) (string, error)
}

type handle struct {
	h *storage.BucketHandle
}

func (b handle) Attrs(ctx context.Context, name string) error {
	_, err := b.h.Object(name).Attrs(ctx)
	return err
}

func (b handle) Write(ctx context.Context, name string, content []byte, ifAbsent bool) error {
	obj := b.h.Object(name)
	if ifAbsent {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(name))
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b handle) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.h.Object(name).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck // read side
	return io.ReadAll(r)
}

func (b handle) Delete(ctx context.Context, name string) error {
	return b.h.Object(name).Delete(ctx)
}

func (b handle) Copy(ctx context.Context, src, dst string) error {
	_, err := b.h.Object(dst).CopierFrom(b.h.Object(src)).Run(ctx)
	return err
}

func (b handle) SignedURL(name string, ttl time.Duration) (string, error) {
	return b.h.SignedURL(name, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
}
