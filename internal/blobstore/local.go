// internal/blobstore/local.go
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

const contentTypeSuffix = ".content-type"

// LocalStore writes payloads under dir/<bucket>/<id>. A lock file in dir
// serializes writers across processes sharing the directory.
type LocalStore struct {
	mu   sync.RWMutex
	dir  string
	lock *flock.Flock
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &LocalStore{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".blobstore.lock")),
	}, nil
}

func (l *LocalStore) objectPath(bucket, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid blob id %q", id)
	}
	return filepath.Join(l.dir, bucket, id), nil
}

func (l *LocalStore) Put(ctx context.Context, bucket, id string, payload *Payload) error {
	path, err := l.objectPath(bucket, id)
	if err != nil {
		return err
	}
	if err := l.withLock(ctx, false, func() error {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, payload.Data, 0o644); err != nil {
			return err
		}
		if err := os.Rename(tmp, path); err != nil {
			return err
		}
		return os.WriteFile(path+contentTypeSuffix, []byte(contentTypeOf(payload)), 0o644)
	}); err != nil {
		return fmt.Errorf("write blob %s/%s: %w", bucket, id, err)
	}
	return nil
}

func (l *LocalStore) Get(ctx context.Context, bucket, id string) (*Object, error) {
	path, err := l.objectPath(bucket, id)
	if err != nil {
		return nil, err
	}
	var obj Object
	err = l.withLock(ctx, true, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		obj.Data = data
		if contentType, err := os.ReadFile(path + contentTypeSuffix); err == nil {
			obj.ContentType = string(contentType)
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s/%s: %w", bucket, id, err)
	}
	if obj.ContentType == "" {
		obj.ContentType = contentTypeOf(&Payload{FileName: id})
	}
	return &obj, nil
}

func (l *LocalStore) Delete(ctx context.Context, bucket, id string) error {
	path, err := l.objectPath(bucket, id)
	if err != nil {
		return err
	}
	return l.withLock(ctx, false, func() error {
		for _, p := range []string{path, path + contentTypeSuffix} {
			if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("delete blob %s/%s: %w", bucket, id, err)
			}
		}
		return nil
	})
}

func (l *LocalStore) withLock(ctx context.Context, shared bool, op func() error) error {
	var err error
	if shared {
		l.mu.RLock()
		defer l.mu.RUnlock()
		err = l.lock.RLock()
	} else {
		l.mu.Lock()
		defer l.mu.Unlock()
		err = l.lock.Lock()
	}
	if err != nil {
		return fmt.Errorf("acquire blob lock: %w", err)
	}
	defer l.lock.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return op()
}
