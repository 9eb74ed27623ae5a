// internal/blobstore/store.go
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	BucketAudio = "audio"
	BucketWav   = "audio-wav"

	audioScheme = "blob://"
	wavScheme   = "blob-wav://"
)

var (
	ErrNotFound    = errors.New("blobstore: object not found")
	ErrTooLarge    = errors.New("blobstore: payload too large")
	ErrUnsupported = errors.New("blobstore: unsupported file type")
)

// AllowedAudioTypes lists the accepted upload extensions.
var AllowedAudioTypes = []string{".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac"}

// Payload is an uploaded file on its way into a bucket.
type Payload struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Object is a stored blob read back from a bucket.
type Object struct {
	Data        []byte
	ContentType string
}

func (o *Object) Size() int64 {
	return int64(len(o.Data))
}

// Store keeps binary payloads in named buckets keyed by id.
type Store interface {
	Put(ctx context.Context, bucket, id string, payload *Payload) error
	Get(ctx context.Context, bucket, id string) (*Object, error)
	Delete(ctx context.Context, bucket, id string) error
}

// AudioRef is the sentinel recorded in a beat's audio URL for a primary payload.
func AudioRef(id string) string {
	return audioScheme + id
}

// WavRef is the sentinel recorded in a beat's wav URL.
func WavRef(id string) string {
	return wavScheme + id
}

// ParseRef resolves a sentinel reference to its bucket and id. Remote URLs
// return ok=false.
func ParseRef(ref string) (bucket, id string, ok bool) {
	switch {
	case strings.HasPrefix(ref, wavScheme):
		id = strings.TrimPrefix(ref, wavScheme)
		bucket = BucketWav
	case strings.HasPrefix(ref, audioScheme):
		id = strings.TrimPrefix(ref, audioScheme)
		bucket = BucketAudio
	default:
		return "", "", false
	}
	if id == "" {
		return "", "", false
	}
	return bucket, id, true
}

// Validate checks size and extension before a payload is stored.
func Validate(payload *Payload, maxSize int64, allowedTypes []string) error {
	if payload == nil || len(payload.Data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrUnsupported)
	}
	if maxSize > 0 && int64(len(payload.Data)) > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(payload.Data), maxSize)
	}
	if len(allowedTypes) == 0 || payload.FileName == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(payload.FileName))
	for _, allowed := range allowedTypes {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

func contentTypeOf(payload *Payload) string {
	if payload.ContentType != "" {
		return payload.ContentType
	}
	switch strings.ToLower(filepath.Ext(payload.FileName)) {
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".m4a", ".aac":
		return "audio/mp4"
	default:
		return "audio/mpeg"
	}
}
