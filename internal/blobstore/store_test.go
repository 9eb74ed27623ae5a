// internal/blobstore/store_test.go
package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/beatmarket/internal/config"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, BucketAudio, "beat-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, BucketAudio, "beat-1", &Payload{Data: []byte("ID3mp3"), FileName: "loop.mp3"}))
	require.NoError(t, store.Put(ctx, BucketWav, "beat-1", &Payload{Data: []byte("RIFFwav"), ContentType: "audio/x-wav"}))

	obj, err := store.Get(ctx, BucketAudio, "beat-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), obj.Data)
	assert.Equal(t, "audio/mpeg", obj.ContentType)
	assert.Equal(t, int64(6), obj.Size())

	obj, err = store.Get(ctx, BucketWav, "beat-1")
	require.NoError(t, err)
	assert.Equal(t, "audio/x-wav", obj.ContentType)

	require.NoError(t, store.Delete(ctx, BucketAudio, "beat-1"))
	require.NoError(t, store.Delete(ctx, BucketAudio, "beat-1"))
	_, err = store.Get(ctx, BucketAudio, "beat-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	err = store.Put(context.Background(), BucketAudio, "../escape", &Payload{Data: []byte("x")})
	assert.Error(t, err)
}

func TestParseRef(t *testing.T) {
	bucket, id, ok := ParseRef(AudioRef("b1"))
	assert.True(t, ok)
	assert.Equal(t, BucketAudio, bucket)
	assert.Equal(t, "b1", id)

	bucket, id, ok = ParseRef(WavRef("b1"))
	assert.True(t, ok)
	assert.Equal(t, BucketWav, bucket)
	assert.Equal(t, "b1", id)

	_, _, ok = ParseRef("https://cdn.example.com/beat.mp3")
	assert.False(t, ok)
	_, _, ok = ParseRef("blob://")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&Payload{Data: []byte("abc"), FileName: "a.MP3"}, 10, AllowedAudioTypes))
	assert.ErrorIs(t, Validate(&Payload{Data: []byte("abcdef"), FileName: "a.mp3"}, 3, AllowedAudioTypes), ErrTooLarge)
	assert.ErrorIs(t, Validate(&Payload{Data: []byte("abc"), FileName: "a.exe"}, 10, AllowedAudioTypes), ErrUnsupported)
	assert.ErrorIs(t, Validate(nil, 10, AllowedAudioTypes), ErrUnsupported)
}

func TestOpen(t *testing.T) {
	store, err := Open(config.BlobConfig{Driver: "memory"}, config.AWSConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open(config.BlobConfig{Driver: "ftp"}, config.AWSConfig{})
	assert.Error(t, err)
}
