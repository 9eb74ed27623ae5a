// internal/services/persistence.go
package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/beatmarket/internal/storage"
)

// persister writes collections through to the key-value store. Write failures
// are logged and dropped: the in-memory copy stays authoritative.
type persister struct {
	store storage.KVStore
	log   logrus.FieldLogger
}

func newPersister(store storage.KVStore, log logrus.FieldLogger) *persister {
	return &persister{store: store, log: log}
}

func (p *persister) save(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		p.warn(key, "encode", err)
		return
	}
	if err := p.store.Set(ctx, key, data); err != nil {
		p.warn(key, "write", err)
	}
}

func (p *persister) remove(ctx context.Context, key string) {
	if err := p.store.Delete(ctx, key); err != nil {
		p.warn(key, "delete", err)
	}
}

func (p *persister) keys(ctx context.Context, prefix string) []string {
	keys, err := p.store.Keys(ctx, prefix)
	if err != nil {
		p.warn(prefix+"*", "list", err)
		return nil
	}
	return keys
}

func (p *persister) warn(key, op string, err error) {
	p.log.WithFields(logrus.Fields{
		"key": key,
		"op":  op,
	}).WithError(err).Warn("persistence warning")
}

// load decodes key into out. It reports false when the key is absent,
// unreadable or corrupted; a corrupted value is deleted.
func (p *persister) load(ctx context.Context, key string, out interface{}) bool {
	data, err := p.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		p.warn(key, "read", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		p.log.WithField("key", key).WithError(err).Warn("Discarding corrupted stored value")
		p.remove(ctx, key)
		return false
	}
	return true
}

// loadSlice reads a JSON array collection, falling back to def.
func loadSlice[T any](ctx context.Context, p *persister, key string, def []T) ([]T, bool) {
	var items []T
	if !p.load(ctx, key, &items) {
		return def, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}
