// internal/blobstore/open.go
package blobstore

import (
	"fmt"

	"github.com/javajoker/beatmarket/internal/config"
)

// Open returns the blob store selected by cfg.Driver.
func Open(cfg config.BlobConfig, aws config.AWSConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "local":
		return NewLocalStore(cfg.LocalDir)
	case "s3":
		return NewS3Store(aws)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
