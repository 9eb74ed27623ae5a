// internal/services/manifest.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/javajoker/beatmarket/internal/models"
)

const manifestTimeout = 10 * time.Second

// loadManifest reads a starter catalog from a file path or an http(s) URL.
func loadManifest(ctx context.Context, source string) ([]models.Beat, error) {
	if source == "" {
		return nil, nil
	}

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetchManifest(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var beats []models.Beat
	if err := json.Unmarshal(data, &beats); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	out := make([]models.Beat, 0, len(beats))
	now := time.Now().UTC()
	for _, beat := range beats {
		if beat.ID == "" {
			continue
		}
		if beat.Tags == nil {
			beat.Tags = []string{}
		}
		if beat.Currency == "" {
			beat.Currency = models.CurrencyRUB
		}
		if beat.CreatedAt.IsZero() {
			beat.CreatedAt = now
		}
		out = append(out, beat)
	}
	return out, nil
}

func fetchManifest(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest request returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
