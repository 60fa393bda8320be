package bundle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Source provides the raw bundled dataset.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileSource reads the dataset from a local file.
type FileSource struct {
	Path string
}

// Load reads the whole file.
func (s FileSource) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource fetches the dataset as a static asset with a single GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// Load downloads the asset.
func (s HTTPSource) Load(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %d fetching bundle", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle body: %w", err)
	}
	return data, nil
}
