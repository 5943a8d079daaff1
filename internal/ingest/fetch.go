package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	apperrors "github.com/intranet-tools/hr-knowledge-base/pkg/errors"
)

// Fetcher retrieves source documents by locator. http(s) locators are
// fetched over the network, anything else is treated as a filesystem path.
type Fetcher struct {
	client  *http.Client
	maxSize int64
}

func NewFetcher(maxSize int64, timeout time.Duration) *Fetcher {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

// Fetch returns the raw bytes of the document at locator, enforcing the
// configured size cap.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return f.fetchHTTP(ctx, locator)
	}
	return f.fetchFile(locator)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", apperrors.ErrSourceFetch, url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", apperrors.ErrSourceFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", apperrors.ErrSourceFetch, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrSourceFetch, url, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", apperrors.ErrSourceFetch, url, f.maxSize)
	}
	return data, nil
}

func (f *Fetcher) fetchFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrSourceFetch, path, err)
	}
	if info.Size() > f.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", apperrors.ErrSourceFetch, path, f.maxSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrSourceFetch, path, err)
	}
	return data, nil
}
