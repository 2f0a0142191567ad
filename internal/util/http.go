package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultFetchTimeout = 12 * time.Second

// FetchError reports a remote resource that could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads remote resources with a timeout and a size cap.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64 // 0 means unlimited
}

func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		MaxBytes: maxBytes,
	}
}

// GetBytes fetches url and returns the body. Non-2xx responses and bodies
// larger than MaxBytes are errors. All errors are *FetchError.
func (f *Fetcher) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var r io.Reader = resp.Body
	if f.MaxBytes > 0 {
		r = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if f.MaxBytes > 0 && int64(len(body)) > f.MaxBytes {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("body exceeds %d bytes", f.MaxBytes)}
	}
	return body, nil
}

// IsFetchError reports whether err came from a failed remote fetch.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
