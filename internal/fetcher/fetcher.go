// Package fetcher downloads remote exports and decodes the delimited,
// compressed and legacy-encoded files the pipeline consumes.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. Any non-200
	// status is an error.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
