package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is set.
var ErrHTTPDisabled = errors.New("openapi: http loading disabled")

const maxDocumentBytes = 16 << 20

type loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

func (l loader) load(ctx context.Context, src Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("openapi: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.files == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.files, src.Location())
	case SourceKindURL:
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", src.Location(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openapi: %s is empty", src.Location())
	}
	return data, nil
}

func (l loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if l.client == nil {
		return nil, ErrHTTPDisabled
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}
