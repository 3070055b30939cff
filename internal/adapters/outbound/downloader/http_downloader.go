package downloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type httpDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPDownloader fetches direct media URLs for URL submissions. The size
// ceiling matches the upload limit so URL jobs cannot bypass it.
func NewHTTPDownloader(maxBytes int64) ports.MediaDownloader {
	return &httpDownloader{
		client: &http.Client{
			Timeout: 15 * time.Minute,
		},
		maxBytes: maxBytes,
	}
}

func (d *httpDownloader) Fetch(ctx context.Context, rawURL, destPath string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrInvalidSource, rawURL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	size, err := io.Copy(out, io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	if size > d.maxBytes {
		return "", 0, fmt.Errorf("%w: source exceeds %d bytes", domain.ErrFileTooLarge, d.maxBytes)
	}

	return remoteFilename(resp, rawURL), size, nil
}

// remoteFilename prefers the Content-Disposition name, then the URL path
// base.
func remoteFilename(resp *http.Response, rawURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "download"
}
