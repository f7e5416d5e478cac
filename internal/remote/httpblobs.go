package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/netx"
)

// HTTPBlobs uploads media through the backend: it asks for a presigned
// PUT URL and uploads directly to object storage, so large payloads never
// pass through the document API.
type HTTPBlobs struct {
	store *HTTPStore
}

// NewHTTPBlobs shares the document store's HTTP client.
func NewHTTPBlobs(store *HTTPStore) *HTTPBlobs {
	return &HTTPBlobs{store: store}
}

type presignResponse struct {
	URL string `json:"url"`
}

func (b *HTTPBlobs) Upload(ctx context.Context, path string, content []byte) error {
	resp, err := b.store.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"path": path}).
		Post("/v1/blobs/presign")
	if err != nil {
		return fmt.Errorf("%w: presign %s: %w", common.ErrRemoteUnavailable, path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: presign %s: status %d", common.ErrRemoteUnavailable, path, resp.StatusCode())
	}

	var pr presignResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return fmt.Errorf("decode presign response: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, pr.URL, content); err != nil {
		return fmt.Errorf("%w: upload %s: %w", common.ErrRemoteUnavailable, path, err)
	}
	return nil
}

func (b *HTTPBlobs) URL(ctx context.Context, path string) (string, error) {
	resp, err := b.store.client.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		Get("/v1/blobs/url")
	if err != nil {
		return "", fmt.Errorf("%w: blob url %s: %w", common.ErrRemoteUnavailable, path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: blob url %s: status %d", common.ErrRemoteUnavailable, path, resp.StatusCode())
	}

	var pr presignResponse
	if err := json.Unmarshal(resp.Body(), &pr); err != nil {
		return "", fmt.Errorf("decode blob url response: %w", err)
	}
	return pr.URL, nil
}
