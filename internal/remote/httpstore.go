package remote

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/famvault/famvault/internal/common"
	"github.com/famvault/famvault/internal/logging"
)

// HTTPStore talks to the archive backend's document API. Live
// subscriptions are implemented as change polling: the backend has no
// push channel, so each subscription re-fetches its path on an interval
// and emits only when the content fingerprint changes.
type HTTPStore struct {
	client       *resty.Client
	pollInterval time.Duration
	log          logging.Logger
}

// NewHTTPStore returns a store rooted at baseURL. pollInterval governs
// how often subscriptions re-fetch their path.
func NewHTTPStore(baseURL string, pollInterval time.Duration, log logging.Logger) *HTTPStore {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &HTTPStore{client: c, pollInterval: pollInterval, log: log}
}

func (s *HTTPStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get("/v1/ping")
	if err != nil {
		return fmt.Errorf("%w: ping: %w", common.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: ping status %d", common.ErrRemoteUnavailable, resp.StatusCode())
	}
	return nil
}

func (s *HTTPStore) UpsertDocument(ctx context.Context, collectionPath, id string, data Document) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(data).
		SetQueryParam("merge", "true").
		Put(fmt.Sprintf("/v1/%s/%s", collectionPath, id))
	if err != nil {
		return fmt.Errorf("%w: upsert %s/%s: %w", common.ErrRemoteUnavailable, collectionPath, id, err)
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: upsert %s/%s: status %d: %s",
			common.ErrRemoteUnavailable, collectionPath, id, resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *HTTPStore) GetDocument(ctx context.Context, collectionPath, id string) (Document, error) {
	resp, err := s.client.R().SetContext(ctx).Get(fmt.Sprintf("/v1/%s/%s", collectionPath, id))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", common.ErrRemoteUnavailable, collectionPath, id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, common.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: get %s/%s: status %d",
			common.ErrRemoteUnavailable, collectionPath, id, resp.StatusCode())
	}

	var d Document
	if err := json.Unmarshal(resp.Body(), &d); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collectionPath, id, err)
	}
	return d, nil
}

func (s *HTTPStore) QueryCollection(ctx context.Context, collectionPath string, filter map[string]string) ([]Document, error) {
	req := s.client.R().SetContext(ctx)
	for k, v := range filter {
		req.SetQueryParam(k, v)
	}
	resp, err := req.Get("/v1/" + collectionPath)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", common.ErrRemoteUnavailable, collectionPath, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: query %s: status %d",
			common.ErrRemoteUnavailable, collectionPath, resp.StatusCode())
	}

	var docs []Document
	if err := json.Unmarshal(resp.Body(), &docs); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", collectionPath, err)
	}
	return docs, nil
}

// Subscribe polls path until stopped. A fetch error is reported through
// onError and polling continues; only the stop function ends the stream.
func (s *HTTPStore) Subscribe(path string, onSnapshot func([]Document), onError func(error)) (func(), error) {
	done := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var lastFingerprint [sha256.Size]byte
		seen := false

		poll := func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.pollInterval)
			defer cancel()

			resp, err := s.client.R().SetContext(ctx).Get("/v1/" + path)
			if err != nil {
				onError(fmt.Errorf("%w: watch %s: %w", common.ErrRemoteUnavailable, path, err))
				return
			}
			if resp.StatusCode() == http.StatusNotFound {
				// Path does not exist yet; keep waiting for it to appear.
				return
			}
			if resp.StatusCode() != http.StatusOK {
				onError(fmt.Errorf("%w: watch %s: status %d",
					common.ErrRemoteUnavailable, path, resp.StatusCode()))
				return
			}

			body := resp.Body()
			fingerprint := sha256.Sum256(body)
			if seen && fingerprint == lastFingerprint {
				return
			}

			docs, err := decodeSnapshot(body)
			if err != nil {
				onError(fmt.Errorf("watch %s: %w", path, err))
				return
			}

			lastFingerprint = fingerprint
			seen = true
			s.log.Debug(ctx, "snapshot changed", "path", path, "documents", len(docs))
			onSnapshot(docs)
		}

		poll()
		for {
			select {
			case <-ticker.C:
				poll()
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		stopOnce.Do(func() { close(done) })
	}
	return stop, nil
}

// decodeSnapshot accepts either a collection (array) or a single document
// (object) body, matching what the path addresses.
func decodeSnapshot(body []byte) ([]Document, error) {
	var docs []Document
	if err := json.Unmarshal(body, &docs); err == nil {
		return docs, nil
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return []Document{doc}, nil
}
