package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "sitecms/internal/errors"
	"sitecms/internal/model"
)

// LiveSource fetches the content a page currently has on the live deployment.
type LiveSource interface {
	Fetch(ctx context.Context, page string) (model.Document, error)
}

// maxLiveBody caps the size of a live content response.
const maxLiveBody = 4 << 20

type httpLiveSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPLiveSource fetches {baseURL}/api/content/{page}. A zero timeout disables it.
func NewHTTPLiveSource(baseURL string, timeout time.Duration) LiveSource {
	return &httpLiveSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch returns the live document, or ErrRemoteFetch when it is unreachable, missing or empty.
func (s *httpLiveSource) Fetch(ctx context.Context, page string) (model.Document, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("%w: live site URL not configured", apperrors.ErrRemoteFetch)
	}
	endpoint := s.baseURL + "/api/content/" + url.PathEscape(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrRemoteFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRemoteFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: live site returned status %d", apperrors.ErrRemoteFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLiveBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperrors.ErrRemoteFetch, err)
	}

	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", apperrors.ErrRemoteFetch, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: no live content for %q", apperrors.ErrRemoteFetch, page)
	}
	return doc, nil
}
