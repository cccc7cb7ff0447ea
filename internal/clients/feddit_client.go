package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/polarity/internal/models"
)

var ErrUpstreamUnavailable = errors.New("upstream service unavailable")

// FetchError describes a failed upstream call. StatusCode is zero when no
// response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[FedditClient] GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("[FedditClient] GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrUpstreamUnavailable }

type FedditClient struct {
	BaseURL string
	Client  *http.Client

	subfedditPageSize int
}

func NewFedditClient(baseURL string, timeout time.Duration, subfedditPageSize int) *FedditClient {
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &FedditClient{
		BaseURL:           strings.TrimRight(baseURL, "/"),
		Client:            &http.Client{Timeout: timeout},
		subfedditPageSize: subfedditPageSize,
	}
}

// FetchJSON performs a single GET and decodes the body into out. Every failure
// is returned as a *FetchError.
func (fc *FedditClient) FetchJSON(ctx context.Context, rawURL string, out any) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := fc.Client.Do(req)
	if err != nil {
		slog.Error("[FedditClient] Request failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Error("[FedditClient] Unexpected status code",
			slog.String("url", rawURL),
			slog.Int("statusCode", resp.StatusCode))
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("[FedditClient] Failed to read response body",
			slog.String("url", rawURL),
			slog.String("error", err.Error()))
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.Error("[FedditClient] Failed to parse JSON response",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
			getPreview(body))
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}

	slog.Debug("[FedditClient] Request successful",
		slog.String("url", rawURL),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (fc *FedditClient) FetchSubfeddits(ctx context.Context) ([]models.Subfeddit, error) {
	params := url.Values{}
	params.Set("skip", "0")
	if fc.subfedditPageSize > 0 {
		params.Set("limit", strconv.Itoa(fc.subfedditPageSize))
	}

	var response models.SubfedditListResponse
	if err := fc.FetchJSON(ctx, fc.endpoint(FEDDIT_SUBFEDDITS_PATH, params), &response); err != nil {
		return nil, err
	}

	slog.Info("[FedditClient] Fetched subfeddits", slog.Int("count", len(response.Subfeddits)))
	return response.Subfeddits, nil
}

// FetchComments requests up to limit comments of one subfeddit in a single
// page. Comments beyond limit are not fetched.
func (fc *FedditClient) FetchComments(ctx context.Context, subfedditID int, limit int) ([]models.RawComment, error) {
	params := url.Values{}
	params.Set("subfeddit_id", strconv.Itoa(subfedditID))
	params.Set("skip", "0")
	params.Set("limit", strconv.Itoa(limit))

	var response models.CommentListResponse
	if err := fc.FetchJSON(ctx, fc.endpoint(FEDDIT_COMMENTS_PATH, params), &response); err != nil {
		return nil, err
	}

	slog.Debug("[FedditClient] Fetched comments",
		slog.Int("subfedditID", subfedditID),
		slog.Int("count", len(response.Comments)))
	return response.Comments, nil
}

func (fc *FedditClient) Ping(ctx context.Context) error {
	var response models.SubfedditListResponse
	params := url.Values{}
	params.Set("skip", "0")
	params.Set("limit", "1")
	return fc.FetchJSON(ctx, fc.endpoint(FEDDIT_SUBFEDDITS_PATH, params), &response)
}

func (fc *FedditClient) endpoint(path string, params url.Values) string {
	return fc.BaseURL + path + "?" + params.Encode()
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}
