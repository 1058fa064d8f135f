package libhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var client = &http.Client{}

// Call performs an HTTP request with a JSON body and decodes a JSON
// response into T. Non-2xx statuses are errors carrying the response
// body for diagnostics.
func Call[T any](
	ctx context.Context,
	method string,
	rawURL string,
	headers map[string]string,
	body any,
	query map[string]string,
) (T, error) {
	var zero T

	u, err := url.Parse(rawURL)
	if err != nil {
		return zero, fmt.Errorf("failed to parse url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, er := json.Marshal(body)
		if er != nil {
			return zero, fmt.Errorf("failed to marshal request body: %w", er)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return zero, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return zero, fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(raw))
	}

	var out T
	if len(raw) > 0 {
		if er := json.Unmarshal(raw, &out); er != nil {
			return zero, fmt.Errorf("failed to decode response: %w", er)
		}
	}
	return out, nil
}
