package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// JSONRequest executes an HTTP request with a JSON body and decodes a JSON
// response into out. Non-2xx statuses are mapped onto the error taxonomy with
// the response body as the provider message. headers are applied verbatim.
func JSONRequest(ctx context.Context, client *http.Client, provider, method, url string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", provider, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return WrapTransport(provider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return WrapTransport(provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ClassifyHTTP(provider, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", provider, err)
		}
	}
	return nil
}
