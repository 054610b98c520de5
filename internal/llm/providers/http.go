package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ahrav/go-prompteval/internal/llm"
)

// doJSON marshals payload, executes the request, and returns the response
// body. Non-2xx statuses and transport failures come back as classified
// *llm.ProviderError values; adapters only decode the success shape.
func doJSON(ctx context.Context, client *http.Client, provider, method, url string, headers map[string]string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, llm.WrapTransportError(provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, llm.WrapTransportError(provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(provider, resp, body)
	}
	return body, nil
}
