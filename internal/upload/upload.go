// Package upload moves image bytes to an upload destination URL
// handed out by the data service and returns the storage reference
// the store embeds in messages.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Transport posts attachment bytes over HTTP.
type Transport struct {
	client *http.Client
}

// NewTransport returns a Transport with a bounded request timeout.
func NewTransport() *Transport {
	return &Transport{client: &http.Client{Timeout: 30 * time.Second}}
}

type uploadResponse struct {
	StorageID string `json:"storageId"`
}

// Upload posts the bytes to the destination URL and returns the
// storage reference from the response.
func (t *Transport) Upload(ctx context.Context, url, contentType string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload image: unexpected status %s", resp.Status)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload image: decode response: %w", err)
	}
	if out.StorageID == "" {
		return "", fmt.Errorf("upload image: response missing storage id")
	}
	return out.StorageID, nil
}
