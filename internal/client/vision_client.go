package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"parking-service/internal/config"
)

// DetectionResponse is the vision service's answer for one triggered frame:
// zero or more raw OCR strings, one per detected plate region. The strings
// arrive unvalidated; consensus resolution happens on our side.
type DetectionResponse struct {
	Data []string `json:"data"`
}

// VisionClient talks to the external vision pipeline. The pipeline owns the
// camera, the detection model and the OCR pass; this client only fetches the
// raw candidate strings for the current frame.
type VisionClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewVisionClient(cfg *config.Config) *VisionClient {
	return &VisionClient{
		baseURL:       cfg.Vision.ServiceURL,
		internalToken: cfg.Vision.InternalToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Detect fetches the raw plate candidates for the current frame. Network
// errors are retried a few times with a linear backoff before giving up.
func (c *VisionClient) Detect(ctx context.Context) ([]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("vision service URL is not configured")
	}

	u, err := url.Parse(c.baseURL + "/internal/vision/detections")
	if err != nil {
		return nil, fmt.Errorf("invalid vision service URL: %w", err)
	}

	newRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}
		return req, nil
	}

	req, err := newRequest()
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		req, _ = newRequest()
	}
	if resp == nil {
		return nil, fmt.Errorf("failed to execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response DetectionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Data, nil
}
