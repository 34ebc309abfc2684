// Package summarizer talks to the external audit-log summarization service.
// The service itself is opaque: we send the formatted log text and get back
// a summary plus a list of potential security issues.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/campushub/portal/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type summarizeRequest struct {
	Logs string `json:"logs"`
}

type summarizeResponse struct {
	Summary         string `json:"summary"`
	PotentialIssues string `json:"potentialIssues"`
}

// Summarize sends the log text and returns the service's summary.
func (c *Client) Summarize(ctx context.Context, logs string) (*model.AuditSummary, error) {
	body, err := json.Marshal(summarizeRequest{Logs: logs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call summarizer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var out summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &model.AuditSummary{
		Summary:         out.Summary,
		PotentialIssues: out.PotentialIssues,
	}, nil
}
