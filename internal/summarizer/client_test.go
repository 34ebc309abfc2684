package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Logs string `json:"logs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Logs != "some audit lines" {
			t.Errorf("logs = %q", req.Logs)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"summary":         "All quiet.",
			"potentialIssues": "None detected.",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	summary, err := client.Summarize(context.Background(), "some audit lines")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Summary != "All quiet." {
		t.Errorf("summary = %q", summary.Summary)
	}
	if summary.PotentialIssues != "None detected." {
		t.Errorf("potential issues = %q", summary.PotentialIssues)
	}
}

func TestSummarizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Summarize(context.Background(), "lines"); err == nil {
		t.Fatal("want error on non-200 response")
	}
}
