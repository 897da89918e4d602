package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSelectModelAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/model-selection" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req selectModelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TaskType != "text-to-video" || req.Complexity != 0.8 {
			t.Fatalf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":               "kling-2",
			"provider":            "kling",
			"endpoint":            "https://api.kling.example/v1",
			"expected_latency_ms": 30000,
		})
	}))
	defer srv.Close()

	c := NewSelectorClient(srv.URL, time.Second, testLogger(t))
	got, err := c.SelectModel(context.Background(), "text-to-video", 0.8, nil)
	if err != nil {
		t.Fatalf("select model: %v", err)
	}
	if got.Model != "kling-2" || got.Provider != "kling" || got.ExpectedLatencyMS != 30000 {
		t.Fatalf("unexpected decision %+v", got)
	}
}

func TestSelectModelRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expected_latency_ms": 1000})
	}))
	defer srv.Close()

	c := NewSelectorClient(srv.URL, time.Second, testLogger(t))
	if _, err := c.SelectModel(context.Background(), "text-to-image", 0.6, nil); err == nil {
		t.Fatalf("expected a response without model/provider to be rejected")
	}
}

func TestSelectModelErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSelectorClient(srv.URL, time.Second, testLogger(t))
	if _, err := c.SelectModel(context.Background(), "text-to-image", 0.6, nil); err == nil {
		t.Fatalf("expected non-2xx status to surface as an error")
	}
}

func TestEnhancePrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/complete" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"result": "a vast gothic castle at golden hour"})
	}))
	defer srv.Close()

	c := NewSelectorClient(srv.URL, time.Second, testLogger(t))
	got, err := c.EnhancePrompt(context.Background(), "a castle", "video", "cinematic")
	if err != nil {
		t.Fatalf("enhance prompt: %v", err)
	}
	if got != "a vast gothic castle at golden hour" {
		t.Fatalf("unexpected enhanced prompt %q", got)
	}
}
