package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

// SelectorConstraints narrows the remote selector's candidate set.
type SelectorConstraints struct {
	MaxCostUSD   *float64 `json:"max_cost,omitempty"`
	MaxLatencyMS *int     `json:"max_latency,omitempty"`
}

/*
ModelSelector is the remote model-selection capability. SelectModel must
be callable under a bounded timeout; callers (the router) absorb every
failure into a deterministic fallback, so implementations are free to
return transport errors as-is.

EnhancePrompt is best-effort prompt rewriting; callers fall back to the
original prompt on any error.
*/
type ModelSelector interface {
	SelectModel(ctx context.Context, taskType string, complexity float64, constraints *SelectorConstraints) (domain.RoutingDecision, error)
	EnhancePrompt(ctx context.Context, prompt, promptContext, style string) (string, error)
}

type selectorClient struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewSelectorClient(baseURL string, timeout time.Duration, baseLog *logger.Logger) ModelSelector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &selectorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     baseLog.With("client", "ModelSelector"),
	}
}

type selectModelRequest struct {
	TaskType    string               `json:"task_type"`
	Complexity  float64              `json:"complexity"`
	Constraints *SelectorConstraints `json:"constraints,omitempty"`
}

func (c *selectorClient) SelectModel(ctx context.Context, taskType string, complexity float64, constraints *SelectorConstraints) (domain.RoutingDecision, error) {
	var decision domain.RoutingDecision
	err := c.postJSON(ctx, "/api/model-selection", selectModelRequest{
		TaskType:    taskType,
		Complexity:  complexity,
		Constraints: constraints,
	}, &decision)
	if err != nil {
		return domain.RoutingDecision{}, err
	}
	if decision.Model == "" || decision.Provider == "" {
		return domain.RoutingDecision{}, fmt.Errorf("malformed selection response for task %q", taskType)
	}
	return decision, nil
}

type completeRequest struct {
	Task        string  `json:"task"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type completeResponse struct {
	Result string `json:"result"`
}

func (c *selectorClient) EnhancePrompt(ctx context.Context, prompt, promptContext, style string) (string, error) {
	task := fmt.Sprintf("Enhance this creative prompt with more vivid details and cinematic descriptions: %q", prompt)
	if style != "" {
		task += " Style: " + style
	}
	if promptContext != "" {
		task += " Context: " + promptContext
	}
	var resp completeResponse
	err := c.postJSON(ctx, "/api/complete", completeRequest{
		Task:        task,
		MaxTokens:   500,
		Temperature: 0.7,
	}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Result) == "" {
		return "", fmt.Errorf("empty completion result")
	}
	return resp.Result, nil
}

func (c *selectorClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("Selector request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("selector %s: status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("selector %s: decode response: %w", path, err)
	}
	return nil
}
