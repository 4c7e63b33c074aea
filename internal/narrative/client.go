// internal/narrative/client.go

// Package narrative fills the explanatory text fields of a finished report
// by calling an external text-generation service. The service is optional:
// when it is disabled, unreachable or slow, deterministic templates take
// over and the forecast itself is never affected.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/common/metrics"
	"campaign-forecaster/internal/models"
)

const generatePath = "/api/ai/generate"

type Client struct {
	cfg    config.NarrativeConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg config.NarrativeConfig, log logger.Logger) *Client {
	return &Client{
		cfg: cfg,
		// No client timeout; the per-call context owns the deadline.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "narrative"}),
	}
}

type generateRequest struct {
	Prompt    string                 `json:"prompt"`
	Context   map[string]interface{} `json:"context"`
	MaxTokens int                    `json:"max_tokens"`
}

type generateResponse struct {
	Text     string            `json:"text"`
	Sections map[string]string `json:"sections"`
}

// Enrich returns the narrative map for a report. It never returns an error:
// any collaborator failure resolves to the deterministic fallback templates,
// counted and logged so operators can see the degradation.
func (c *Client) Enrich(ctx context.Context, report *models.CampaignReport) map[string]string {
	if !c.cfg.Enabled || c.cfg.BaseURL == "" {
		c.logger.Debug("narrative collaborator disabled, using templates", nil)
		return Fallback(report)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout)*time.Millisecond)
	defer cancel()

	resp, err := c.generate(ctx, report)
	if err != nil {
		metrics.NarrativeFallbacks.Inc()
		c.logger.Warn("narrative generation failed, using templates", map[string]interface{}{
			"reportId": report.ID,
			"error":    err.Error(),
		})
		return Fallback(report)
	}

	// Start from the templates so every expected key is present even when
	// the collaborator only returns a free-text summary.
	out := Fallback(report)
	if text := strings.TrimSpace(resp.Text); text != "" {
		out[KeySummary] = text
	}
	for key, text := range resp.Sections {
		if t := strings.TrimSpace(text); t != "" {
			out[key] = t
		}
	}
	return out
}

func (c *Client) generate(ctx context.Context, report *models.CampaignReport) (*generateResponse, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:    buildPrompt(report),
		MaxTokens: c.cfg.MaxTokens,
		Context: map[string]interface{}{
			"industry":   report.Brief.Industry,
			"budget":     report.Brief.TotalBudget,
			"platforms":  report.Brief.Platforms,
			"confidence": report.Confidence,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.post(ctx, body)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, body []byte) (*generateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func buildPrompt(report *models.CampaignReport) string {
	var parts []string
	parts = append(parts, "You are a media planning analyst. Explain the forecast below for a marketing stakeholder.")
	parts = append(parts, fmt.Sprintf("Industry: %s, budget: %.2f, duration: %s, funnel stage: %s.",
		report.Brief.Industry, report.Brief.TotalBudget, report.Brief.Duration, report.Brief.FunnelStage))

	kpis, _ := json.Marshal(report.Totals)
	parts = append(parts, "Projected totals:")
	parts = append(parts, string(kpis))

	if len(report.Anomalies) > 0 {
		parts = append(parts, fmt.Sprintf("%d metrics fall outside their expected market ranges.", len(report.Anomalies)))
	}

	parts = append(parts, "Instructions:")
	parts = append(parts, "- Return a short overall summary as text")
	parts = append(parts, "- Return per-KPI explanations under sections keyed by KPI name")
	parts = append(parts, "- Do not invent numbers that are not in the data")
	return strings.Join(parts, "\n")
}
