package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"career-booster/internal/ner"
	"career-booster/internal/shared/metrics"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "dslim/bert-base-NER"
	maxErrorBody   = 512
)

// Client calls a hosted token-classification model through the Hugging Face Inference API.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Model   string
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the transport. The token is not applied when it is set.
	HTTPClient *http.Client
}

// NewClient builds a Client. The API token is attached as a bearer token by an oauth2 transport.
func NewClient(ctx context.Context, opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.Trim(strings.TrimSpace(opts.Model), "/")
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		if token := strings.TrimSpace(opts.Token); token != "" {
			base := &http.Client{Timeout: timeout}
			ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
			httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
			httpClient.Timeout = timeout
		} else {
			httpClient = &http.Client{Timeout: timeout}
		}
	}

	return &Client{baseURL: baseURL, model: model, httpClient: httpClient}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
	Options    inferenceOptions    `json:"options"`
}

type inferenceParameters struct {
	AggregationStrategy string `json:"aggregation_strategy"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Recognize returns grouped entities for text.
func (c *Client) Recognize(ctx context.Context, text string) ([]ner.Entity, error) {
	start := time.Now()
	entities, err := c.recognize(ctx, text)
	metrics.ObserveNERCall(float64(time.Since(start).Microseconds())/1000.0, err != nil)
	return entities, err
}

func (c *Client) recognize(ctx context.Context, text string) ([]ner.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	payload, err := json.Marshal(inferenceRequest{
		Inputs:     text,
		Parameters: inferenceParameters{AggregationStrategy: "simple"},
		Options:    inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("ner request timeout: %w", err)
		}
		return nil, fmt.Errorf("ner request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ner read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr inferenceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("ner http status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("ner http status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body))))
	}

	entities, err := decodeEntities(body)
	if err != nil {
		return nil, fmt.Errorf("ner response parse: %w", err)
	}
	return entities, nil
}

// decodeEntities accepts a flat list or, for batched inputs, a list of lists.
func decodeEntities(body []byte) ([]ner.Entity, error) {
	var flat []ner.Entity
	if err := json.Unmarshal(body, &flat); err == nil {
		return flat, nil
	}
	var nested [][]ner.Entity
	if err := json.Unmarshal(body, &nested); err != nil {
		return nil, err
	}
	var out []ner.Entity
	for _, group := range nested {
		out = append(out, group...)
	}
	return out, nil
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
