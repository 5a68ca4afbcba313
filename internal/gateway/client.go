package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/handlers"
)

// Client вызывает HTTP API шлюза маршрутов.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient создает клиент шлюза с адресом base.
func NewClient(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: httpClient}
}

// APIError is a non-2xx response of the gateway.
type APIError struct {
	Status int
	Kind   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("gateway returned %d (%s): %s", e.Status, e.Kind, e.Detail)
}

// Plan запрашивает маршрут целиком.
func (c *Client) Plan(ctx context.Context, req ai.PlanRequest) (ai.PlanResponse, error) {
	resp, err := c.post(ctx, "/api/route", req, "application/json")
	if err != nil {
		return ai.PlanResponse{}, err
	}
	defer resp.Body.Close()

	var plan ai.PlanResponse
	if err := json.NewDecoder(resp.Body).Decode(&plan); err != nil {
		return ai.PlanResponse{}, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

// PlanStream запрашивает маршрут потоком, собирает текст модели и разбирает его так же, как буферный режим.
func (c *Client) PlanStream(ctx context.Context, req ai.PlanRequest) (ai.PlanResponse, error) {
	resp, err := c.post(ctx, "/api/route-stream", req, "text/event-stream")
	if err != nil {
		return ai.PlanResponse{}, err
	}
	defer resp.Body.Close()

	text, err := ai.CollectStream(resp.Body)
	if err != nil {
		return ai.PlanResponse{}, err
	}
	return ai.ParsePlan(text)
}

// Health проверяет доступность шлюза.
func (c *Client) Health(ctx context.Context) (handlers.HealthResponse, error) {
	var out handlers.HealthResponse

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+"/health", nil)
	if err != nil {
		return out, err
	}
	resp, err := c.HTTP.Do(request)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, apiError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode health: %w", err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, req ai.PlanRequest, accept string) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", accept)

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	var body handlers.ErrorResponse
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		return &APIError{Status: resp.StatusCode, Kind: body.Kind, Detail: body.Error}
	}
	return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(payload))}
}
