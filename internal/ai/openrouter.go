package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/ai-travel-planner/internal/config"
)

// maxErrorBody ограничивает чтение тела ответа с ошибкой.
const maxErrorBody = 4 << 10

// OpenRouterClient calls an OpenAI-compatible chat completions API (OpenRouter by default).
type OpenRouterClient struct {
	apiKey        string
	baseURL       string
	model         string
	referer       string
	title         string
	timeout       time.Duration
	streamTimeout time.Duration
	httpClient    *http.Client
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewHTTPClient создает общий пул соединений к провайдеру.
// Таймаут на уровне клиента не задается: буферный вызов ограничивается контекстом, а поток живет дольше.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewOpenRouterClient создает клиент провайдера поверх общего HTTP-клиента.
func NewOpenRouterClient(httpClient *http.Client, cfg config.AIConfig) *OpenRouterClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	return &OpenRouterClient{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		model:         cfg.Model,
		referer:       cfg.Referer,
		title:         cfg.Title,
		timeout:       cfg.Timeout,
		streamTimeout: cfg.StreamTimeout,
		httpClient:    httpClient,
	}
}

// Model возвращает идентификатор модели.
func (c *OpenRouterClient) Model() string {
	return c.model
}

// Complete отправляет промпт и ждет полный ответ модели.
func (c *OpenRouterClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	response, err := c.send(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", newError(KindUpstreamTransport, err, "failed to read upstream response")
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", newError(KindUpstreamEnvelope, err, "upstream response is not a chat completion")
	}

	if len(parsed.Choices) == 0 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", newError(KindUpstreamEnvelope, nil, "upstream response missing choices: %s", parsed.Error.Message)
		}
		return "", newError(KindUpstreamEnvelope, nil, "upstream response missing choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// Stream отправляет промпт с stream=true и возвращает живое тело ответа.
// Закрытие тела отменяет общий дедлайн потока.
func (c *OpenRouterClient) Stream(ctx context.Context, prompt Prompt) (io.ReadCloser, error) {
	cancel := context.CancelFunc(func() {})
	if c.streamTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.streamTimeout)
	}

	response, err := c.send(ctx, prompt, true)
	if err != nil {
		cancel()
		return nil, err
	}

	return &cancelOnClose{ReadCloser: response.Body, cancel: cancel}, nil
}

func (c *OpenRouterClient) send(ctx context.Context, prompt Prompt, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: prompt.Messages(),
		Stream:   stream,
	})
	if err != nil {
		return nil, newError(KindUpstreamTransport, err, "failed to marshal request payload")
	}

	endpoint := fmt.Sprintf("%s/chat/completions", c.baseURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, newError(KindUpstreamTransport, err, "failed to create upstream request")
	}

	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")
	if stream {
		request.Header.Set("Accept", "text/event-stream")
	}
	if c.referer != "" {
		request.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		request.Header.Set("X-Title", c.title)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, newError(KindUpstreamTransport, err, "failed to send request to upstream")
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer response.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))

		aiErr := newError(KindUpstreamTransport, nil, "upstream returned status %d: %s", response.StatusCode, upstreamErrorMessage(body))
		aiErr.Status = response.StatusCode
		return nil, aiErr
	}

	return response, nil
}

func upstreamErrorMessage(body []byte) string {
	var apiErr chatResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		return "empty response body"
	}
	return message
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnClose) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}
