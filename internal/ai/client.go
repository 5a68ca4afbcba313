package ai

import (
	"context"
	"io"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is the rendered instruction pair sent to the upstream model.
type Prompt struct {
	System string
	User   string
}

// Messages returns the prompt in chat-completion message order.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}
}

// Client is the upstream completion API.
type Client interface {
	// Complete waits for the whole completion and returns its text.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// Stream returns the live event-stream body once the upstream accepted the request.
	// The caller must close it.
	Stream(ctx context.Context, prompt Prompt) (io.ReadCloser, error)
}
