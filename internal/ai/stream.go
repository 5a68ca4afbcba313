package ai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const (
	dataPrefix = "data:"
	doneMarker = "[DONE]"

	// MaxStreamLine is the longest event-stream line accepted from the upstream.
	MaxStreamLine = 1 << 20
)

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// DataLine сообщает, является ли строка SSE-кадром данных, и возвращает его содержимое.
func DataLine(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, dataPrefix)), true
}

// NewLineScanner создает сканер строк потока с увеличенным буфером.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), MaxStreamLine)
	return scanner
}

// CollectStream собирает текст ответа модели из ретранслированного SSE-потока.
// Поток, оборвавшийся до [DONE] или finish_reason, считается ошибкой.
func CollectStream(r io.Reader) (string, error) {
	scanner := NewLineScanner(r)

	var text strings.Builder
	finished := false

	for scanner.Scan() {
		payload, ok := DataLine(scanner.Text())
		if !ok || payload == "" {
			continue
		}
		if payload == doneMarker {
			finished = true
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", newError(KindUpstreamEnvelope, err, "malformed stream chunk")
		}
		if chunk.Error != nil {
			return "", newError(KindUpstreamTransport, nil, "upstream stream error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		text.WriteString(choice.Delta.Content)
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			finished = true
		}
	}

	if err := scanner.Err(); err != nil {
		return "", newError(KindUpstreamTransport, err, "failed to read stream")
	}
	if !finished {
		return "", newError(KindUpstreamTransport, nil, "stream ended before completion")
	}
	if text.Len() == 0 {
		return "", newError(KindUpstreamEnvelope, nil, "stream ended without content")
	}

	return text.String(), nil
}
