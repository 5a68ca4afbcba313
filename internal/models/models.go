package models

import (
	"time"

	"github.com/google/uuid"
)

type CallMode string

const (
	CallModeBuffered CallMode = "buffered"
	CallModeStream   CallMode = "stream"
)

// UpstreamCall описывает один вызов модели через шлюз. Содержимое маршрута не хранится.
type UpstreamCall struct {
	ID           uuid.UUID `json:"id"`
	RequestID    string    `json:"request_id"`
	Mode         CallMode  `json:"mode"`
	Source       string    `json:"source"`
	Destination  string    `json:"destination"`
	Budget       float64   `json:"budget"`
	Model        string    `json:"model"`
	Success      bool      `json:"success"`
	ErrorKind    *string   `json:"error_kind,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Days         *int      `json:"days,omitempty"`
	Frames       *int      `json:"frames,omitempty"`
	LatencyMS    int64     `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
