package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/ai-travel-planner/internal/ai"
)

type flushRecorder struct {
	strings.Builder
	flushes []string
}

func (r *flushRecorder) Flush() {
	r.flushes = append(r.flushes, r.String())
}

// TestStatusFor проверяет сопоставление типов ошибок статусам.
func TestStatusFor(t *testing.T) {
	cases := map[ai.Kind]int{
		ai.KindInvalidRequest:       http.StatusBadRequest,
		ai.KindUpstreamTransport:    http.StatusInternalServerError,
		ai.KindUpstreamEnvelope:     http.StatusInternalServerError,
		ai.KindMalformedOutput:      http.StatusInternalServerError,
		ai.KindStreamingUnsupported: http.StatusInternalServerError,
		"":                          http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, statusFor(kind), "kind %q", kind)
	}
}

// TestWriteErrorHidesCause проверяет, что причина ошибки не попадает в ответ.
func TestWriteErrorHidesCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/route", nil), rec)

	err := &ai.Error{
		Kind:    ai.KindMalformedOutput,
		Message: "ai response is not a valid itinerary",
		Err:     errors.New(`invalid character 'S' looking for beginning of value: "Sorry"`),
	}
	require.NoError(t, writeError(c, err))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ai response is not a valid itinerary", body.Error)
	assert.Equal(t, "malformed_output", body.Kind)
	assert.NotContains(t, rec.Body.String(), "Sorry")
}

// TestWriteErrorUnknown проверяет ответ на ошибку вне таксономии.
func TestWriteErrorUnknown(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, writeError(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","kind":"internal"}`, rec.Body.String())
}

// TestRelayForwardsDataLines проверяет пересылку кадров и сброс после каждого.
func TestRelayForwardsDataLines(t *testing.T) {
	upstream := strings.Join([]string{
		": OPENROUTER PROCESSING",
		"",
		`data: {"choices":[{"delta":{"content":"{"}}]}`,
		"",
		"event: ping",
		`data: {"choices":[{"delta":{"content":"}"}}]}`,
		"",
		"data: [DONE]",
		"",
	}, "\n")

	w := &flushRecorder{}
	frames, err := relay(w, w, strings.NewReader(upstream))
	require.NoError(t, err)
	assert.Equal(t, 3, frames)

	first := `data: {"choices":[{"delta":{"content":"{"}}]}` + "\n\n"
	second := `data: {"choices":[{"delta":{"content":"}"}}]}` + "\n\n"
	third := "data: [DONE]\n\n"
	assert.Equal(t, first+second+third, w.String())
	assert.Equal(t, []string{first, first + second, first + second + third}, w.flushes)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

// TestRelayReadError проверяет завершение при ошибке чтения.
func TestRelayReadError(t *testing.T) {
	w := &flushRecorder{}
	frames, err := relay(w, w, failingReader{})
	assert.Error(t, err)
	assert.Zero(t, frames)
	assert.Empty(t, w.String())
}
