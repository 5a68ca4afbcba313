package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPrometheusExposition проверяет экспорт метрик в формате Prometheus.
func TestPrometheusExposition(t *testing.T) {
	provider, recorder, handler, err := NewPrometheus()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx := context.Background()
	recorder.ObserveUpstream(ctx, ModeBuffered, OutcomeOK, 150*time.Millisecond)
	recorder.ObserveUpstream(ctx, ModeStream, "upstream_transport", time.Second)
	recorder.AddStreamFrames(ctx, 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "planner_upstream_requests_total")
	assert.Contains(t, text, `mode="buffered"`)
	assert.Contains(t, text, `outcome="upstream_transport"`)
	assert.Contains(t, text, "planner_upstream_duration_seconds")
	assert.Contains(t, text, "planner_stream_frames_total")
}

// TestNilRecorder проверяет, что nil-Recorder безопасен.
func TestNilRecorder(t *testing.T) {
	var recorder *Recorder
	assert.NotPanics(t, func() {
		recorder.ObserveUpstream(context.Background(), ModeBuffered, OutcomeOK, time.Second)
		recorder.AddStreamFrames(context.Background(), 1)
	})
	assert.NotNil(t, NewNoop())
}
