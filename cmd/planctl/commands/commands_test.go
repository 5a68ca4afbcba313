package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/models"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// TestPlanCommand проверяет вывод маршрута с итогами по дням.
func TestPlanCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"source":"Delhi","destination":"Goa","budget":1000,"days":[
			{"day":1,"activities":["Beach","Market"],"expenses":{"food":500,"stay":"700","tips":"varies"}}
		]}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, "--server", srv.URL, "plan", "--source", "Delhi", "--destination", "Goa", "--budget", "1000")
	require.NoError(t, err)

	assert.Contains(t, out, "Delhi -> Goa, budget INR 1000.00")
	assert.Contains(t, out, "Day 1: Beach; Market")
	assert.Contains(t, out, "varies")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "exceeds the budget by INR 200.00")
}

// TestPlanCommandRequiresFlags проверяет обязательные флаги.
func TestPlanCommandRequiresFlags(t *testing.T) {
	_, err := runCmd(t, "plan", "--source", "Delhi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destination")
}

// TestHealthCommand проверяет вывод статуса.
func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, "--server", srv.URL, "health")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+": ok\n", out)
}

// TestCallsCommandRejectsMode проверяет фильтр режима до подключения к БД.
func TestCallsCommandRejectsMode(t *testing.T) {
	_, err := runCmd(t, "calls", "--mode", "batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--mode")
}

// TestPrintCalls проверяет табличный вывод журнала.
func TestPrintCalls(t *testing.T) {
	kind := string(ai.KindMalformedOutput)
	calls := []models.UpstreamCall{
		{Mode: models.CallModeBuffered, Source: "Delhi", Destination: "Goa", Budget: 20000, Success: true, LatencyMS: 900, CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{Mode: models.CallModeStream, Source: "Pune", Destination: "Ooty", Budget: 8000, ErrorKind: &kind, LatencyMS: 40, CreatedAt: time.Date(2024, 5, 1, 9, 31, 0, 0, time.UTC)},
	}

	var out bytes.Buffer
	require.NoError(t, printCalls(&out, calls))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Delhi -> Goa")
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[2], "malformed_output")
	assert.Contains(t, lines[2], "40ms")
}
