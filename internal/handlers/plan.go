package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/ai"
	"example.com/ai-travel-planner/internal/models"
)

const recordTimeout = 2 * time.Second

// CallRecorder сохраняет метаданные вызовов модели.
type CallRecorder interface {
	Record(ctx context.Context, call models.UpstreamCall) error
}

type PlanHandler struct {
	Service *ai.Service
	Calls   CallRecorder
	Model   string
	Logger  *slog.Logger
}

// NewPlanHandler создает обработчик маршрутов. calls может быть nil, тогда журнал не ведется.
func NewPlanHandler(service *ai.Service, calls CallRecorder, model string, logger *slog.Logger) *PlanHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PlanHandler{
		Service: service,
		Calls:   calls,
		Model:   model,
		Logger:  logger,
	}
}

type RouteRequest struct {
	Source      string   `json:"source" validate:"notblank"`
	Destination string   `json:"destination" validate:"notblank"`
	Budget      *float64 `json:"budget" validate:"required,finite,gt=0"`
}

// Route генерирует маршрут целиком и возвращает его одним JSON-документом.
func (h *PlanHandler) Route(c echo.Context) error {
	req, err := bindRoute(c)
	if err != nil {
		return writeError(c, err)
	}

	started := time.Now()
	plan, err := h.Service.GeneratePlan(c.Request().Context(), req)
	if err != nil {
		h.record(c, models.CallModeBuffered, req, started, err, nil, nil)
		return writeError(c, err)
	}

	days := len(plan.Days)
	h.record(c, models.CallModeBuffered, req, started, nil, &days, nil)
	return c.JSON(http.StatusOK, plan)
}

// RouteStream ретранслирует SSE-поток модели без разбора содержимого.
// До отправки заголовков ошибки отдаются JSON; после них поток просто завершается.
func (h *PlanHandler) RouteStream(c echo.Context) error {
	req, err := bindRoute(c)
	if err != nil {
		return writeError(c, err)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return writeError(c, ai.StreamingUnsupported())
	}

	ctx := c.Request().Context()
	started := time.Now()
	body, err := h.Service.StreamPlan(ctx, req)
	if err != nil {
		h.record(c, models.CallModeStream, req, started, err, nil, nil)
		return writeError(c, err)
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	frames, relayErr := relay(c.Response(), flusher, body)
	h.Service.Metrics().AddStreamFrames(ctx, frames)

	if relayErr != nil {
		h.Logger.WarnContext(ctx, "stream relay ended early",
			slog.Int("frames", frames),
			slog.String("error", relayErr.Error()),
		)
		relayErr = &ai.Error{Kind: ai.KindUpstreamTransport, Message: "stream interrupted", Err: relayErr}
	}
	h.record(c, models.CallModeStream, req, started, relayErr, nil, &frames)

	return nil
}

// relay пересылает строки "data:" как отдельные SSE-кадры, сбрасывая буфер после каждого.
func relay(w io.Writer, flusher http.Flusher, upstream io.Reader) (int, error) {
	scanner := ai.NewLineScanner(upstream)

	frames := 0
	for scanner.Scan() {
		line := scanner.Text()
		if _, ok := ai.DataLine(line); !ok {
			continue
		}

		if _, err := io.WriteString(w, line+"\n\n"); err != nil {
			return frames, err
		}
		flusher.Flush()
		frames++
	}

	return frames, scanner.Err()
}

func bindRoute(c echo.Context) (ai.PlanRequest, error) {
	var req RouteRequest
	if err := c.Bind(&req); err != nil {
		return ai.PlanRequest{}, ai.InvalidRequest("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ai.PlanRequest{}, ai.InvalidRequest(validationMessage(err))
	}

	return ai.PlanRequest{
		Source:      req.Source,
		Destination: req.Destination,
		Budget:      *req.Budget,
	}, nil
}

func (h *PlanHandler) record(c echo.Context, mode models.CallMode, req ai.PlanRequest, started time.Time, callErr error, days, frames *int) {
	if h.Calls == nil {
		return
	}

	call := models.UpstreamCall{
		RequestID:   c.Response().Header().Get(echo.HeaderXRequestID),
		Mode:        mode,
		Source:      req.Source,
		Destination: req.Destination,
		Budget:      req.Budget,
		Model:       h.Model,
		Success:     callErr == nil,
		Days:        days,
		Frames:      frames,
		LatencyMS:   time.Since(started).Milliseconds(),
	}

	if callErr != nil {
		kind := kindInternal
		message := callErr.Error()
		var aiErr *ai.Error
		if errors.As(callErr, &aiErr) {
			kind = string(aiErr.Kind)
			message = aiErr.Message
		}
		call.ErrorKind = &kind
		call.ErrorMessage = &message
	}

	// Клиент мог уже отключиться, запись не должна зависеть от его контекста.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), recordTimeout)
	defer cancel()

	if err := h.Calls.Record(ctx, call); err != nil {
		h.Logger.WarnContext(ctx, "failed to record upstream call", slog.String("error", err.Error()))
	}
}
