package ai

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"example.com/ai-travel-planner/internal/metrics"
)

const tracerName = "example.com/ai-travel-planner/internal/ai"

type Service struct {
	client  Client
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService создает сервис генерации маршрутов поверх клиента провайдера.
func NewService(client Client, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return &Service{client: client, metrics: recorder, logger: logger}
}

// GeneratePlan запрашивает у модели маршрут целиком и валидирует ответ.
func (s *Service) GeneratePlan(ctx context.Context, req PlanRequest) (PlanResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GeneratePlan", trace.WithAttributes(planAttributes(req)...))
	defer span.End()

	started := time.Now()
	content, err := s.client.Complete(ctx, BuildPrompt(req))
	if err != nil {
		s.observe(ctx, span, metrics.ModeBuffered, started, err)
		return PlanResponse{}, err
	}

	plan, err := ParsePlan(content)
	s.observe(ctx, span, metrics.ModeBuffered, started, err)
	if err != nil {
		s.logger.WarnContext(ctx, "ai returned malformed itinerary",
			slog.String("error", err.Error()),
			slog.String("raw_response", content),
		)
		return PlanResponse{}, err
	}

	span.SetAttributes(attribute.Int("plan.days", len(plan.Days)))
	if total := plan.TotalExpenses(); total > req.Budget {
		s.logger.WarnContext(ctx, "ai itinerary exceeds budget",
			slog.Float64("budget", req.Budget),
			slog.Float64("total_expenses", total),
		)
	}

	return plan, nil
}

// StreamPlan открывает потоковый ответ модели. Содержимое не разбирается.
func (s *Service) StreamPlan(ctx context.Context, req PlanRequest) (io.ReadCloser, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "StreamPlan", trace.WithAttributes(planAttributes(req)...))
	defer span.End()

	started := time.Now()
	body, err := s.client.Stream(ctx, BuildPrompt(req))
	s.observe(ctx, span, metrics.ModeStream, started, err)
	if err != nil {
		return nil, err
	}

	return body, nil
}

// Metrics возвращает инструменты сервиса.
func (s *Service) Metrics() *metrics.Recorder {
	return s.metrics
}

func (s *Service) observe(ctx context.Context, span trace.Span, mode string, started time.Time, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "unknown"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	s.metrics.ObserveUpstream(ctx, mode, outcome, time.Since(started))
}

func planAttributes(req PlanRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("plan.source", req.Source),
		attribute.String("plan.destination", req.Destination),
		attribute.Float64("plan.budget", req.Budget),
	}
}
