package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/ai-travel-planner/internal/models"
)

const maxRecentCalls = 500

// DBTX покрывает *pgxpool.Pool и pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type UpstreamCallRepository struct {
	db DBTX
}

type UpstreamCallFilter struct {
	Mode    *models.CallMode
	Success *bool
}

// NewUpstreamCallRepository создает репозиторий журнала вызовов модели.
func NewUpstreamCallRepository(db DBTX) *UpstreamCallRepository {
	return &UpstreamCallRepository{db: db}
}

// Record сохраняет запись о вызове модели.
func (r *UpstreamCallRepository) Record(ctx context.Context, call models.UpstreamCall) error {
	if call.Mode != models.CallModeBuffered && call.Mode != models.CallModeStream {
		return fmt.Errorf("%w: unknown call mode %q", ErrInvalid, call.Mode)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO upstream_calls
		 (request_id, mode, source, destination, budget, model, success, error_kind, error_message, days, frames, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		call.RequestID,
		string(call.Mode),
		call.Source,
		call.Destination,
		call.Budget,
		call.Model,
		call.Success,
		call.ErrorKind,
		call.ErrorMessage,
		call.Days,
		call.Frames,
		call.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("insert upstream call: %w", err)
	}
	return nil
}

// Recent возвращает последние вызовы, новые первыми.
func (r *UpstreamCallRepository) Recent(ctx context.Context, filter UpstreamCallFilter, limit int) ([]models.UpstreamCall, error) {
	if limit <= 0 || limit > maxRecentCalls {
		limit = maxRecentCalls
	}

	where, args := buildUpstreamCallWhere(filter)
	args = append(args, limit)
	query := fmt.Sprintf(
		`SELECT id, request_id, mode, source, destination, budget::float8, model, success, error_kind, error_message, days, frames, latency_ms, created_at
		 FROM upstream_calls%s ORDER BY created_at DESC LIMIT $%d`,
		where, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query upstream calls: %w", err)
	}
	defer rows.Close()

	calls := make([]models.UpstreamCall, 0)
	for rows.Next() {
		var call models.UpstreamCall
		var mode string
		if err := rows.Scan(
			&call.ID,
			&call.RequestID,
			&mode,
			&call.Source,
			&call.Destination,
			&call.Budget,
			&call.Model,
			&call.Success,
			&call.ErrorKind,
			&call.ErrorMessage,
			&call.Days,
			&call.Frames,
			&call.LatencyMS,
			&call.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan upstream call: %w", err)
		}
		call.Mode = models.CallMode(mode)
		calls = append(calls, call)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upstream calls: %w", err)
	}
	return calls, nil
}

func buildUpstreamCallWhere(filter UpstreamCallFilter) (string, []any) {
	clauses := make([]string, 0)
	args := make([]any, 0)

	if filter.Mode != nil {
		args = append(args, string(*filter.Mode))
		clauses = append(clauses, fmt.Sprintf("mode = $%d", len(args)))
	}

	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
