package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

type apduLogRepo struct {
	pool *pgxpool.Pool
}

func NewAPDULogRepository(pool *pgxpool.Pool) ports.APDULogRepository {
	return &apduLogRepo{pool: pool}
}

func (r *apduLogRepo) Create(ctx context.Context, entry *domain.APDULog) error {
	query := `
		INSERT INTO apdu_log (device_id, apdu_command, apdu_response, success, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		entry.DeviceID, entry.APDUCommand, entry.APDUResponse,
		entry.Success, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("create apdu log: %w", err)
	}
	return nil
}

func (r *apduLogRepo) List(ctx context.Context, filter ports.APDULogFilter) ([]*domain.APDULog, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if filter.DeviceID != "" {
		conditions = append(conditions, fmt.Sprintf("device_id = $%d", argPos))
		args = append(args, filter.DeviceID)
		argPos++
	}
	if filter.Success != nil {
		conditions = append(conditions, fmt.Sprintf("success = $%d", argPos))
		args = append(args, *filter.Success)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM apdu_log WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count apdu logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, device_id, apdu_command, apdu_response, success, timestamp
		FROM apdu_log
		WHERE %s
		ORDER BY timestamp DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list apdu logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.APDULog, 0)
	for rows.Next() {
		l, err := scanAPDULog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan apdu log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate apdu log rows: %w", err)
	}

	return logs, total, nil
}

func (r *apduLogRepo) All(ctx context.Context, fn func(*domain.APDULog) error) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, device_id, apdu_command, apdu_response, success, timestamp
		FROM apdu_log
		ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("query apdu logs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanAPDULog(rows)
		if err != nil {
			return fmt.Errorf("scan apdu log row: %w", err)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanAPDULog(row pgx.Row) (*domain.APDULog, error) {
	l := &domain.APDULog{}
	err := row.Scan(&l.ID, &l.DeviceID, &l.APDUCommand, &l.APDUResponse, &l.Success, &l.Timestamp)
	if err != nil {
		return nil, err
	}
	l.Timestamp = l.Timestamp.UTC()
	return l, nil
}
