package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

const apduModelColumns = `
	id, created_at, updated_at, name, status, is_default, uri,
	sample_count, accuracy, n_estimators, error
`

type apduModelRepo struct {
	pool *pgxpool.Pool
}

func NewAPDUModelRepository(pool *pgxpool.Pool) ports.APDUModelRepository {
	return &apduModelRepo{pool: pool}
}

func (r *apduModelRepo) Create(ctx context.Context, m *domain.APDUModel) error {
	query := `
		INSERT INTO apdu_model
			(id, created_at, updated_at, name, status, is_default, uri,
			 sample_count, accuracy, n_estimators, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.CreatedAt, m.UpdatedAt, m.Name, string(m.Status), m.IsDefault,
		m.URI, m.SampleCount, m.Accuracy, m.NEstimators, m.Error,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrModelNameConflict
		}
		return fmt.Errorf("create apdu model: %w", err)
	}
	return nil
}

func (r *apduModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.APDUModel, error) {
	query := `SELECT ` + apduModelColumns + ` FROM apdu_model WHERE id = $1`

	m, err := scanAPDUModel(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("get apdu model by id: %w", err)
	}
	return m, nil
}

func (r *apduModelRepo) GetDefault(ctx context.Context) (*domain.APDUModel, error) {
	query := `SELECT ` + apduModelColumns + ` FROM apdu_model WHERE is_default AND status = $1 LIMIT 1`

	m, err := scanAPDUModel(r.pool.QueryRow(ctx, query, string(domain.ModelStatusReady)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoDefaultModel
		}
		return nil, fmt.Errorf("get default apdu model: %w", err)
	}
	return m, nil
}

func (r *apduModelRepo) Update(ctx context.Context, m *domain.APDUModel) error {
	query := `
		UPDATE apdu_model
		SET status=$1, is_default=$2, uri=$3, sample_count=$4, accuracy=$5,
			error=$6, updated_at=NOW()
		WHERE id=$7
	`

	result, err := r.pool.Exec(ctx, query,
		string(m.Status), m.IsDefault, m.URI, m.SampleCount, m.Accuracy, m.Error, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update apdu model: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrModelNotFound
	}
	return nil
}

func (r *apduModelRepo) SetDefault(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE apdu_model SET is_default = FALSE, updated_at = NOW() WHERE is_default AND id <> $1`, id); err != nil {
			return fmt.Errorf("clear default apdu model: %w", err)
		}

		result, err := tx.Exec(ctx,
			`UPDATE apdu_model SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND status = $2`,
			id, string(domain.ModelStatusReady),
		)
		if err != nil {
			return fmt.Errorf("set default apdu model: %w", err)
		}
		if result.RowsAffected() == 0 {
			return domain.ErrModelNotReady
		}
		return nil
	})
}

func (r *apduModelRepo) List(ctx context.Context, limit, offset int) ([]*domain.APDUModel, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM apdu_model`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count apdu models: %w", err)
	}

	query := `SELECT ` + apduModelColumns + ` FROM apdu_model ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list apdu models: %w", err)
	}
	defer rows.Close()

	models := make([]*domain.APDUModel, 0)
	for rows.Next() {
		m, err := scanAPDUModel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan apdu model row: %w", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate apdu model rows: %w", err)
	}

	return models, total, nil
}

func scanAPDUModel(row pgx.Row) (*domain.APDUModel, error) {
	m := &domain.APDUModel{}
	var status string

	err := row.Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &m.Name, &status, &m.IsDefault, &m.URI,
		&m.SampleCount, &m.Accuracy, &m.NEstimators, &m.Error,
	)
	if err != nil {
		return nil, err
	}

	m.Status = domain.ModelStatus(status)
	return m, nil
}
