package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
)

const cardColumns = `id, holder_name, pan, expiry, cvv, issuer_id, track, COALESCE(amount, 0)`

type cardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepository(pool *pgxpool.Pool) ports.CardRepository {
	return &cardRepo{pool: pool}
}

func (r *cardRepo) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO cards (holder_name, pan, expiry, cvv, issuer_id, track, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		card.HolderName, card.PAN, card.Expiry, card.CVV,
		card.IssuerID, card.Track, card.Amount,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}
	return nil
}

func (r *cardRepo) GetByID(ctx context.Context, id int64) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("get card by id: %w", err)
	}
	return card, nil
}

func (r *cardRepo) List(ctx context.Context, filter ports.CardListFilter) ([]*domain.Card, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if filter.IssuerID != "" {
		conditions = append(conditions, fmt.Sprintf("issuer_id = $%d", argPos))
		args = append(args, filter.IssuerID)
		argPos++
	}

	query := `SELECT ` + cardColumns + ` FROM cards`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}

	return cards, nil
}

func (r *cardRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

// scanCard reads cardColumns from a pgx.Row or pgx.Rows.
func scanCard(row pgx.Row) (*domain.Card, error) {
	c := &domain.Card{}
	err := row.Scan(
		&c.ID, &c.HolderName, &c.PAN, &c.Expiry, &c.CVV,
		&c.IssuerID, &c.Track, &c.Amount,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
