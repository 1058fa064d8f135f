package txstore

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sailwallet/txengine/internal/asset"
)

// Status is the lifecycle state of a recorded transaction.
type Status string

const (
	StatusBroadcast Status = "broadcast"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Record is one executed transaction or order.
type Record struct {
	ID          uuid.UUID
	Chain       asset.Chain
	Action      string
	TxHash      string
	OrderID     string
	Amount      *big.Int
	Currency    string
	Fee         *big.Int
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}

// Store persists transaction records in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const createTable = `
CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	chain TEXT NOT NULL,
	action TEXT NOT NULL,
	tx_hash TEXT NOT NULL DEFAULT '',
	order_id TEXT NOT NULL DEFAULT '',
	amount NUMERIC NOT NULL,
	currency TEXT NOT NULL,
	fee NUMERIC NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	confirmed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS transactions_status_idx ON transactions (status);
`

// Migrate creates the schema when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to migrate transactions table: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, rec Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (id, chain, action, tx_hash, order_id, amount, currency, fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID,
		rec.Chain.String(),
		rec.Action,
		rec.TxHash,
		rec.OrderID,
		rec.Amount.String(),
		rec.Currency,
		rec.Fee.String(),
		rec.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE transactions
		SET status = $2,
		    updated_at = now(),
		    confirmed_at = CASE WHEN $2 = 'confirmed' THEN now() ELSE confirmed_at END
		WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s not found", id)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, chain, action, tx_hash, order_id, amount::TEXT, currency, fee::TEXT, status, created_at, updated_at, confirmed_at
		FROM transactions WHERE id = $1`, id)
	return scanRecord(row)
}

// ListUnconfirmed returns broadcast transactions awaiting confirmation,
// oldest first.
func (s *Store) ListUnconfirmed(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, chain, action, tx_hash, order_id, amount::TEXT, currency, fee::TEXT, status, created_at, updated_at, confirmed_at
		FROM transactions
		WHERE status IN ('broadcast', 'pending') AND tx_hash <> ''
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconfirmed transactions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, er := scanRecord(rows)
		if er != nil {
			return nil, er
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec           Record
		chain         string
		amountS, feeS string
	)
	err := row.Scan(
		&rec.ID,
		&chain,
		&rec.Action,
		&rec.TxHash,
		&rec.OrderID,
		&amountS,
		&rec.Currency,
		&feeS,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.ConfirmedAt,
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	rec.Chain = asset.Chain(chain)
	var ok bool
	if rec.Amount, ok = new(big.Int).SetString(amountS, 10); !ok {
		return Record{}, fmt.Errorf("invalid amount: %s", amountS)
	}
	if rec.Fee, ok = new(big.Int).SetString(feeS, 10); !ok {
		return Record{}, fmt.Errorf("invalid fee: %s", feeS)
	}
	return rec, nil
}
