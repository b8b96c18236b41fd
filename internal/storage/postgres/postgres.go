package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/curo/internal/storage"
)

// PostgresStorage is the Postgres implementation of Storage. Schema lives in migrations/.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool}, nil
}

func (p *PostgresStorage) GetCredential(ctx context.Context, clientID string) (storage.Credential, bool, error) {
	const query = `
		SELECT client_id, secret, created_at, updated_at
		FROM api_credentials
		WHERE client_id = $1
	`

	var row storage.Credential
	err := p.pool.QueryRow(ctx, query, strings.TrimSpace(clientID)).Scan(
		&row.ClientID,
		&row.Secret,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Credential{}, false, nil
		}
		return storage.Credential{}, false, err
	}

	return row, true, nil
}

func (p *PostgresStorage) UpsertCredential(ctx context.Context, clientID, secret string) (storage.Credential, error) {
	const query = `
		INSERT INTO api_credentials (client_id, secret, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (client_id) DO UPDATE SET
			secret = EXCLUDED.secret,
			updated_at = NOW()
		RETURNING client_id, secret, created_at, updated_at
	`

	var row storage.Credential
	err := p.pool.QueryRow(ctx, query, strings.TrimSpace(clientID), secret).Scan(
		&row.ClientID,
		&row.Secret,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return storage.Credential{}, err
	}
	return row, nil
}

func (p *PostgresStorage) DeleteCredential(ctx context.Context, clientID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM api_credentials WHERE client_id = $1`, strings.TrimSpace(clientID))
	return err
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
