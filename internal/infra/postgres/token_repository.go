package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"mememaker/internal/tokens"
)

const (
	createTokensTable = `CREATE TABLE IF NOT EXISTS tokens (
		token TEXT PRIMARY KEY,
		rate_limit INTEGER NOT NULL DEFAULT 60,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		comment TEXT
	);`
	createTokensIndex = `CREATE INDEX IF NOT EXISTS idx_tokens_created_at ON tokens (created_at);`
	selectTokens      = `SELECT token, rate_limit, COALESCE(comment, '') FROM tokens;`
)

// TokenRepository reads API tokens from the tokens table.
type TokenRepository struct {
	DB  *DB
	DSN string
}

func NewTokenRepository(db *DB, dsn string) *TokenRepository {
	return &TokenRepository{DB: db, DSN: dsn}
}

// EnsureSchema creates the tokens table and its index when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTokensTable); err != nil {
		return fmt.Errorf("create tokens table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTokensIndex); err != nil {
		return fmt.Errorf("create tokens index: %w", err)
	}
	return nil
}

// LoadTokens implements tokens.Repository.
func (r *TokenRepository) LoadTokens(ctx context.Context) (map[string]tokens.Entry, error) {
	db, err := r.DB.Get(r.DSN)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectTokens)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	out := make(map[string]tokens.Entry)
	for rows.Next() {
		var (
			token string
			entry tokens.Entry
		)
		if err := rows.Scan(&token, &entry.RateLimit, &entry.Comment); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out[token] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
