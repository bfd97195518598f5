// internal/workers/deals/refresh-daily-deals/store.go
package refreshdailydeals

import (
	"context"
	"database/sql"

	"deal-hunter/internal/common/database"
	"deal-hunter/internal/common/errors"
	"deal-hunter/internal/models"
)

const DefaultLatestLimit = 10

const schemaDDL = `CREATE TABLE IF NOT EXISTS daily_deals (
	id         BIGSERIAL PRIMARY KEY,
	title      TEXT NOT NULL,
	price      NUMERIC(12, 2) NOT NULL,
	image_url  TEXT NOT NULL DEFAULT '',
	link       TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	currency   TEXT NOT NULL DEFAULT 'INR',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const (
	deleteAllQuery = `DELETE FROM daily_deals`
	insertQuery    = `INSERT INTO daily_deals (title, price, image_url, link, source, currency) VALUES ($1, $2, $3, $4, $5, $6)`
	latestQuery    = `SELECT id, title, price, image_url, link, source, currency, created_at FROM daily_deals ORDER BY created_at DESC, id DESC LIMIT $1`
)

// Store keeps the current set of daily deals in PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return errors.NewDealsStoreError("ensure_schema", err)
	}
	return nil
}

// Replace swaps the table content for deals in one transaction.
func (s *Store) Replace(ctx context.Context, deals []models.Deal) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteAllQuery); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, insertQuery)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range deals {
			if _, err := stmt.ExecContext(ctx, d.Title, d.Price, d.ImageURL, d.Link, d.Source, d.Currency); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.NewDealsStoreError("replace", err)
	}
	return nil
}

// Latest returns up to limit deals, newest first. limit <= 0 means DefaultLatestLimit.
func (s *Store) Latest(ctx context.Context, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}

	rows, err := s.db.QueryContext(ctx, latestQuery, limit)
	if err != nil {
		return nil, errors.NewDealsStoreError("latest", err)
	}
	defer rows.Close()

	deals := make([]models.Deal, 0, limit)
	for rows.Next() {
		var d models.Deal
		if err := rows.Scan(&d.ID, &d.Title, &d.Price, &d.ImageURL, &d.Link, &d.Source, &d.Currency, &d.CreatedAt); err != nil {
			return nil, errors.NewDealsStoreError("latest", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDealsStoreError("latest", err)
	}
	return deals, nil
}
