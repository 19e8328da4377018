package pricing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore backs the document-store contract with two plain tables:
// products(name, kind, price_rub) and users(id, currency). users.id has no
// uniqueness constraint; duplicate ids are resolved by scan order.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return storeErr(s.db.PingContext(ctx))
	})
}

func (s *PostgresStore) ScanProducts(ctx context.Context, fn func(Product) error) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT name, kind, price_rub
			FROM products
		`)
		if err != nil {
			return storeErr(err)
		}
		defer rows.Close()

		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.Name, &p.Kind, &p.PriceRub); err != nil {
				return storeErr(err)
			}
			if err := fn(p); err != nil {
				return err
			}
		}
		return storeErr(rows.Err())
	})
}

func (s *PostgresStore) ScanUsers(ctx context.Context, fn func(UserRecord) error) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, currency
			FROM users
		`)
		if err != nil {
			return storeErr(err)
		}
		defer rows.Close()

		for rows.Next() {
			var u UserRecord
			if err := rows.Scan(&u.ID, &u.Currency); err != nil {
				return storeErr(err)
			}
			if err := fn(u); err != nil {
				return err
			}
		}
		return storeErr(rows.Err())
	})
}

func (s *PostgresStore) InsertProduct(ctx context.Context, p Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (name, kind, price_rub)
			VALUES ($1, $2, $3)
		`, p.Name, p.Kind, p.PriceRub)
		return storeErr(err)
	})
}

func (s *PostgresStore) InsertUser(ctx context.Context, u UserRecord) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, currency)
			VALUES ($1, $2)
		`, u.ID, u.Currency)
		return storeErr(err)
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

// storeErr wraps database failures in ErrStoreUnavailable. Cancellation of
// the caller's context is not a store failure and passes through.
func storeErr(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
