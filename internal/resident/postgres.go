package resident

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgxpool.Pool used by PostgresProvider.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const listResidentsSQL = `SELECT coalesce(cpf, ''), coalesce(unit, ''), coalesce(name, '')
FROM residents
ORDER BY unit, name`

// PostgresProvider reads the roster from a residents table.
type PostgresProvider struct {
	db Querier
}

func NewPostgresProvider(db Querier) *PostgresProvider {
	return &PostgresProvider{db: db}
}

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (p *PostgresProvider) Residents(ctx context.Context) ([]Resident, error) {
	rows, err := p.db.Query(ctx, listResidentsSQL)
	if err != nil {
		return nil, fmt.Errorf("query residents: %w", err)
	}
	defer rows.Close()

	var out []Resident
	for rows.Next() {
		var r Resident
		if err := rows.Scan(&r.CPF, &r.Unit, &r.Name); err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residents: %w", err)
	}
	return Normalize(out), nil
}
