package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
	"leadgate/pkg/requestcontext"
)

// pgCheckViolation is the SQLSTATE for a failed CHECK constraint.
const pgCheckViolation = "23514"

// DefaultTable matches the contacts table created by the migrations.
const DefaultTable = "contacts"

// PostgresStore persists leads in PostgreSQL.
type PostgresStore struct {
	db          *sql.DB
	countQuery  string
	insertQuery string
}

// Option configures a PostgresStore.
type Option func(*options)

type options struct {
	table string
}

// WithTable overrides the table name. The name is quoted, never interpolated raw.
func WithTable(table string) Option {
	return func(o *options) {
		if table != "" {
			o.table = table
		}
	}
}

// New constructs a PostgreSQL-backed lead store.
func New(db *sql.DB, opts ...Option) *PostgresStore {
	o := options{table: DefaultTable}
	for _, opt := range opts {
		opt(&o)
	}
	table := pq.QuoteIdentifier(o.table)
	return &PostgresStore{
		db:         db,
		countQuery: fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE ip_address = $1`, table),
		insertQuery: fmt.Sprintf(`
		INSERT INTO %s (id, name, company, email, phone, team_size, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, table),
	}
}

// Count returns the number of stored leads from ip.
func (s *PostgresStore) Count(ctx context.Context, ip string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.countQuery, ip).Scan(&count); err != nil {
		return 0, fmt.Errorf("count leads by ip: %w", err)
	}
	return count, nil
}

// Insert stores a lead.
func (s *PostgresStore) Insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error) {
	rec := models.NewRecord(sub, requestcontext.Now(ctx))
	_, err := s.db.ExecContext(ctx, s.insertQuery,
		rec.ID,
		rec.Name,
		rec.Company,
		rec.Email,
		rec.Phone,
		rec.TeamSize,
		rec.IPAddress,
		rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return nil, fmt.Errorf("insert lead: %s: %w", pgErr.ConstraintName, sentinel.ErrInvalidRecord)
		}
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return rec, nil
}

// Health pings the database.
func (s *PostgresStore) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
