// Package product provides SQL access to the perfume catalog.
package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aromatch/scentia/internal/domain"
	"github.com/aromatch/scentia/internal/domain/predicate"
)

const selectColumns = `id, name, url, main_accords, longevity, sillage,
	gender, suitable_season, suitable_time, description, positive_rate`

// Repo reads and writes catalog rows.
type Repo struct {
	conn *sql.DB
}

// New creates a catalog repository.
func New(conn *sql.DB) *Repo {
	return &Repo{conn: conn}
}

// FindByPredicate fetches candidate rows matching the filter predicate.
// An empty predicate matches the whole catalog. Every user value travels
// as a named bind parameter; the SQL text contains placeholders only.
func (r *Repo) FindByPredicate(ctx context.Context, pred predicate.Predicate) ([]domain.Product, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns)
	sb.WriteString(" FROM products")

	clauses := pred.Clauses()
	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		for i, c := range clauses {
			if i > 0 {
				sb.WriteString(" AND ")
			}
			sb.WriteString(c.Fragment())
		}
	}

	params := pred.Params()
	args := make([]any, 0, len(params))
	for _, p := range params {
		args = append(args, sql.Named(p.Name, p.Value))
	}

	rows, err := r.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// FindByDescription fetches rows whose description contains the given
// text (case-insensitive), optionally requiring a minimum positive rate.
func (r *Repo) FindByDescription(ctx context.Context, contains string, minRate *float64) ([]domain.Product, error) {
	q := "SELECT " + selectColumns + " FROM products WHERE LOWER(description) LIKE :descr"
	args := []any{sql.Named("descr", "%"+strings.ToLower(contains)+"%")}

	if minRate != nil {
		q += " AND positive_rate >= :min_rate"
		args = append(args, sql.Named("min_rate", *minRate))
	}

	rows, err := r.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products by description: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ReplaceAll atomically swaps the catalog contents for the given rows.
// Used by the CSV loader.
func (r *Repo) ReplaceAll(ctx context.Context, products []domain.Product) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products
		(name, url, main_accords, longevity, sillage, gender,
		 suitable_season, suitable_time, description, positive_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.Name, p.URL, p.MainAccords, p.Longevity, p.Sillage, p.Gender,
			p.Season, p.Time, p.Description, p.PositiveRate,
		); err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Count returns the catalog size.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.URL, &p.MainAccords, &p.Longevity, &p.Sillage,
			&p.Gender, &p.Season, &p.Time, &p.Description, &p.PositiveRate,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}
