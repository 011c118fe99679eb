package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/deliverycost/internal/db"
	"github.com/Simplici0/deliverycost/internal/pricing"
)

// Fixed width so lexical order of created_at matches chronological order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

var errQuoteNotFound = errors.New("quote not found")

// quote is a stored snapshot of a calculation. Reading it never recalculates.
type quote struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Title     string            `json:"title"`
	Notes     string            `json:"notes"`
	Request   pricing.Request   `json:"request"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

func (s *server) createQuote(ctx context.Context, title, notes string, result pricing.Result) (quote, error) {
	q := quote{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Title:     title,
		Notes:     notes,
		Request:   result.Request,
		Breakdown: result.Breakdown,
	}

	b := q.Breakdown
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO quotes (
			id, created_at, title, notes,
			distance_km, cargo_dimension, fragile, service_load,
			base_cost, size_surcharge, fragility_surcharge, subtotal,
			load_multiplier, minimum_applied, total_cost
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`),
		q.ID, q.CreatedAt.Format(createdAtLayout), q.Title, q.Notes,
		q.Request.DistanceKm, q.Request.Dimension.String(), q.Request.Fragile, q.Request.Load.String(),
		b.BaseCost, b.SizeSurcharge, b.FragilitySurcharge, b.Subtotal,
		b.LoadMultiplier, b.MinimumApplied, b.Total,
	)
	if err != nil {
		return quote{}, fmt.Errorf("insert quote: %w", err)
	}

	return q, nil
}

func (s *server) listQuotes(ctx context.Context, query string) ([]quote, error) {
	search := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE (? = '' OR LOWER(title) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
	`), query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func (s *server) getQuote(ctx context.Context, id string) (quote, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE id = ?
	`), id)

	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return quote{}, errQuoteNotFound
	}
	if err != nil {
		return quote{}, err
	}
	return q, nil
}

const quoteColumns = `
	id, created_at, title, notes,
	distance_km, cargo_dimension, fragile, service_load,
	base_cost, size_surcharge, fragility_surcharge, subtotal,
	load_multiplier, minimum_applied, total_cost`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (quote, error) {
	var (
		q         quote
		createdAt string
		dimension string
		load      string
	)
	b := &q.Breakdown
	err := row.Scan(
		&q.ID, &createdAt, &q.Title, &q.Notes,
		&q.Request.DistanceKm, &dimension, &q.Request.Fragile, &load,
		&b.BaseCost, &b.SizeSurcharge, &b.FragilitySurcharge, &b.Subtotal,
		&b.LoadMultiplier, &b.MinimumApplied, &b.Total,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return quote{}, err
	}
	if err != nil {
		return quote{}, fmt.Errorf("scan quote: %w", err)
	}

	if q.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return quote{}, fmt.Errorf("parse quote %s created_at: %w", q.ID, err)
	}
	if q.Request.Dimension, err = pricing.ParseCargoDimension(dimension); err != nil {
		return quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}
	if q.Request.Load, err = pricing.ParseServiceLoad(load); err != nil {
		return quote{}, fmt.Errorf("quote %s: %w", q.ID, err)
	}

	return q, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// rebind rewrites ? placeholders to $N for postgres.
func (s *server) rebind(query string) string {
	if s.driver != db.DriverPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
