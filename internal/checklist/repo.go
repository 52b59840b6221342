package checklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyText is returned when an item's text is blank.
	ErrEmptyText = errors.New("item text is empty")
	// ErrNotFound is returned for an unknown item id.
	ErrNotFound = errors.New("item not found")
)

// Item is one checklist entry.
type Item struct {
	ID        string
	Text      string
	Completed bool
	CreatedAt time.Time
}

// Repository persists items.
type Repository interface {
	Insert(ctx context.Context, item Item) error
	List(ctx context.Context) ([]Item, error)
	SetCompleted(ctx context.Context, id string, completed bool) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepo stores items in the shopping_items table.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo { return &SQLiteRepo{db: db} }

// Insert adds item. ID and CreatedAt must be set by the caller.
func (r *SQLiteRepo) Insert(ctx context.Context, item Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shopping_items (id, text, completed, created_at)
		VALUES (?, ?, ?, ?)
	`, item.ID, item.Text, item.Completed, item.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// List returns every item, newest first.
func (r *SQLiteRepo) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, completed, created_at
		FROM shopping_items
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := make([]Item, 0, 16)
	for rows.Next() {
		var (
			item    Item
			created int64
		)
		if err := rows.Scan(&item.ID, &item.Text, &item.Completed, &created); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

// SetCompleted updates the completed flag of the item with id.
func (r *SQLiteRepo) SetCompleted(ctx context.Context, id string, completed bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shopping_items SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireOneRow(res, id)
}

// Delete removes the item with id.
func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
