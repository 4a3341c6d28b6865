package inventory

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const itemColumns = `id, user_id, item_name, quantity, category, raw_expiry, expiry_date, added_at`

// --------------------------------------------------
// CREATE (batch, one transaction)
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, items []*Item) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO inventory_items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			it.ID, it.UserID, it.Name, it.Quantity, it.Category,
			it.RawExpiry, dateParam(it.Expiry), it.AddedAt,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --------------------------------------------------
// READ
// --------------------------------------------------
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE user_id = $1
		ORDER BY added_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return nil, err
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

func (r *PostgresRepository) ListExpiringOn(ctx context.Context, date civil.Date) ([]*Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE expiry_date = $1
		ORDER BY user_id, added_at
	`, date.In(time.UTC))
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// --------------------------------------------------
// UPDATE / DELETE
// --------------------------------------------------
func (r *PostgresRepository) Update(ctx context.Context, it *Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_items
		SET item_name = $1,
		    quantity = $2,
		    category = $3,
		    raw_expiry = $4,
		    expiry_date = $5,
		    updated_at = now()
		WHERE id = $6 AND user_id = $7
	`,
		it.Name, it.Quantity, it.Category, it.RawExpiry, dateParam(it.Expiry),
		it.ID, it.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM inventory_items
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

// dateParam maps Unknown to SQL NULL.
func dateParam(d expiry.Date) *time.Time {
	c, ok := d.Civil()
	if !ok {
		return nil
	}
	t := c.In(time.UTC)
	return &t
}

func collectItems(rows pgx.Rows) ([]*Item, error) {
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var (
			it  Item
			exp *time.Time
		)
		if err := rows.Scan(
			&it.ID, &it.UserID, &it.Name, &it.Quantity, &it.Category,
			&it.RawExpiry, &exp, &it.AddedAt,
		); err != nil {
			return nil, err
		}
		if exp != nil {
			it.Expiry = expiry.DateOf(civil.DateOf(exp.UTC()))
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return items, nil
}
