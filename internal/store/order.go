package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// OrderRepository handles persistence for orders and their line items.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts an order together with its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order types.Order) (types.Order, error) {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Order{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const orderQuery = `
		INSERT INTO orders (user_id, status, event_date, address, headcount, notes, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		orderQuery,
		order.UserID,
		order.Status,
		order.EventDate,
		order.Address,
		order.Headcount,
		order.Notes,
		order.TotalCents,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID); err != nil {
		return types.Order{}, err
	}

	const itemQuery = `
		INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.QueryRowContext(
			ctx,
			itemQuery,
			order.ID,
			order.Items[i].MenuItemID,
			order.Items[i].Name,
			order.Items[i].Quantity,
			order.Items[i].UnitPriceCents,
		).Scan(&order.Items[i].ID); err != nil {
			return types.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, id int) (types.Order, error) {
	const query = `
		SELECT id, user_id, status, event_date, address, headcount, notes, total_cents, created_at, updated_at
		FROM orders
		WHERE id = $1`
	var order types.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.EventDate,
		&order.Address,
		&order.Headcount,
		&order.Notes,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Order{}, ErrNotFound
		}
		return types.Order{}, err
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return types.Order{}, err
	}
	order.Items = items
	return order, nil
}

// List returns orders, optionally filtered by owning user and/or status.
// Pass userID = 0 or status = "" to skip a filter. Line items are not
// populated on list responses.
func (r *OrderRepository) List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Order, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	where := ""
	args := []any{}
	if userID > 0 {
		where = ` WHERE user_id = $1`
		args = append(args, userID)
	}
	if status != "" {
		if where == "" {
			where = ` WHERE status = $1`
		} else {
			where += ` AND status = $2`
		}
		args = append(args, status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	listQuery := `
		SELECT id, user_id, status, event_date, address, headcount, notes, total_cents, created_at, updated_at
		FROM orders` + where + `
		ORDER BY id DESC
		OFFSET $` + strconv.Itoa(n+1) + ` LIMIT $` + strconv.Itoa(n+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]types.Order, 0, limit)
	for rows.Next() {
		var order types.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.EventDate,
			&order.Address,
			&order.Headcount,
			&order.Notes,
			&order.TotalCents,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status string) (types.Order, error) {
	const query = `
		UPDATE orders
		SET status = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return types.Order{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Order{}, err
	}
	if affected == 0 {
		return types.Order{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int) ([]types.OrderItem, error) {
	const query = `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.OrderItem, 0)
	for rows.Next() {
		var item types.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Name,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
