package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// MenuRepository handles persistence for menu categories and items.
type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) ListCategories(ctx context.Context) ([]types.MenuCategory, error) {
	const query = `
		SELECT id, name, sort_order, active, created_at, updated_at
		FROM menu_categories
		ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]types.MenuCategory, 0)
	for rows.Next() {
		var category types.MenuCategory
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.SortOrder,
			&category.Active,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *MenuRepository) GetCategory(ctx context.Context, id int) (types.MenuCategory, error) {
	const query = `
		SELECT id, name, sort_order, active, created_at, updated_at
		FROM menu_categories
		WHERE id = $1`
	var category types.MenuCategory
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.SortOrder,
		&category.Active,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MenuCategory{}, ErrNotFound
		}
		return types.MenuCategory{}, err
	}
	return category, nil
}

func (r *MenuRepository) CreateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error) {
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	const query = `
		INSERT INTO menu_categories (name, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		category.Name,
		category.SortOrder,
		category.Active,
		category.CreatedAt,
		category.UpdatedAt,
	).Scan(&category.ID); err != nil {
		return types.MenuCategory{}, err
	}
	return category, nil
}

func (r *MenuRepository) UpdateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error) {
	category.UpdatedAt = time.Now()

	const query = `
		UPDATE menu_categories
		SET name = $1,
			sort_order = $2,
			active = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		category.Name,
		category.SortOrder,
		category.Active,
		category.UpdatedAt,
		category.ID,
	)
	if err != nil {
		return types.MenuCategory{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.MenuCategory{}, err
	}
	if affected == 0 {
		return types.MenuCategory{}, ErrNotFound
	}
	return category, nil
}

func (r *MenuRepository) DeleteCategory(ctx context.Context, id int) error {
	const query = `DELETE FROM menu_categories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MenuRepository) ListItems(ctx context.Context, categoryID, offset, limit int) ([]types.MenuItem, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	countQuery := `SELECT COUNT(1) FROM menu_items`
	listQuery := `
		SELECT id, category_id, name, description, price_cents, image_url, tags, available, created_at, updated_at
		FROM menu_items`
	args := []any{}
	if categoryID > 0 {
		countQuery += ` WHERE category_id = $1`
		listQuery += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery += ` ORDER BY id`
	if categoryID > 0 {
		listQuery += ` OFFSET $2 LIMIT $3`
	} else {
		listQuery += ` OFFSET $1 LIMIT $2`
	}
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]types.MenuItem, 0, limit)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *MenuRepository) GetItem(ctx context.Context, id int) (types.MenuItem, error) {
	const query = `
		SELECT id, category_id, name, description, price_cents, image_url, tags, available, created_at, updated_at
		FROM menu_items
		WHERE id = $1`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return types.MenuItem{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.MenuItem{}, err
		}
		return types.MenuItem{}, ErrNotFound
	}
	return scanMenuItem(rows)
}

func (r *MenuRepository) CreateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	tagsJSON, err := marshalTags(item.Tags)
	if err != nil {
		return types.MenuItem{}, err
	}

	const query = `
		INSERT INTO menu_items (category_id, name, description, price_cents, image_url, tags, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.CategoryID,
		item.Name,
		item.Description,
		item.PriceCents,
		item.ImageURL,
		tagsJSON,
		item.Available,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID); err != nil {
		return types.MenuItem{}, err
	}
	return item, nil
}

func (r *MenuRepository) UpdateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	item.UpdatedAt = time.Now()

	tagsJSON, err := marshalTags(item.Tags)
	if err != nil {
		return types.MenuItem{}, err
	}

	const query = `
		UPDATE menu_items
		SET category_id = $1,
			name = $2,
			description = $3,
			price_cents = $4,
			image_url = $5,
			tags = $6,
			available = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		item.CategoryID,
		item.Name,
		item.Description,
		item.PriceCents,
		item.ImageURL,
		tagsJSON,
		item.Available,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return types.MenuItem{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.MenuItem{}, err
	}
	if affected == 0 {
		return types.MenuItem{}, ErrNotFound
	}
	return item, nil
}

func (r *MenuRepository) DeleteItem(ctx context.Context, id int) error {
	const query = `DELETE FROM menu_items WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMenuItem(rows *sql.Rows) (types.MenuItem, error) {
	var item types.MenuItem
	var tagsJSON []byte
	if err := rows.Scan(
		&item.ID,
		&item.CategoryID,
		&item.Name,
		&item.Description,
		&item.PriceCents,
		&item.ImageURL,
		&tagsJSON,
		&item.Available,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return types.MenuItem{}, err
	}
	_ = json.Unmarshal(tagsJSON, &item.Tags)
	return item, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}
