package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// GalleryRepository handles persistence for gallery image records.
type GalleryRepository struct {
	db *sql.DB
}

func NewGalleryRepository(db *sql.DB) *GalleryRepository {
	return &GalleryRepository{db: db}
}

func (r *GalleryRepository) Create(ctx context.Context, image types.GalleryImage) (types.GalleryImage, error) {
	image.CreatedAt = time.Now()

	const query = `
		INSERT INTO gallery_images (title, object_key, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		image.Title,
		image.ObjectKey,
		image.ContentType,
		image.SizeBytes,
		image.CreatedAt,
	).Scan(&image.ID); err != nil {
		if isUniqueViolation(err) {
			return types.GalleryImage{}, ErrDuplicate
		}
		return types.GalleryImage{}, err
	}
	return image, nil
}

func (r *GalleryRepository) Get(ctx context.Context, id int) (types.GalleryImage, error) {
	const query = `
		SELECT id, title, object_key, content_type, size_bytes, created_at
		FROM gallery_images
		WHERE id = $1`
	var image types.GalleryImage
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID,
		&image.Title,
		&image.ObjectKey,
		&image.ContentType,
		&image.SizeBytes,
		&image.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.GalleryImage{}, ErrNotFound
		}
		return types.GalleryImage{}, err
	}
	return image, nil
}

func (r *GalleryRepository) List(ctx context.Context, offset, limit int) ([]types.GalleryImage, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM gallery_images`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, title, object_key, content_type, size_bytes, created_at
		FROM gallery_images
		ORDER BY id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	images := make([]types.GalleryImage, 0, limit)
	for rows.Next() {
		var image types.GalleryImage
		if err := rows.Scan(
			&image.ID,
			&image.Title,
			&image.ObjectKey,
			&image.ContentType,
			&image.SizeBytes,
			&image.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		images = append(images, image)
	}
	return images, total, rows.Err()
}

func (r *GalleryRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM gallery_images WHERE id = $1`
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
