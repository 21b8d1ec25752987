package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// ContactRepository handles persistence for contact-form messages.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, message types.ContactMessage) (types.ContactMessage, error) {
	message.CreatedAt = time.Now()

	const query = `
		INSERT INTO contact_messages (name, email, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		message.Name,
		message.Email,
		message.Subject,
		message.Body,
		message.Read,
		message.CreatedAt,
	).Scan(&message.ID); err != nil {
		return types.ContactMessage{}, err
	}
	return message, nil
}

func (r *ContactRepository) List(ctx context.Context, offset, limit int) ([]types.ContactMessage, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM contact_messages`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, name, email, subject, body, read, created_at
		FROM contact_messages
		ORDER BY id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := make([]types.ContactMessage, 0, limit)
	for rows.Next() {
		var message types.ContactMessage
		if err := rows.Scan(
			&message.ID,
			&message.Name,
			&message.Email,
			&message.Subject,
			&message.Body,
			&message.Read,
			&message.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	return messages, total, rows.Err()
}

func (r *ContactRepository) MarkRead(ctx context.Context, id int) error {
	const query = `UPDATE contact_messages SET read = TRUE WHERE id = $1`
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
