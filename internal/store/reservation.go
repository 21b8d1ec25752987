package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/savoria-catering/apiserver/types"
)

// ReservationRepository handles persistence for reservations.
type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	now := time.Now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	const query = `
		INSERT INTO reservations (user_id, name, email, phone, requested_date, party_size, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		reservation.UserID,
		reservation.Name,
		reservation.Email,
		reservation.Phone,
		reservation.RequestedDate,
		reservation.PartySize,
		reservation.Message,
		reservation.Status,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	).Scan(&reservation.ID); err != nil {
		return types.Reservation{}, err
	}
	return reservation, nil
}

func (r *ReservationRepository) Get(ctx context.Context, id int) (types.Reservation, error) {
	const query = `
		SELECT id, user_id, name, email, phone, requested_date, party_size, message, status, created_at, updated_at
		FROM reservations
		WHERE id = $1`
	var reservation types.Reservation
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.UserID,
		&reservation.Name,
		&reservation.Email,
		&reservation.Phone,
		&reservation.RequestedDate,
		&reservation.PartySize,
		&reservation.Message,
		&reservation.Status,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reservation{}, ErrNotFound
		}
		return types.Reservation{}, err
	}
	return reservation, nil
}

// List returns reservations, optionally filtered by owning user and/or
// status. Pass userID = 0 or status = "" to skip a filter.
func (r *ReservationRepository) List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Reservation, int, error) {
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM reservations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	listQuery := `
		SELECT id, user_id, name, email, phone, requested_date, party_size, message, status, created_at, updated_at
		FROM reservations` + where + `
		ORDER BY id DESC
		OFFSET $` + strconv.Itoa(n+1) + ` LIMIT $` + strconv.Itoa(n+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations := make([]types.Reservation, 0, limit)
	for rows.Next() {
		var reservation types.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.UserID,
			&reservation.Name,
			&reservation.Email,
			&reservation.Phone,
			&reservation.RequestedDate,
			&reservation.PartySize,
			&reservation.Message,
			&reservation.Status,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, total, rows.Err()
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int, status string) (types.Reservation, error) {
	const query = `
		UPDATE reservations
		SET status = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return types.Reservation{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Reservation{}, err
	}
	if affected == 0 {
		return types.Reservation{}, ErrNotFound
	}
	return r.Get(ctx, id)
}
