package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/savoria-catering/apiserver/internal/mq"
	"github.com/savoria-catering/apiserver/types"
)

// ErrInvalidReservation is returned when a reservation request fails basic
// validation.
var ErrInvalidReservation = errors.New("invalid reservation")

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error)
	Get(ctx context.Context, id int) (types.Reservation, error)
	List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Reservation, int, error)
	UpdateStatus(ctx context.Context, id int, status string) (types.Reservation, error)
}

// ReservationService encapsulates reservation use-cases.
type ReservationService struct {
	repo      ReservationRepository
	publisher EventPublisher
}

func NewReservationService(repo ReservationRepository, publisher EventPublisher) *ReservationService {
	return &ReservationService{repo: repo, publisher: publisher}
}

// Request creates a pending reservation for the user and emits a
// reservation.requested event.
func (s *ReservationService) Request(ctx context.Context, userID int, reservation types.Reservation) (types.Reservation, error) {
	reservation.Name = strings.TrimSpace(reservation.Name)
	reservation.Email = strings.TrimSpace(reservation.Email)
	if userID < 1 || reservation.Name == "" || reservation.Email == "" || reservation.RequestedDate.IsZero() {
		return types.Reservation{}, ErrInvalidReservation
	}

	reservation.UserID = userID
	reservation.Status = types.ReservationStatusPending

	created, err := s.repo.Create(ctx, reservation)
	if err != nil {
		return types.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	publishEvent(ctx, s.publisher, mq.ChannelReservationEvents, "reservation.requested", created)
	return created, nil
}

func (s *ReservationService) Get(ctx context.Context, id int) (types.Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Reservation, int, error) {
	if status != "" && !knownReservationStatus(status) {
		return nil, 0, ErrUnknownStatus
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, userID, status, offset, limit)
}

func (s *ReservationService) UpdateStatus(ctx context.Context, id int, status string) (types.Reservation, error) {
	if !knownReservationStatus(status) {
		return types.Reservation{}, ErrUnknownStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func knownReservationStatus(status string) bool {
	switch status {
	case types.ReservationStatusPending,
		types.ReservationStatusApproved,
		types.ReservationStatusDeclined:
		return true
	default:
		return false
	}
}
