package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/savoria-catering/apiserver/internal/mq"
	"github.com/savoria-catering/apiserver/types"
)

// ErrInvalidMessage is returned when a contact message fails basic
// validation.
var ErrInvalidMessage = errors.New("invalid message")

// ContactRepository defines persistence operations for contact messages.
type ContactRepository interface {
	Create(ctx context.Context, message types.ContactMessage) (types.ContactMessage, error)
	List(ctx context.Context, offset, limit int) ([]types.ContactMessage, int, error)
	MarkRead(ctx context.Context, id int) error
}

// ContactService encapsulates contact-form use-cases.
type ContactService struct {
	repo      ContactRepository
	publisher EventPublisher
}

func NewContactService(repo ContactRepository, publisher EventPublisher) *ContactService {
	return &ContactService{repo: repo, publisher: publisher}
}

// Submit records a contact message and emits a contact.received event.
func (s *ContactService) Submit(ctx context.Context, message types.ContactMessage) (types.ContactMessage, error) {
	message.Name = strings.TrimSpace(message.Name)
	message.Email = strings.TrimSpace(message.Email)
	message.Body = strings.TrimSpace(message.Body)
	if message.Name == "" || message.Email == "" || message.Body == "" {
		return types.ContactMessage{}, ErrInvalidMessage
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return types.ContactMessage{}, fmt.Errorf("create contact message: %w", err)
	}

	publishEvent(ctx, s.publisher, mq.ChannelContactEvents, "contact.received", created)
	return created, nil
}

func (s *ContactService) List(ctx context.Context, offset, limit int) ([]types.ContactMessage, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *ContactService) MarkRead(ctx context.Context, id int) error {
	return s.repo.MarkRead(ctx, id)
}
