package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/savoria-catering/apiserver/internal/mq"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
)

var (
	// ErrInvalidOrder is returned when an order fails basic validation.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrUnknownStatus is returned when a status update names a status
	// outside the known set.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrUnknownMenuItem is returned when an order line references a menu
	// item that does not exist or is unavailable.
	ErrUnknownMenuItem = errors.New("unknown menu item")
)

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order types.Order) (types.Order, error)
	Get(ctx context.Context, id int) (types.Order, error)
	List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Order, int, error)
	UpdateStatus(ctx context.Context, id int, status string) (types.Order, error)
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	MenuItemID int
	Quantity   int
}

// PlaceOrderParams carries the fields accepted when placing an order.
type PlaceOrderParams struct {
	EventDate time.Time
	Address   string
	Headcount int
	Notes     string
	Lines     []OrderLine
}

// OrderService encapsulates order use-cases. Totals are computed from stored
// menu prices, never from client input.
type OrderService struct {
	repo      OrderRepository
	menu      MenuRepository
	publisher EventPublisher
}

func NewOrderService(repo OrderRepository, menu MenuRepository, publisher EventPublisher) *OrderService {
	return &OrderService{repo: repo, menu: menu, publisher: publisher}
}

// Place creates an order for the user, pricing each line from the menu at
// order time, then emits an order.created event.
func (s *OrderService) Place(ctx context.Context, userID int, params PlaceOrderParams) (types.Order, error) {
	if userID < 1 || params.EventDate.IsZero() || len(params.Lines) == 0 {
		return types.Order{}, ErrInvalidOrder
	}

	var total int64
	items := make([]types.OrderItem, 0, len(params.Lines))
	for _, line := range params.Lines {
		if line.Quantity < 1 {
			return types.Order{}, ErrInvalidOrder
		}
		menuItem, err := s.menu.GetItem(ctx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return types.Order{}, ErrUnknownMenuItem
			}
			return types.Order{}, fmt.Errorf("lookup menu item: %w", err)
		}
		if !menuItem.Available {
			return types.Order{}, ErrUnknownMenuItem
		}
		items = append(items, types.OrderItem{
			MenuItemID:     menuItem.ID,
			Name:           menuItem.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: menuItem.PriceCents,
		})
		total += menuItem.PriceCents * int64(line.Quantity)
	}

	order, err := s.repo.Create(ctx, types.Order{
		UserID:     userID,
		Status:     types.OrderStatusPending,
		EventDate:  params.EventDate,
		Address:    params.Address,
		Headcount:  params.Headcount,
		Notes:      params.Notes,
		TotalCents: total,
		Items:      items,
	})
	if err != nil {
		return types.Order{}, fmt.Errorf("create order: %w", err)
	}

	publishEvent(ctx, s.publisher, mq.ChannelOrderEvents, "order.created", order)
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id int) (types.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *OrderService) List(ctx context.Context, userID int, status string, offset, limit int) ([]types.Order, int, error) {
	if status != "" && !knownOrderStatus(status) {
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

// UpdateStatus moves an order to any known status and emits an
// order.status_changed event.
func (s *OrderService) UpdateStatus(ctx context.Context, id int, status string) (types.Order, error) {
	if !knownOrderStatus(status) {
		return types.Order{}, ErrUnknownStatus
	}

	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return types.Order{}, err
	}

	publishEvent(ctx, s.publisher, mq.ChannelOrderEvents, "order.status_changed", order)
	return order, nil
}

func knownOrderStatus(status string) bool {
	switch status {
	case types.OrderStatusPending,
		types.OrderStatusConfirmed,
		types.OrderStatusInProgress,
		types.OrderStatusDelivered,
		types.OrderStatusCancelled:
		return true
	default:
		return false
	}
}
