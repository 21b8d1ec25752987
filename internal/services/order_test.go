package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
)

type fakeMenuRepo struct {
	items map[int]types.MenuItem
}

func (r *fakeMenuRepo) ListCategories(context.Context) ([]types.MenuCategory, error) {
	return nil, nil
}

func (r *fakeMenuRepo) GetCategory(context.Context, int) (types.MenuCategory, error) {
	return types.MenuCategory{}, store.ErrNotFound
}

func (r *fakeMenuRepo) CreateCategory(_ context.Context, c types.MenuCategory) (types.MenuCategory, error) {
	return c, nil
}

func (r *fakeMenuRepo) UpdateCategory(_ context.Context, c types.MenuCategory) (types.MenuCategory, error) {
	return c, nil
}

func (r *fakeMenuRepo) DeleteCategory(context.Context, int) error { return nil }

func (r *fakeMenuRepo) ListItems(context.Context, int, int, int) ([]types.MenuItem, int, error) {
	return nil, 0, nil
}

func (r *fakeMenuRepo) GetItem(_ context.Context, id int) (types.MenuItem, error) {
	item, ok := r.items[id]
	if !ok {
		return types.MenuItem{}, store.ErrNotFound
	}
	return item, nil
}

func (r *fakeMenuRepo) CreateItem(_ context.Context, item types.MenuItem) (types.MenuItem, error) {
	return item, nil
}

func (r *fakeMenuRepo) UpdateItem(_ context.Context, item types.MenuItem) (types.MenuItem, error) {
	return item, nil
}

func (r *fakeMenuRepo) DeleteItem(context.Context, int) error { return nil }

type fakeOrderRepo struct {
	nextID int
	orders map[int]types.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int]types.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order types.Order) (types.Order, error) {
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = order
	return order, nil
}

func (r *fakeOrderRepo) Get(_ context.Context, id int) (types.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return types.Order{}, store.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) List(_ context.Context, userID int, status string, _, _ int) ([]types.Order, int, error) {
	var out []types.Order
	for _, order := range r.orders {
		if userID > 0 && order.UserID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		out = append(out, order)
	}
	return out, len(out), nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int, status string) (types.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return types.Order{}, store.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return order, nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, _ []byte, attrs map[string]string) (string, error) {
	p.events = append(p.events, attrs["type"])
	return "msg-1", nil
}

func newTestOrderService() (*OrderService, *fakeOrderRepo, *recordingPublisher) {
	menu := &fakeMenuRepo{items: map[int]types.MenuItem{
		1: {ID: 1, Name: "Bruschetta Platter", PriceCents: 4500, Available: true},
		2: {ID: 2, Name: "Roast Duck", PriceCents: 12000, Available: true},
		3: {ID: 3, Name: "Off Menu Special", PriceCents: 9000, Available: false},
	}}
	repo := newFakeOrderRepo()
	publisher := &recordingPublisher{}
	return NewOrderService(repo, menu, publisher), repo, publisher
}

func TestPlaceOrderPricesFromMenu(t *testing.T) {
	svc, _, publisher := newTestOrderService()

	order, err := svc.Place(context.Background(), 7, PlaceOrderParams{
		EventDate: time.Now().Add(72 * time.Hour),
		Address:   "12 Harbour St",
		Headcount: 40,
		Lines: []OrderLine{
			{MenuItemID: 1, Quantity: 3},
			{MenuItemID: 2, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.Status != types.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
	want := int64(3*4500 + 2*12000)
	if order.TotalCents != want {
		t.Fatalf("total %d, want %d", order.TotalCents, want)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].UnitPriceCents != 4500 || order.Items[0].Name != "Bruschetta Platter" {
		t.Fatalf("line not snapshotted from menu: %+v", order.Items[0])
	}
	if len(publisher.events) != 1 || publisher.events[0] != "order.created" {
		t.Fatalf("expected order.created event, got %v", publisher.events)
	}
}

func TestPlaceOrderRejectsBadLines(t *testing.T) {
	svc, repo, _ := newTestOrderService()
	ctx := context.Background()
	eventDate := time.Now().Add(72 * time.Hour)

	if _, err := svc.Place(ctx, 7, PlaceOrderParams{EventDate: eventDate}); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for empty lines, got %v", err)
	}
	if _, err := svc.Place(ctx, 7, PlaceOrderParams{
		EventDate: eventDate,
		Lines:     []OrderLine{{MenuItemID: 1, Quantity: 0}},
	}); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for zero quantity, got %v", err)
	}
	if _, err := svc.Place(ctx, 7, PlaceOrderParams{
		EventDate: eventDate,
		Lines:     []OrderLine{{MenuItemID: 99, Quantity: 1}},
	}); !errors.Is(err, ErrUnknownMenuItem) {
		t.Fatalf("expected ErrUnknownMenuItem for missing item, got %v", err)
	}
	if _, err := svc.Place(ctx, 7, PlaceOrderParams{
		EventDate: eventDate,
		Lines:     []OrderLine{{MenuItemID: 3, Quantity: 1}},
	}); !errors.Is(err, ErrUnknownMenuItem) {
		t.Fatalf("expected ErrUnknownMenuItem for unavailable item, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("expected no orders stored, got %d", len(repo.orders))
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, _, publisher := newTestOrderService()
	ctx := context.Background()

	order, err := svc.Place(ctx, 7, PlaceOrderParams{
		EventDate: time.Now().Add(72 * time.Hour),
		Lines:     []OrderLine{{MenuItemID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, order.ID, types.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != types.OrderStatusConfirmed {
		t.Fatalf("status %q, want confirmed", updated.Status)
	}

	if _, err := svc.UpdateStatus(ctx, order.ID, "shipped"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, 999, types.OrderStatusCancelled); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := []string{"order.created", "order.status_changed"}
	if len(publisher.events) != len(want) {
		t.Fatalf("events %v, want %v", publisher.events, want)
	}
}

func TestListOrdersValidatesStatus(t *testing.T) {
	svc, _, _ := newTestOrderService()

	if _, _, err := svc.List(context.Background(), 0, "bogus", 0, 20); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
