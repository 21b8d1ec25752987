package services

import (
	"context"
	"errors"
	"strings"

	"github.com/savoria-catering/apiserver/types"
)

// ErrInvalidMenuItem is returned when a menu item fails basic validation.
var ErrInvalidMenuItem = errors.New("invalid menu item")

// ErrInvalidCategory is returned when a category fails basic validation.
var ErrInvalidCategory = errors.New("invalid category")

// MenuRepository defines persistence operations for the menu.
type MenuRepository interface {
	ListCategories(ctx context.Context) ([]types.MenuCategory, error)
	GetCategory(ctx context.Context, id int) (types.MenuCategory, error)
	CreateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error)
	UpdateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error)
	DeleteCategory(ctx context.Context, id int) error
	ListItems(ctx context.Context, categoryID, offset, limit int) ([]types.MenuItem, int, error)
	GetItem(ctx context.Context, id int) (types.MenuItem, error)
	CreateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error)
	UpdateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error)
	DeleteItem(ctx context.Context, id int) error
}

// MenuService encapsulates menu use-cases.
type MenuService struct {
	repo MenuRepository
}

func NewMenuService(repo MenuRepository) *MenuService {
	return &MenuService{repo: repo}
}

func (s *MenuService) ListCategories(ctx context.Context) ([]types.MenuCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *MenuService) GetCategory(ctx context.Context, id int) (types.MenuCategory, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *MenuService) CreateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return types.MenuCategory{}, ErrInvalidCategory
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *MenuService) UpdateCategory(ctx context.Context, category types.MenuCategory) (types.MenuCategory, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return types.MenuCategory{}, ErrInvalidCategory
	}
	return s.repo.UpdateCategory(ctx, category)
}

func (s *MenuService) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *MenuService) ListItems(ctx context.Context, categoryID, offset, limit int) ([]types.MenuItem, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListItems(ctx, categoryID, offset, limit)
}

func (s *MenuService) GetItem(ctx context.Context, id int) (types.MenuItem, error) {
	return s.repo.GetItem(ctx, id)
}

func (s *MenuService) CreateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	if err := validateItem(item); err != nil {
		return types.MenuItem{}, err
	}
	return s.repo.CreateItem(ctx, item)
}

func (s *MenuService) UpdateItem(ctx context.Context, item types.MenuItem) (types.MenuItem, error) {
	if err := validateItem(item); err != nil {
		return types.MenuItem{}, err
	}
	return s.repo.UpdateItem(ctx, item)
}

func (s *MenuService) DeleteItem(ctx context.Context, id int) error {
	return s.repo.DeleteItem(ctx, id)
}

func validateItem(item types.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" || item.CategoryID < 1 || item.PriceCents < 0 {
		return ErrInvalidMenuItem
	}
	return nil
}
