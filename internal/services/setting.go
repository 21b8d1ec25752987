package services

import (
	"context"
	"errors"
	"strings"

	"github.com/savoria-catering/apiserver/types"
)

// ErrInvalidSetting is returned when a setting key is empty.
var ErrInvalidSetting = errors.New("invalid setting")

// SettingRepository defines persistence operations for site settings.
type SettingRepository interface {
	List(ctx context.Context) ([]types.Setting, error)
	Get(ctx context.Context, key string) (types.Setting, error)
	Upsert(ctx context.Context, setting types.Setting) (types.Setting, error)
	Delete(ctx context.Context, key string) error
}

// SettingService encapsulates site-setting use-cases.
type SettingService struct {
	repo SettingRepository
}

func NewSettingService(repo SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

func (s *SettingService) List(ctx context.Context) ([]types.Setting, error) {
	return s.repo.List(ctx)
}

func (s *SettingService) Get(ctx context.Context, key string) (types.Setting, error) {
	return s.repo.Get(ctx, key)
}

func (s *SettingService) Set(ctx context.Context, setting types.Setting) (types.Setting, error) {
	setting.Key = strings.TrimSpace(setting.Key)
	if setting.Key == "" {
		return types.Setting{}, ErrInvalidSetting
	}
	return s.repo.Upsert(ctx, setting)
}

func (s *SettingService) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
