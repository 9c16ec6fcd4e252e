package service

import (
	"context"
	"fmt"
	"sync"

	"lingua/model"
	"lingua/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultSettings 启动时写入的功能开关（已存在的不覆盖）
var defaultSettings = []model.SystemSettings{
	{SettingKey: FeatureContactNotifications, SettingValue: "true", Description: "Notify users when someone adds them as a contact"},
	{SettingKey: FeatureProfilePictureLookup, SettingValue: "true", Description: "Look up World profile pictures by username"},
}

// SystemSettingsService 系统配置服务
type SystemSettingsService struct {
	db              *gorm.DB
	settingsCache   map[string]string
	settingsCacheMu sync.RWMutex
}

func NewSystemSettingsService(db *gorm.DB) *SystemSettingsService {
	service := &SystemSettingsService{
		db:            db,
		settingsCache: make(map[string]string),
	}
	// 启动时加载所有配置到缓存
	if err := service.LoadSettings(context.Background()); err != nil {
		utils.Logger().WithError(err).Warn("failed to load system settings, using defaults")
	}
	return service
}

// InitDefaultSettings 写入默认功能开关
func (s *SystemSettingsService) InitDefaultSettings(ctx context.Context) error {
	for _, setting := range defaultSettings {
		row := setting
		if err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "setting_key"}}, DoNothing: true}).
			Create(&row).Error; err != nil {
			return fmt.Errorf("failed to init setting %s: %w", setting.SettingKey, err)
		}
	}
	return s.LoadSettings(ctx)
}

// LoadSettings 从数据库加载所有配置到内存缓存
func (s *SystemSettingsService) LoadSettings(ctx context.Context) error {
	var settings []model.SystemSettings
	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return fmt.Errorf("%w: failed to load system settings: %w", ErrStoreFailure, err)
	}

	fresh := make(map[string]string, len(settings))
	for _, setting := range settings {
		fresh[setting.SettingKey] = setting.SettingValue
	}

	s.settingsCacheMu.Lock()
	s.settingsCache = fresh
	s.settingsCacheMu.Unlock()

	return nil
}

// GetSetting 获取配置值（从缓存）
func (s *SystemSettingsService) GetSetting(key string) (string, bool) {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	value, exists := s.settingsCache[key]
	return value, exists
}

// GetBoolSetting 获取布尔类型配置
func (s *SystemSettingsService) GetBoolSetting(key string, defaultValue bool) bool {
	value, exists := s.GetSetting(key)
	if !exists {
		return defaultValue
	}
	return value == "true"
}

// IsFeatureEnabled 检查功能是否启用
func (s *SystemSettingsService) IsFeatureEnabled(featureKey string) bool {
	return s.GetBoolSetting(featureKey, false)
}

// UpdateSetting 更新配置（同时更新数据库和缓存）
func (s *SystemSettingsService) UpdateSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", ErrValidation)
	}

	result := s.db.WithContext(ctx).Model(&model.SystemSettings{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)

	if result.Error != nil {
		return fmt.Errorf("%w: failed to update setting: %w", ErrStoreFailure, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: setting key not found: %s", ErrNotFound, key)
	}

	// 更新缓存
	s.settingsCacheMu.Lock()
	s.settingsCache[key] = value
	s.settingsCacheMu.Unlock()

	return nil
}

// GetAllSettings 获取所有配置
func (s *SystemSettingsService) GetAllSettings() map[string]string {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	// 返回缓存的副本
	result := make(map[string]string, len(s.settingsCache))
	for k, v := range s.settingsCache {
		result[k] = v
	}
	return result
}
