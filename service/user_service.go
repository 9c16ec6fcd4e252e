package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lingua/model"
	"lingua/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	SortBest   = "best"
	SortNewest = "newest"
)

// PictureLookup 头像查询（按 World 用户名）
type PictureLookup interface {
	Lookup(ctx context.Context, username string) (string, error)
}

type UserService struct {
	db       *gorm.DB
	pictures PictureLookup
}

func NewUserService(db *gorm.DB, pictures PictureLookup) *UserService {
	return &UserService{db: db, pictures: pictures}
}

// UserInput 保存资料请求
type UserInput struct {
	WalletAddress        string   `json:"wallet_address"`
	Username             string   `json:"username"`
	ProfilePictureURL    *string  `json:"profile_picture_url"`
	Name                 string   `json:"name"`
	Country              string   `json:"country"`
	CountryCode          string   `json:"country_code"`
	NativeLanguages      []string `json:"native_languages"`
	LearningLanguages    []string `json:"learning_languages"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
}

// UserFilter 搜索条件
type UserFilter struct {
	Language      string
	ExcludeWallet string
	Sort          string
}

// UpsertUser 创建或更新自己的资料（以钱包地址为唯一键）
func (s *UserService) UpsertUser(ctx context.Context, sessionWallet string, in UserInput) (*model.User, error) {
	if strings.TrimSpace(sessionWallet) == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	if in.WalletAddress != "" && in.WalletAddress != sessionWallet {
		return nil, fmt.Errorf("%w: wallet address mismatch", ErrForbidden)
	}
	if in.Name == "" || in.Country == "" || in.CountryCode == "" {
		return nil, fmt.Errorf("%w: missing required fields: name, country, country_code", ErrValidation)
	}

	username := in.Username
	if username == "" {
		username = "user"
	}

	picture := in.ProfilePictureURL
	if picture != nil && *picture == "" {
		picture = nil
	}
	// 没有头像时尝试按用户名查询，失败不影响保存
	if picture == nil && in.Username != "" && s.pictures != nil {
		url, err := s.pictures.Lookup(ctx, in.Username)
		if err != nil {
			utils.Logger().WithError(err).WithField("username", in.Username).Warn("profile picture lookup failed")
		} else if url != "" {
			picture = &url
		}
	}

	user := &model.User{
		WalletAddress:        sessionWallet,
		Username:             username,
		Name:                 in.Name,
		Country:              in.Country,
		CountryCode:          in.CountryCode,
		ProfilePictureURL:    picture,
		NativeLanguages:      nonNilLanguages(in.NativeLanguages),
		LearningLanguages:    nonNilLanguages(in.LearningLanguages),
		NotificationsEnabled: in.NotificationsEnabled,
	}

	var saved model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// quality_score 只由评分服务维护，这里不覆盖
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "wallet_address"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "name", "country", "country_code", "profile_picture_url",
				"native_languages", "learning_languages", "notifications_enabled", "updated_at",
			}),
		}).Create(user).Error; err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return tx.Where("wallet_address = ?", sessionWallet).First(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return &saved, nil
}

// GetUser 按钱包地址获取用户
func (s *UserService) GetUser(ctx context.Context, wallet string) (*model.User, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, wallet)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get user: %w", ErrStoreFailure, err)
	}
	return &user, nil
}

// SearchUsers 搜索语伴：母语或学习语言包含指定语言
func (s *UserService) SearchUsers(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := s.db.WithContext(ctx).Model(&model.User{})

	if lang := strings.TrimSpace(filter.Language); lang != "" {
		cond, vars := languageCondition(s.db.Dialector.Name(), lang)
		query = query.Where(cond, vars...)
	}
	if filter.ExcludeWallet != "" {
		query = query.Where("wallet_address <> ?", filter.ExcludeWallet)
	}

	if filter.Sort == SortBest {
		query = query.Order("quality_score DESC").Order("created_at DESC")
	} else {
		query = query.Order("created_at DESC")
	}

	users := make([]model.User, 0)
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch users: %w", ErrStoreFailure, err)
	}
	return users, nil
}

// languageCondition 语言包含条件，按数据库方言生成
func languageCondition(dialect, lang string) (string, []interface{}) {
	if dialect == "postgres" {
		contains, _ := json.Marshal([]string{lang})
		sql := "(native_languages @> ?::jsonb OR learning_languages @> ?::jsonb)"
		return sql, []interface{}{string(contains), string(contains)}
	}

	// SQLite：JSON 文本数组逐项比对
	sql := "(EXISTS (SELECT 1 FROM json_each(users.native_languages) WHERE json_each.value = ?)" +
		" OR EXISTS (SELECT 1 FROM json_each(users.learning_languages) WHERE json_each.value = ?))"
	return sql, []interface{}{lang, lang}
}

func nonNilLanguages(langs []string) []string {
	if langs == nil {
		return []string{}
	}
	return langs
}
