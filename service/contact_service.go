package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"lingua/metrics"
	"lingua/model"
	"lingua/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// ListContacts 获取联系人列表
// 包含自己发起的联系人和别人主动联系自己的联系人，按对方钱包去重，按时间倒序
func (s *ContactService) ListContacts(ctx context.Context, selfWallet string) ([]model.ContactView, error) {
	if strings.TrimSpace(selfWallet) == "" {
		return nil, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	log := utils.Logger().WithField("wallet", selfWallet)

	// 1. 自己发起的（必需，失败直接返回）
	var initiated []model.Contact
	if err := s.db.WithContext(ctx).
		Where("user_wallet = ?", selfWallet).
		Order("created_at DESC").
		Find(&initiated).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to query initiated contacts: %w", ErrStoreFailure, err)
	}

	views := make([]model.ContactView, 0, len(initiated))
	for _, c := range initiated {
		views = append(views, model.ContactView{
			ID:              c.ID,
			ContactWallet:   c.ContactWallet,
			ContactData:     c.ContactData,
			CreatedAt:       c.CreatedAt,
			InitiatedByThem: false,
		})
	}

	// 2. 别人发起的（补充数据，失败只降级）
	received, err := s.receivedContacts(ctx, selfWallet)
	if err != nil {
		log.WithError(err).Warn("failed to resolve received contacts")
	}
	views = append(views, received...)

	return mergeContacts(views), nil
}

// receivedContacts 查询别人发起的联系，并用对方的实时资料替换快照
func (s *ContactService) receivedContacts(ctx context.Context, selfWallet string) ([]model.ContactView, error) {
	var edges []model.Contact
	if err := s.db.WithContext(ctx).
		Where("contact_wallet = ?", selfWallet).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("failed to query received contacts: %w", err)
	}
	if len(edges) == 0 {
		return nil, nil
	}

	wallets := make([]string, 0, len(edges))
	for _, e := range edges {
		wallets = append(wallets, e.UserWallet)
	}

	// 一次性查询所有发起人的资料
	var users []model.User
	if err := s.db.WithContext(ctx).
		Where("wallet_address IN ?", wallets).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query contact users: %w", err)
	}
	userMap := make(map[string]*model.User, len(users))
	for i := range users {
		userMap[users[i].WalletAddress] = &users[i]
	}

	views := make([]model.ContactView, 0, len(edges))
	for _, e := range edges {
		user, ok := userMap[e.UserWallet]
		if !ok {
			// 找不到对方资料的直接丢弃，不返回残缺数据
			continue
		}
		views = append(views, model.ContactView{
			ID:              e.ID,
			ContactWallet:   e.UserWallet, // 对调：联系人是发起方
			ContactData:     model.SnapshotOf(user.Profile()),
			CreatedAt:       e.CreatedAt,
			InitiatedByThem: true,
		})
	}
	return views, nil
}

// mergeContacts 按 contact_wallet 去重（保留较新的一条），再按时间倒序
// 时间相同时保留先出现的一条
func mergeContacts(views []model.ContactView) []model.ContactView {
	byWallet := make(map[string]int, len(views))
	merged := make([]model.ContactView, 0, len(views))
	for _, v := range views {
		idx, exists := byWallet[v.ContactWallet]
		if !exists {
			byWallet[v.ContactWallet] = len(merged)
			merged = append(merged, v)
			continue
		}
		if v.CreatedAt.After(merged[idx].CreatedAt) {
			merged[idx] = v
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// RecordContact 保存联系人（发起聊天后调用）
// 同一对钱包重复保存时覆盖快照，返回值 isNew 用于调用方避免重复通知
func (s *ContactService) RecordContact(ctx context.Context, selfWallet, targetWallet string, snapshot model.ContactSnapshot) (*model.Contact, bool, error) {
	targetWallet = strings.TrimSpace(targetWallet)
	if targetWallet == "" {
		return nil, false, fmt.Errorf("%w: missing required field: contact_wallet", ErrValidation)
	}
	if strings.TrimSpace(selfWallet) == "" {
		return nil, false, fmt.Errorf("%w: wallet is required", ErrValidation)
	}
	if targetWallet == selfWallet {
		return nil, false, fmt.Errorf("%w: cannot add yourself as a contact", ErrValidation)
	}

	contact := &model.Contact{
		UserWallet:    selfWallet,
		ContactWallet: targetWallet,
		ContactData:   snapshot.WithDefaults(),
	}

	var (
		saved model.Contact
		isNew bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Contact
		err := tx.Select("id").
			Where("user_wallet = ? AND contact_wallet = ?", selfWallet, targetWallet).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			isNew = true
		case err != nil:
			return fmt.Errorf("failed to check contact: %w", err)
		}

		// 唯一键 (user_wallet, contact_wallet) 冲突时只覆盖快照
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_wallet"}, {Name: "contact_wallet"}},
			DoUpdates: clause.AssignmentColumns([]string{"contact_data", "updated_at"}),
		}).Create(contact).Error; err != nil {
			return fmt.Errorf("failed to save contact: %w", err)
		}

		// 重新读取，拿到已存在记录的 id 和 created_at
		if err := tx.Where("user_wallet = ? AND contact_wallet = ?", selfWallet, targetWallet).
			First(&saved).Error; err != nil {
			return fmt.Errorf("failed to reload contact: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	metrics.RecordContact(isNew)
	return &saved, isNew, nil
}
