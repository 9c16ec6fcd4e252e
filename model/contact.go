package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnknownCountryCode 缺省国家代码
const UnknownCountryCode = "XX"

// Contact 联系人表（有向边：user_wallet 发起，contact_wallet 为目标）
type Contact struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserWallet    string          `json:"user_wallet" gorm:"type:varchar(100);not null;uniqueIndex:idx_contacts_pair,priority:1"`
	ContactWallet string          `json:"contact_wallet" gorm:"type:varchar(100);not null;uniqueIndex:idx_contacts_pair,priority:2;index"`
	ContactData   ContactSnapshot `json:"contact_data" gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContactSnapshot 建立联系时冻结的对方资料，不随对方资料变更自动刷新
type ContactSnapshot struct {
	Username          string   `json:"username"`
	Name              string   `json:"name"`
	Country           string   `json:"country"`
	CountryCode       string   `json:"countryCode"`
	ProfilePictureURL *string  `json:"profilePictureUrl"`
	NativeLanguages   []string `json:"nativeLanguages"`
	LearningLanguages []string `json:"learningLanguages"`
}

// WithDefaults 补齐缺省字段
func (s ContactSnapshot) WithDefaults() ContactSnapshot {
	if s.CountryCode == "" {
		s.CountryCode = UnknownCountryCode
	}
	if s.ProfilePictureURL != nil && *s.ProfilePictureURL == "" {
		s.ProfilePictureURL = nil
	}
	s.NativeLanguages = nonNil(s.NativeLanguages)
	s.LearningLanguages = nonNil(s.LearningLanguages)
	return s
}

// ContactView 联系人列表项（合并发起与收到的两个方向）
type ContactView struct {
	ID              uuid.UUID       `json:"id"`
	ContactWallet   string          `json:"contact_wallet"`
	ContactData     ContactSnapshot `json:"contact_data"`
	CreatedAt       time.Time       `json:"created_at"`
	InitiatedByThem bool            `json:"initiated_by_them"`
}
