package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户表（以钱包地址为唯一标识）
type User struct {
	ID                   uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WalletAddress        string    `json:"wallet_address" gorm:"type:varchar(100);not null;uniqueIndex"`
	Username             string    `json:"username" gorm:"type:varchar(100);not null"`
	Name                 string    `json:"name" gorm:"type:varchar(200);not null"`
	Country              string    `json:"country" gorm:"type:varchar(100);not null"`
	CountryCode          string    `json:"country_code" gorm:"type:varchar(10);not null"`
	ProfilePictureURL    *string   `json:"profile_picture_url" gorm:"type:text"`
	NativeLanguages      []string  `json:"native_languages" gorm:"type:jsonb;serializer:json"`
	LearningLanguages    []string  `json:"learning_languages" gorm:"type:jsonb;serializer:json"`
	NotificationsEnabled bool      `json:"notifications_enabled" gorm:"not null"`
	QualityScore         int       `json:"quality_score" gorm:"not null"` // 收到的评分之和，由评分服务维护
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
