package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationTemplate 推送通知模板表
type NotificationTemplate struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Type            string    `json:"type" gorm:"type:varchar(50);not null;uniqueIndex"` // 'new_contact' 等
	Title           string    `json:"title" gorm:"type:varchar(200);not null"`           // 标题模板，支持变量：{{sender_name}}
	ContentTemplate string    `json:"content_template" gorm:"type:text;not null"`        // 内容模板
	IsActive        bool      `json:"is_active" gorm:"not null"`
	Description     *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AllModels 需要迁移的全部表
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Contact{},
		&UserRating{},
		&SystemSettings{},
		&NotificationTemplate{},
	}
}
