package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RatingPositive = 1
	RatingNegative = -1
)

// UserRating 用户评分表（每个 rater/rated 组合最多一条）
type UserRating struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RaterWallet string    `json:"rater_wallet" gorm:"type:varchar(100);not null;uniqueIndex:idx_user_ratings_pair,priority:1"`
	RatedWallet string    `json:"rated_wallet" gorm:"type:varchar(100);not null;uniqueIndex:idx_user_ratings_pair,priority:2;index"`
	Rating      int       `json:"rating" gorm:"not null;check:chk_user_ratings_value,rating IN (-1, 1)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserRating) TableName() string {
	return "user_ratings"
}

func (r *UserRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsValidRating 评分只允许 +1 / -1
func IsValidRating(v int) bool {
	return v == RatingPositive || v == RatingNegative
}
