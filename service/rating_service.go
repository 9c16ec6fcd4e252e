package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lingua/metrics"
	"lingua/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingState 某个 rater/rated 组合的评分状态
type RatingState int

const (
	RatingUnrated RatingState = iota
	RatingPositive
	RatingNegative
)

func (s RatingState) String() string {
	switch s {
	case RatingPositive:
		return "positive"
	case RatingNegative:
		return "negative"
	default:
		return "unrated"
	}
}

func stateOf(value int) RatingState {
	switch value {
	case model.RatingPositive:
		return RatingPositive
	case model.RatingNegative:
		return RatingNegative
	default:
		return RatingUnrated
	}
}

// nextRatingState 状态转移：相同评分再次提交则取消，不同评分则改写
func nextRatingState(current RatingState, submitted int) RatingState {
	target := stateOf(submitted)
	if current == target {
		return RatingUnrated
	}
	return target
}

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// SubmitRating 评价用户（点赞/点踩，重复提交相同评分即取消）
// 返回提交后自己对该用户的评分，取消后返回 nil
func (s *RatingService) SubmitRating(ctx context.Context, raterWallet, ratedWallet string, value int) (*int, error) {
	raterWallet, ratedWallet = strings.TrimSpace(raterWallet), strings.TrimSpace(ratedWallet)
	if raterWallet == "" || ratedWallet == "" || !model.IsValidRating(value) {
		return nil, fmt.Errorf("%w: need rated_wallet and rating (1 or -1)", ErrValidation)
	}
	if raterWallet == ratedWallet {
		return nil, fmt.Errorf("%w: cannot rate yourself", ErrValidation)
	}

	var (
		myRating *int
		from, to RatingState
	)

	// 状态转移与分数重算在同一个事务里，失败时整体回滚，不写入分数
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("rater_wallet = ? AND rated_wallet = ?", raterWallet, ratedWallet)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing model.UserRating
		err := query.First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			from = RatingUnrated
		case err != nil:
			return fmt.Errorf("failed to query rating: %w", err)
		default:
			from = stateOf(existing.Rating)
		}

		to = nextRatingState(from, value)
		switch {
		case from == RatingUnrated:
			rating := &model.UserRating{
				RaterWallet: raterWallet,
				RatedWallet: ratedWallet,
				Rating:      value,
			}
			if err := tx.Create(rating).Error; err != nil {
				return fmt.Errorf("failed to insert rating: %w", err)
			}
		case to == RatingUnrated:
			if err := tx.Delete(&model.UserRating{}, "id = ?", existing.ID).Error; err != nil {
				return fmt.Errorf("failed to delete rating: %w", err)
			}
		default:
			if err := tx.Model(&model.UserRating{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"rating":     value,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
		}

		if to != RatingUnrated {
			v := value
			myRating = &v
		}

		return recomputeQualityScore(tx, ratedWallet)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	metrics.RecordRatingTransition(from.String(), to.String())
	return myRating, nil
}

// recomputeQualityScore 按全部评分重新求和并写回 users.quality_score
// 每次都全量重算，不做增量更新
func recomputeQualityScore(tx *gorm.DB, ratedWallet string) error {
	var score int64
	if err := tx.Model(&model.UserRating{}).
		Select("COALESCE(SUM(rating), 0)").
		Where("rated_wallet = ?", ratedWallet).
		Scan(&score).Error; err != nil {
		return fmt.Errorf("failed to sum ratings: %w", err)
	}

	if err := tx.Model(&model.User{}).
		Where("wallet_address = ?", ratedWallet).
		Update("quality_score", score).Error; err != nil {
		return fmt.Errorf("failed to update quality score: %w", err)
	}
	return nil
}

// GetMyRating 获取自己对某个用户的评分，未评分返回 nil
func (s *RatingService) GetMyRating(ctx context.Context, raterWallet, ratedWallet string) (*int, error) {
	raterWallet, ratedWallet = strings.TrimSpace(raterWallet), strings.TrimSpace(ratedWallet)
	if ratedWallet == "" {
		return nil, fmt.Errorf("%w: missing rated_wallet parameter", ErrValidation)
	}

	var rating model.UserRating
	err := s.db.WithContext(ctx).
		Select("rating").
		Where("rater_wallet = ? AND rated_wallet = ?", raterWallet, ratedWallet).
		Take(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch rating: %w", ErrStoreFailure, err)
	}

	value := rating.Rating
	return &value, nil
}

// GetMyRatings 批量获取自己对多个用户的评分（未评分的不出现在结果中）
func (s *RatingService) GetMyRatings(ctx context.Context, raterWallet string, ratedWallets []string) (map[string]int, error) {
	raterWallet = strings.TrimSpace(raterWallet)
	if ratedWallets == nil {
		return nil, fmt.Errorf("%w: need wallet_addresses array", ErrValidation)
	}

	result := make(map[string]int)
	if len(ratedWallets) == 0 {
		return result, nil
	}

	var ratings []model.UserRating
	if err := s.db.WithContext(ctx).
		Select("rated_wallet", "rating").
		Where("rater_wallet = ? AND rated_wallet IN ?", raterWallet, ratedWallets).
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to fetch ratings: %w", ErrStoreFailure, err)
	}

	for _, r := range ratings {
		result[r.RatedWallet] = r.Rating
	}
	return result, nil
}
