package journey

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type FeedbackRepo interface {
	Create(dbc dbctx.Context, rows []*types.Feedback) ([]*types.Feedback, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Feedback, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Feedback, error)
	Stats(dbc dbctx.Context) (types.FeedbackStats, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	repoLog := baseLog.With("repo", "FeedbackRepo")
	return &feedbackRepo{db: db, log: repoLog}
}

func (r *feedbackRepo) Create(dbc dbctx.Context, rows []*types.Feedback) ([]*types.Feedback, error) {
	if len(rows) == 0 {
		return []*types.Feedback{}, nil
	}
	if err := dbc.Resolve(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *feedbackRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Feedback
	if err := dbc.Resolve(r.db).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *feedbackRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Feedback, error) {
	var out []*types.Feedback
	if err := dbc.Resolve(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *feedbackRepo) Stats(dbc dbctx.Context) (types.FeedbackStats, error) {
	var out types.FeedbackStats
	err := dbc.Resolve(r.db).
		Model(&types.Feedback{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating").
		Scan(&out).Error
	return out, err
}
