package journey

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// GetByUserID returns nil, nil when the user has no progress yet.
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error)
	ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserProgress, error)
	// CreateIfAbsent inserts p unless a row for the user exists. It reports
	// whether this call created the row.
	CreateIfAbsent(dbc dbctx.Context, p *types.UserProgress) (bool, error)
	// UpdateByVersion writes the mutable columns of p when the stored version
	// equals expectedVersion, and bumps the version. It reports whether a row
	// was written.
	UpdateByVersion(dbc dbctx.Context, p *types.UserProgress, expectedVersion int) (bool, error)
	// SetSkillTreeRefs records the trees of day, only while day is current.
	SetSkillTreeRefs(dbc dbctx.Context, userID uuid.UUID, day int, refs []string) error
	Stats(dbc dbctx.Context) (types.ProgressStats, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error) {
	var out types.UserProgress
	err := dbc.Resolve(r.db).
		Where("user_id = ?", userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *progressRepo) ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserProgress, error) {
	var out []*types.UserProgress
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := dbc.Resolve(r.db).
		Where("user_id IN ?", userIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) CreateIfAbsent(dbc dbctx.Context, p *types.UserProgress) (bool, error) {
	if p == nil || p.UserID == uuid.Nil {
		return false, errors.New("progress: missing user id")
	}
	res := dbc.Resolve(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *progressRepo) UpdateByVersion(dbc dbctx.Context, p *types.UserProgress, expectedVersion int) (bool, error) {
	if p == nil || p.UserID == uuid.Nil {
		return false, errors.New("progress: missing user id")
	}
	now := time.Now().UTC()
	res := dbc.Resolve(r.db).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND version = ?", p.UserID, expectedVersion).
		Updates(map[string]any{
			"current_day":      p.CurrentDay,
			"completed_days":   p.CompletedDays,
			"skill_trees":      p.SkillTrees,
			"total_points":     p.TotalPoints,
			"streak":           p.Streak,
			"last_active_date": p.LastActiveDate,
			"version":          expectedVersion + 1,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.Version = expectedVersion + 1
	p.UpdatedAt = now
	return true, nil
}

func (r *progressRepo) SetSkillTreeRefs(dbc dbctx.Context, userID uuid.UUID, day int, refs []string) error {
	if refs == nil {
		refs = []string{}
	}
	return dbc.Resolve(r.db).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND current_day = ?", userID, day).
		Update("skill_trees", datatypes.JSONSlice[string](refs)).Error
}

func (r *progressRepo) Stats(dbc dbctx.Context) (types.ProgressStats, error) {
	var row struct {
		Started     int64
		Completed   int64
		AverageDay  float64
		TotalPoints int64
	}
	err := dbc.Resolve(r.db).
		Model(&types.UserProgress{}).
		Select(
			"COUNT(*) AS started, "+
				"COALESCE(SUM(CASE WHEN current_day >= ? THEN 1 ELSE 0 END), 0) AS completed, "+
				"COALESCE(AVG(current_day), 0) AS average_day, "+
				"COALESCE(SUM(total_points), 0) AS total_points",
			types.JourneyCompleteDay,
		).
		Scan(&row).Error
	if err != nil {
		return types.ProgressStats{}, err
	}
	return types.ProgressStats{
		Started:     row.Started,
		Completed:   row.Completed,
		AverageDay:  row.AverageDay,
		TotalPoints: row.TotalPoints,
	}, nil
}
