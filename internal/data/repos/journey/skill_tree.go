package journey

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type SkillTreeRepo interface {
	// GetByKey returns nil, nil when the tree does not exist.
	GetByKey(dbc dbctx.Context, key types.SkillTreeKey) (*types.SkillTree, error)
	GetByKeys(dbc dbctx.Context, keys []types.SkillTreeKey) ([]*types.SkillTree, error)
	// ListByUserDay returns the user's trees for day in canonical category order.
	ListByUserDay(dbc dbctx.Context, userID uuid.UUID, day int) ([]*types.SkillTree, error)
	// CreateIgnoreDuplicates inserts trees, leaving existing keys untouched.
	CreateIgnoreDuplicates(dbc dbctx.Context, trees []*types.SkillTree) (int, error)
	// Upsert inserts tree or overwrites the content of the stored tree with
	// the same key, bumping its version.
	Upsert(dbc dbctx.Context, tree *types.SkillTree) error
	// UpdateTasks writes the task list and completion flag when the stored
	// version matches tree.Version, then bumps it.
	UpdateTasks(dbc dbctx.Context, tree *types.SkillTree) (bool, error)
	CountCompleted(dbc dbctx.Context) (int64, error)
}

type skillTreeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillTreeRepo(db *gorm.DB, baseLog *logger.Logger) SkillTreeRepo {
	repoLog := baseLog.With("repo", "SkillTreeRepo")
	return &skillTreeRepo{db: db, log: repoLog}
}

func (r *skillTreeRepo) GetByKey(dbc dbctx.Context, key types.SkillTreeKey) (*types.SkillTree, error) {
	var out types.SkillTree
	err := dbc.Resolve(r.db).
		Where("user_id = ? AND day = ? AND category = ?", key.UserID, key.Day, key.Category).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *skillTreeRepo) GetByKeys(dbc dbctx.Context, keys []types.SkillTreeKey) ([]*types.SkillTree, error) {
	out := []*types.SkillTree{}
	if len(keys) == 0 {
		return out, nil
	}
	type userDay struct {
		userID uuid.UUID
		day    int
	}
	groups := map[userDay][]types.Category{}
	order := []userDay{}
	for _, k := range keys {
		g := userDay{userID: k.UserID, day: k.Day}
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], k.Category)
	}
	for _, g := range order {
		var rows []*types.SkillTree
		if err := dbc.Resolve(r.db).
			Where("user_id = ? AND day = ? AND category IN ?", g.userID, g.day, groups[g]).
			Find(&rows).Error; err != nil {
			return nil, err
		}
		sortTrees(rows)
		out = append(out, rows...)
	}
	return out, nil
}

func (r *skillTreeRepo) ListByUserDay(dbc dbctx.Context, userID uuid.UUID, day int) ([]*types.SkillTree, error) {
	var rows []*types.SkillTree
	if err := dbc.Resolve(r.db).
		Where("user_id = ? AND day = ?", userID, day).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	sortTrees(rows)
	return rows, nil
}

func (r *skillTreeRepo) CreateIgnoreDuplicates(dbc dbctx.Context, trees []*types.SkillTree) (int, error) {
	if len(trees) == 0 {
		return 0, nil
	}
	res := dbc.Resolve(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "category"}},
			DoNothing: true,
		}).
		Create(&trees)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *skillTreeRepo) Upsert(dbc dbctx.Context, tree *types.SkillTree) error {
	if tree == nil {
		return errors.New("skill tree: nil tree")
	}
	updates := clause.AssignmentColumns([]string{"title", "description", "tasks", "completed", "completed_at", "updated_at"})
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("skill_tree.version + 1"),
	})
	return dbc.Resolve(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "category"}},
			DoUpdates: updates,
		}).
		Create(tree).Error
}

func (r *skillTreeRepo) UpdateTasks(dbc dbctx.Context, tree *types.SkillTree) (bool, error) {
	if tree == nil || tree.ID == uuid.Nil {
		return false, errors.New("skill tree: missing id")
	}
	now := time.Now().UTC()
	res := dbc.Resolve(r.db).
		Model(&types.SkillTree{}).
		Where("id = ? AND version = ?", tree.ID, tree.Version).
		Updates(map[string]any{
			"tasks":        tree.Tasks,
			"completed":    tree.Completed,
			"completed_at": tree.CompletedAt,
			"version":      tree.Version + 1,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	tree.Version++
	tree.UpdatedAt = now
	return true, nil
}

func (r *skillTreeRepo) CountCompleted(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.Resolve(r.db).
		Model(&types.SkillTree{}).
		Where("completed = ?", true).
		Count(&n).Error
	return n, err
}

func sortTrees(rows []*types.SkillTree) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Category.Rank() < rows[j].Category.Rank()
	})
}
