package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	UpdateProfile(dbc dbctx.Context, userID uuid.UUID, profile types.UserProfile) error
	UpdateInterests(dbc dbctx.Context, userID uuid.UUID, interests []string) error
	UpdateRole(dbc dbctx.Context, userID uuid.UUID, role string) error
	List(dbc dbctx.Context, limit, offset int) ([]*types.User, int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	for _, u := range users {
		u.Email = NormalizeEmail(u.Email)
	}
	if err := dbc.Resolve(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Resolve(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}
	normalized := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		normalized = append(normalized, NormalizeEmail(e))
	}
	if err := dbc.Resolve(ur.db).
		Where("email IN ?", normalized).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	if err := dbc.Resolve(ur.db).
		Model(&types.User{}).
		Where("email = ?", NormalizeEmail(userEmail)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateProfile(dbc dbctx.Context, userID uuid.UUID, profile types.UserProfile) error {
	updates := profile.Updates()
	if len(updates) == 0 {
		return nil
	}
	res := dbc.Resolve(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ur *userRepo) UpdateInterests(dbc dbctx.Context, userID uuid.UUID, interests []string) error {
	res := dbc.Resolve(ur.db).
		Model(&types.User{ID: userID}).
		Update("interests", datatypes.JSONSlice[string](interests))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ur *userRepo) UpdateRole(dbc dbctx.Context, userID uuid.UUID, role string) error {
	return dbc.Resolve(ur.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}

// List pages users by signup time, newest first.
func (ur *userRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.User, int64, error) {
	db := dbc.Resolve(ur.db)
	var total int64
	if err := db.Model(&types.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.User
	if err := db.
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
