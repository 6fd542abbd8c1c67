package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	// ConsumeRefreshToken deletes the session holding refreshToken and reports
	// whether this call removed it. A concurrent consumer sees false.
	ConsumeRefreshToken(dbc dbctx.Context, refreshToken string) (bool, error)
	DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := dbc.Resolve(utr.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "user_id", userIDs)
}

func (utr *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "access_token", accessTokens)
}

func (utr *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	return utr.findIn(dbc, "refresh_token", refreshTokens)
}

func (utr *userTokenRepo) findIn(dbc dbctx.Context, column string, values any) ([]*types.UserToken, error) {
	var results []*types.UserToken
	switch v := values.(type) {
	case []uuid.UUID:
		if len(v) == 0 {
			return results, nil
		}
	case []string:
		if len(v) == 0 {
			return results, nil
		}
	}
	if err := dbc.Resolve(utr.db).
		Where(column+" IN ?", values).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) DeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.Resolve(utr.db).
		Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) ConsumeRefreshToken(dbc dbctx.Context, refreshToken string) (bool, error) {
	if refreshToken == "" {
		return false, nil
	}
	res := dbc.Resolve(utr.db).
		Where("refresh_token = ?", refreshToken).
		Delete(&types.UserToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (utr *userTokenRepo) DeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return dbc.Resolve(utr.db).
		Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

// DeleteExpired removes sessions whose refresh window ended before the cutoff.
func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.Resolve(utr.db).
		Where("expires_at < ?", before).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
