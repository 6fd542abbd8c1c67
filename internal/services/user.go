package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

// UserService works on the user of the request context.
type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateProfile(ctx context.Context, profile types.UserProfile) (*types.User, error)
	// UpdateInterests replaces the interest set. Trees already stored for
	// dropped interests are kept.
	UpdateInterests(ctx context.Context, interests []string) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	center   *realtime.Center
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo, center *realtime.Center) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		center:   center,
	}
}

func requestUserID(ctx context.Context, op string) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "request has no user", nil)
	}
	return rd.UserID, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	const op = "user.GetMe"
	userID, err := requestUserID(ctx, op)
	if err != nil {
		return nil, err
	}
	return us.load(ctx, op, userID)
}

func (us *userService) UpdateProfile(ctx context.Context, profile types.UserProfile) (*types.User, error) {
	const op = "user.UpdateProfile"
	userID, err := requestUserID(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateProfile(dbctx.Context{Ctx: ctx}, userID, profile); err != nil {
		err = us.mapWriteErr(op, err)
		us.center.NotifyError(ctx, userID, "Could not save profile", err)
		return nil, err
	}
	return us.load(ctx, op, userID)
}

func (us *userService) UpdateInterests(ctx context.Context, interests []string) (*types.User, error) {
	const op = "user.UpdateInterests"
	userID, err := requestUserID(ctx, op)
	if err != nil {
		return nil, err
	}
	categories, err := modjourney.NormalizeInterests(interests)
	if err != nil {
		us.center.NotifyError(ctx, userID, "Could not save interests", err)
		return nil, err
	}
	if err := us.userRepo.UpdateInterests(dbctx.Context{Ctx: ctx}, userID, modjourney.CategoryNames(categories)); err != nil {
		err = us.mapWriteErr(op, err)
		us.center.NotifyError(ctx, userID, "Could not save interests", err)
		return nil, err
	}
	us.log.Info("interests updated", "user_id", userID, "count", len(categories))
	return us.load(ctx, op, userID)
}

func (us *userService) load(ctx context.Context, op string, userID uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
	}
	return users[0], nil
}

func (us *userService) mapWriteErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainagg.NewError(domainagg.CodeNotFound, op, "user not found", err)
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}
