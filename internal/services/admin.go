package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

// UserWithProgress is one row of the admin user list. Progress is nil for
// users who never opened the dashboard.
type UserWithProgress struct {
	User     *types.User         `json:"user"`
	Progress *types.UserProgress `json:"progress"`
}

type UserPage struct {
	Users  []UserWithProgress `json:"users"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type AdminStats struct {
	Users    int64               `json:"users"`
	Progress types.ProgressStats `json:"progress"`
	Feedback types.FeedbackStats `json:"feedback"`
}

type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) (*UserPage, error)
	Stats(ctx context.Context) (*AdminStats, error)
}

type adminService struct {
	log       *logger.Logger
	users     repos.UserRepo
	progress  repos.ProgressRepo
	skillTree repos.SkillTreeRepo
	feedback  repos.FeedbackRepo
}

func NewAdminService(log *logger.Logger, set repos.Set) AdminService {
	return &adminService{
		log:       log.With("service", "AdminService"),
		users:     set.User,
		progress:  set.Progress,
		skillTree: set.SkillTree,
		feedback:  set.Feedback,
	}
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	const op = "admin.ListUsers"
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}
	dbc := dbctx.Context{Ctx: ctx}
	users, total, err := s.users.List(dbc, limit, offset)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	rows, err := s.progress.ListByUserIDs(dbc, ids)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	byUser := make(map[uuid.UUID]*types.UserProgress, len(rows))
	for _, p := range rows {
		byUser[p.UserID] = p
	}
	page := &UserPage{Users: make([]UserWithProgress, 0, len(users)), Total: total, Limit: limit, Offset: offset}
	for _, u := range users {
		page.Users = append(page.Users, UserWithProgress{User: u, Progress: byUser[u.ID]})
	}
	return page, nil
}

func (s *adminService) Stats(ctx context.Context) (*AdminStats, error) {
	const op = "admin.Stats"
	dbc := dbctx.Context{Ctx: ctx}
	_, total, err := s.users.List(dbc, 1, 0)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	progress, err := s.progress.Stats(dbc)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	completedTrees, err := s.skillTree.CountCompleted(dbc)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	progress.CompletedTrees = completedTrees
	feedback, err := s.feedback.Stats(dbc)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return &AdminStats{Users: total, Progress: progress, Feedback: feedback}, nil
}
