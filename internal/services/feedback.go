package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

type FeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, rating int, comment string) (*types.Feedback, error)
	ListRecent(ctx context.Context, limit int) ([]*types.Feedback, error)
}

type feedbackService struct {
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
	center       *realtime.Center
}

func NewFeedbackService(log *logger.Logger, feedbackRepo repos.FeedbackRepo, center *realtime.Center) FeedbackService {
	return &feedbackService{
		log:          log.With("service", "FeedbackService"),
		feedbackRepo: feedbackRepo,
		center:       center,
	}
}

func (s *feedbackService) Submit(ctx context.Context, userID uuid.UUID, rating int, comment string) (*types.Feedback, error) {
	const op = "feedback.Submit"
	comment = strings.TrimSpace(comment)
	var err error
	switch {
	case userID == uuid.Nil:
		err = domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing user", nil)
	case rating < types.MinRating || rating > types.MaxRating:
		err = domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("rating must be %d..%d", types.MinRating, types.MaxRating), nil)
	case utf8.RuneCountInString(comment) > types.MaxCommentLength:
		err = domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("comment longer than %d characters", types.MaxCommentLength), nil)
	}
	if err != nil {
		s.center.NotifyError(ctx, userID, "Could not send feedback", err)
		return nil, err
	}

	created, err := s.feedbackRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Feedback{{
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}})
	if err != nil {
		err = domainagg.Wrap(domainagg.CodeInternal, op, fmt.Errorf("create feedback: %w", err))
		s.center.NotifyError(ctx, userID, "Could not send feedback", err)
		return nil, err
	}
	s.center.Notify(ctx, userID, realtime.Toast{Level: realtime.ToastSuccess, Title: "Thanks for the feedback"})
	return created[0], nil
}

func (s *feedbackService) ListRecent(ctx context.Context, limit int) ([]*types.Feedback, error) {
	rows, err := s.feedbackRepo.ListRecent(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, "feedback.ListRecent", err)
	}
	return rows, nil
}
