package usecases

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/errors"
	"github.com/entry-inc/entry/internal/shared/logger"
)

type ListSessionsCommand struct {
	UserID           uint
	CurrentSessionID string
	// Sort orders by creation time: "asc" for oldest first, anything else
	// keeps the newest-first default
	Sort string
}

type ListSessionsResult struct {
	Sessions []*SessionDTO
}

// ListSessionsUseCase returns the caller's live sessions as a redacted
// projection. An empty result is an error: the caller is, by definition,
// inside one of these sessions.
type ListSessionsUseCase struct {
	sessionRepo user.SessionRepository
	logger      logger.Interface
}

func NewListSessionsUseCase(sessionRepo user.SessionRepository, logger logger.Interface) *ListSessionsUseCase {
	return &ListSessionsUseCase{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

func (uc *ListSessionsUseCase) Execute(ctx context.Context, cmd ListSessionsCommand) (*ListSessionsResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewRouteProtectedError()
	}

	sessions, err := uc.sessionRepo.GetActiveByUserID(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to list sessions", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		return nil, errors.NewNotFoundError("no active sessions found")
	}

	if strings.EqualFold(cmd.Sort, "asc") {
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		})
	}

	dtos := make([]*SessionDTO, len(sessions))
	for i, s := range sessions {
		dtos[i] = ToSessionDTO(s, cmd.CurrentSessionID)
	}

	return &ListSessionsResult{Sessions: dtos}, nil
}
