package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/shared/constants"
	"github.com/entry-inc/entry/internal/shared/errors"
)

// UserResolver turns the authenticated request context into the caller's
// internal user ID. Handlers never query the store by cookie values directly.
type UserResolver interface {
	ResolveID(c *gin.Context) (uint, error)
	Resolve(c *gin.Context) (*user.User, error)
}

type repoUserResolver struct {
	userRepo user.Repository
}

func NewUserResolver(userRepo user.Repository) UserResolver {
	return &repoUserResolver{userRepo: userRepo}
}

func (r *repoUserResolver) Resolve(c *gin.Context) (*user.User, error) {
	sid := c.GetString(constants.ContextKeyUserSID)
	if sid == "" {
		return nil, errors.NewRouteProtectedError()
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.StoreTimeoutSeconds*time.Second)
	defer cancel()

	u, err := r.userRepo.GetBySID(ctx, sid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.NewRouteProtectedError()
	}
	return u, nil
}

func (r *repoUserResolver) ResolveID(c *gin.Context) (uint, error) {
	u, err := r.Resolve(c)
	if err != nil {
		return 0, err
	}
	return u.ID(), nil
}
