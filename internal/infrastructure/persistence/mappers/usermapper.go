package mappers

import (
	"fmt"

	"github.com/entry-inc/entry/internal/domain/user"
	"github.com/entry-inc/entry/internal/infrastructure/persistence/models"
	"github.com/entry-inc/entry/internal/shared/authorization"
)

// UserMapper handles the conversion between domain entities and persistence models
type UserMapper interface {
	// ToEntity converts a persistence model to a domain entity
	ToEntity(model *models.UserModel) (*user.User, error)

	// ToModel converts a domain entity to a persistence model
	ToModel(entity *user.User) (*models.UserModel, error)

	// ToEntities converts multiple persistence models to domain entities
	ToEntities(models []*models.UserModel) ([]*user.User, error)
}

// UserMapperImpl is the concrete implementation of UserMapper
type UserMapperImpl struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

// ToEntity converts a persistence model to a domain entity
func (m *UserMapperImpl) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	role := authorization.ParseUserRole(model.Role)

	userEntity, err := user.ReconstructUser(
		model.ID,
		model.SID,
		model.Email,
		model.Username,
		model.Forename,
		model.Surname,
		model.PasswordHash,
		role,
		model.IsActive,
		model.IsEmailVerified,
		model.EmailVerificationToken,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct user entity: %w", err)
	}

	return userEntity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *UserMapperImpl) ToModel(entity *user.User) (*models.UserModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.UserModel{
		ID:                     entity.ID(),
		SID:                    entity.SID(),
		Email:                  entity.Email(),
		Username:               entity.Username(),
		Forename:               entity.Forename(),
		Surname:                entity.Surname(),
		PasswordHash:           entity.PasswordHash(),
		Role:                   entity.Role().String(),
		IsActive:               entity.IsActive(),
		IsEmailVerified:        entity.IsEmailVerified(),
		EmailVerificationToken: entity.EmailVerificationToken(),
		CreatedAt:              entity.CreatedAt(),
		UpdatedAt:              entity.UpdatedAt(),
	}, nil
}

// ToEntities converts multiple persistence models to domain entities
func (m *UserMapperImpl) ToEntities(userModels []*models.UserModel) ([]*user.User, error) {
	entities := make([]*user.User, 0, len(userModels))
	for _, model := range userModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
