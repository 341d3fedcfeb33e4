package repository

import (
	"context"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Save(ctx context.Context, user *entity.User, merge bool) error
	Update(ctx context.Context, id string, changes map[string]interface{}) error
}
