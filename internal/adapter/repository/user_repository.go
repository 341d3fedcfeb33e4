package repository

import (
	"context"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
)

const usersCollection = "users"

type userRepository struct {
	store service.DocumentStore
}

func NewUserRepository(store service.DocumentStore) repository.UserRepository {
	return &userRepository{store: store}
}

func userPath(id string) string {
	return usersCollection + "/" + id
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.store.Get(ctx, userPath(id))
	if err != nil {
		return nil, storeError(err, "User", "Failed to get user")
	}
	return mapper.DecodeUser(doc.Data, doc.ID), nil
}

func (r *userRepository) Save(ctx context.Context, user *entity.User, merge bool) error {
	err := r.store.Set(ctx, userPath(user.ID), mapper.EncodeUser(user), merge)
	return storeError(err, "User", "Failed to save user")
}

func (r *userRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	if len(changes) == 0 {
		_, err := r.store.Get(ctx, userPath(id))
		return storeError(err, "User", "Failed to update user")
	}
	return storeError(r.store.Update(ctx, userPath(id), changes), "User", "Failed to update user")
}
