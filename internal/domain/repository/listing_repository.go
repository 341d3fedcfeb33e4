package repository

import (
	"context"

	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/subscription"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	// Update applies a partial change set keyed by stored field names.
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementViews(ctx context.Context, id string) error
	SetSaved(ctx context.Context, id, userID string, saved bool) error

	WatchActive(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error)
	WatchAll(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error)
	WatchByUser(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error)

	// ListActive and ListAll are point-in-time reads of the same feeds.
	ListActive(ctx context.Context) ([]*entity.Listing, error)
	ListAll(ctx context.Context) ([]*entity.Listing, error)
}
