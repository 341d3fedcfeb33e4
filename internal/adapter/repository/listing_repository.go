package repository

import (
	"context"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/subscription"
)

const listingsCollection = "listings"

type listingRepository struct {
	store service.DocumentStore
}

func NewListingRepository(store service.DocumentStore) repository.ListingRepository {
	return &listingRepository{store: store}
}

func listingPath(id string) string {
	return listingsCollection + "/" + id
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) (string, error) {
	id, err := r.store.Add(ctx, listingsCollection, mapper.EncodeListing(listing))
	if err != nil {
		return "", storeError(err, "Listing", "Failed to create listing")
	}
	listing.ID = id
	return id, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.store.Get(ctx, listingPath(id))
	if err != nil {
		return nil, storeError(err, "Listing", "Failed to get listing")
	}
	return mapper.DecodeListing(doc.Data, doc.ID), nil
}

func (r *listingRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	if len(changes) == 0 {
		_, err := r.store.Get(ctx, listingPath(id))
		return storeError(err, "Listing", "Failed to update listing")
	}
	return storeError(r.store.Update(ctx, listingPath(id), changes), "Listing", "Failed to update listing")
}

// Delete surfaces whatever the store reports; deleting a missing listing is
// not an error for either backend.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	return storeError(r.store.Delete(ctx, listingPath(id)), "Listing", "Failed to delete listing")
}

func (r *listingRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.Update(ctx, id, map[string]interface{}{
		"isActive":  active,
		"updatedAt": service.ServerTimestamp{},
	})
}

func (r *listingRepository) IncrementViews(ctx context.Context, id string) error {
	return r.Update(ctx, id, map[string]interface{}{"views": service.Increment{By: 1}})
}

func (r *listingRepository) SetSaved(ctx context.Context, id, userID string, saved bool) error {
	var change interface{} = service.ArrayRemove{Elems: []interface{}{userID}}
	if saved {
		change = service.ArrayUnion{Elems: []interface{}{userID}}
	}
	return r.Update(ctx, id, map[string]interface{}{"savedBy": change})
}

func (r *listingRepository) activeQuery() service.Query {
	return service.NewQuery(listingsCollection).
		Where("isActive", service.OpEqual, true).
		Order("createdAt", service.Desc)
}

func (r *listingRepository) allQuery() service.Query {
	return service.NewQuery(listingsCollection).Order("createdAt", service.Desc)
}

func (r *listingRepository) WatchActive(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	return r.watch(ctx, r.activeQuery(), "listings:active", opts)
}

func (r *listingRepository) WatchAll(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	return r.watch(ctx, r.allQuery(), "listings:all", opts)
}

func (r *listingRepository) WatchByUser(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	q := service.NewQuery(listingsCollection).
		Where("userId", service.OpEqual, userID).
		Order("createdAt", service.Desc)
	return r.watch(ctx, q, "listings:user:"+userID, opts)
}

func (r *listingRepository) watch(ctx context.Context, q service.Query, name string, opts []subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	opts = append([]subscription.Option{subscription.WithName(name)}, opts...)
	sub, err := subscription.Subscribe(ctx, r.store, q, mapper.DecodeListing, opts...)
	if err != nil {
		return nil, storeError(err, "Listings", "Failed to subscribe to listings")
	}
	return sub, nil
}

func (r *listingRepository) ListActive(ctx context.Context) ([]*entity.Listing, error) {
	items, err := subscription.First(ctx, r.store, r.activeQuery(), mapper.DecodeListing)
	if err != nil {
		return nil, storeError(err, "Listings", "Failed to load listings")
	}
	return items, nil
}

func (r *listingRepository) ListAll(ctx context.Context) ([]*entity.Listing, error) {
	items, err := subscription.First(ctx, r.store, r.allQuery(), mapper.DecodeListing)
	if err != nil {
		return nil, storeError(err, "Listings", "Failed to load listings")
	}
	return items, nil
}
