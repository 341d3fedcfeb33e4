package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/satvik8373/Rentieo/internal/adapter/mapper"
	"github.com/satvik8373/Rentieo/internal/domain/entity"
	"github.com/satvik8373/Rentieo/internal/domain/repository"
	"github.com/satvik8373/Rentieo/internal/domain/service"
	"github.com/satvik8373/Rentieo/internal/subscription"
	"github.com/satvik8373/Rentieo/pkg/errors"
	"github.com/satvik8373/Rentieo/pkg/logger"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	objects     service.ObjectStore
	now         func() time.Time
}

func NewListingUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository, objects service.ObjectStore) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		objects:     objects,
		now:         time.Now,
	}
}

type CreateListingInput struct {
	Title         string
	Description   string
	Price         float64
	Category      string
	Type          string
	Condition     string
	Images        []string
	Location      string
	Latitude      *float64
	Longitude     *float64
	RentalDetails map[string]interface{}
	LaborDetails  map[string]interface{}
}

type SearchInput struct {
	Query    string
	Category string
	Type     string
	MinPrice *float64
	MaxPrice *float64
	// Latitude and Longitude annotate results with a distance; RadiusKm > 0
	// additionally drops listings further away or without coordinates.
	Latitude  *float64
	Longitude *float64
	RadiusKm  float64
}

type ListingResult struct {
	*entity.Listing
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Distance   string   `json:"distance,omitempty"`
}

func (uc *ListingUseCase) Create(ctx context.Context, userID string, input CreateListingInput) (*entity.Listing, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Title is required", nil)
	}
	if input.Price < 0 {
		return nil, errors.BadRequest("Price cannot be negative", nil)
	}

	listing := &entity.Listing{
		UserID:        userID,
		Title:         title,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		Category:      entity.ParseCategory(input.Category),
		Type:          entity.ParseListingType(input.Type),
		Images:        input.Images,
		Location:      input.Location,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		IsActive:      true,
		SavedBy:       []string{},
		RentalDetails: input.RentalDetails,
		LaborDetails:  input.LaborDetails,
		CreatedAt:     uc.now(),
	}
	if input.Condition != "" {
		condition := entity.ParseCondition(input.Condition)
		listing.Condition = &condition
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	if _, err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	logger.Info("Listing %s created by %s", listing.ID, userID)
	return listing, nil
}

// Get loads a listing and counts a view when someone other than the owner
// opens it.
func (uc *ListingUseCase) Get(ctx context.Context, id, viewerID string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewerID != "" && viewerID != listing.UserID {
		if err := uc.listingRepo.IncrementViews(ctx, id); err != nil {
			logger.Warn("Failed to count view on listing %s: %v", id, err)
		} else {
			listing.Views++
		}
	}
	return listing, nil
}

func (uc *ListingUseCase) Update(ctx context.Context, id, userID string, changes entity.ListingChanges) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, errors.Forbidden("You can only edit your own listings", nil)
	}
	if changes.Title != nil && strings.TrimSpace(*changes.Title) == "" {
		return nil, errors.BadRequest("Title cannot be empty", nil)
	}
	if changes.Price != nil && *changes.Price < 0 {
		return nil, errors.BadRequest("Price cannot be negative", nil)
	}

	fields := mapper.EncodeListingChanges(changes)
	if len(fields) == 0 {
		return listing, nil
	}
	fields["updatedAt"] = uc.now()

	if err := uc.listingRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return uc.listingRepo.GetByID(ctx, id)
}

// Delete removes the listing and then its images. Deleting a listing that is
// already gone succeeds.
func (uc *ListingUseCase) Delete(ctx context.Context, id, userID string) error {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if errors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := uc.authorize(ctx, listing, userID); err != nil {
		return err
	}

	if err := uc.listingRepo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.objects != nil {
		for _, url := range listing.Images {
			if err := uc.objects.Delete(ctx, url); err != nil {
				logger.Warn("Failed to delete image %s of listing %s: %v", url, id, err)
			}
		}
	}

	logger.Info("Listing %s deleted by %s", id, userID)
	return nil
}

// SetActive hides or shows a listing. Owners and admins may toggle it.
func (uc *ListingUseCase) SetActive(ctx context.Context, id, userID string, active bool) error {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.authorize(ctx, listing, userID); err != nil {
		return err
	}
	return uc.listingRepo.SetActive(ctx, id, active)
}

// ToggleSaved flips the caller's favourite flag and returns the new state.
func (uc *ListingUseCase) ToggleSaved(ctx context.Context, id, userID string) (bool, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	saved := !listing.IsSavedBy(userID)
	if err := uc.listingRepo.SetSaved(ctx, id, userID, saved); err != nil {
		return false, err
	}
	return saved, nil
}

func (uc *ListingUseCase) WatchActive(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	return uc.listingRepo.WatchActive(ctx, opts...)
}

func (uc *ListingUseCase) WatchAll(ctx context.Context, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	return uc.listingRepo.WatchAll(ctx, opts...)
}

func (uc *ListingUseCase) WatchByUser(ctx context.Context, userID string, opts ...subscription.Option) (*subscription.Subscription[*entity.Listing], error) {
	return uc.listingRepo.WatchByUser(ctx, userID, opts...)
}

func (uc *ListingUseCase) ListAll(ctx context.Context) ([]*entity.Listing, error) {
	return uc.listingRepo.ListAll(ctx)
}

// Search filters the current active feed. Results keep feed order
// (newest first).
func (uc *ListingUseCase) Search(ctx context.Context, input SearchInput) ([]ListingResult, error) {
	listings, err := uc.listingRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	var category entity.ListingCategory
	if input.Category != "" {
		category = entity.ParseCategory(input.Category)
	}
	var listingType entity.ListingType
	if input.Type != "" {
		listingType = entity.ParseListingType(input.Type)
	}
	hasPoint := input.Latitude != nil && input.Longitude != nil

	results := make([]ListingResult, 0, len(listings))
	for _, l := range listings {
		if query != "" && !matchesQuery(l, query) {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		if listingType != "" && l.Type != listingType {
			continue
		}
		if input.MinPrice != nil && l.Price < *input.MinPrice {
			continue
		}
		if input.MaxPrice != nil && l.Price > *input.MaxPrice {
			continue
		}

		result := ListingResult{Listing: l}
		if hasPoint {
			if km, ok := l.DistanceKm(*input.Latitude, *input.Longitude); ok {
				result.DistanceKm = &km
				result.Distance = entity.FormatDistance(km)
			}
			if input.RadiusKm > 0 && (result.DistanceKm == nil || *result.DistanceKm > input.RadiusKm) {
				continue
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Nearby returns active listings within radiusKm of a point, closest first.
func (uc *ListingUseCase) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]ListingResult, error) {
	if radiusKm <= 0 {
		return nil, errors.BadRequest("Radius must be positive", nil)
	}
	results, err := uc.Search(ctx, SearchInput{Latitude: &lat, Longitude: &lon, RadiusKm: radiusKm})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].DistanceKm < *results[j].DistanceKm
	})
	return results, nil
}

// Saved returns the active listings the user has favourited.
func (uc *ListingUseCase) Saved(ctx context.Context, userID string) ([]*entity.Listing, error) {
	listings, err := uc.listingRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	saved := make([]*entity.Listing, 0)
	for _, l := range listings {
		if l.IsSavedBy(userID) {
			saved = append(saved, l)
		}
	}
	return saved, nil
}

func (uc *ListingUseCase) authorize(ctx context.Context, listing *entity.Listing, userID string) error {
	if listing.UserID == userID {
		return nil
	}
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err == nil && user.IsAdmin() {
		return nil
	}
	return errors.Forbidden("You do not have permission to modify this listing", nil)
}

func matchesQuery(l *entity.Listing, query string) bool {
	return strings.Contains(strings.ToLower(l.Title), query) ||
		strings.Contains(strings.ToLower(l.Description), query) ||
		strings.Contains(strings.ToLower(l.Location), query)
}
