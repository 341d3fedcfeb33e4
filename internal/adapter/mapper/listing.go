package mapper

import (
	"github.com/satvik8373/Rentieo/internal/domain/entity"
)

// DecodeListing never fails. Images and SavedBy always decode to non-nil
// slices, so a nil slice and an empty one encode and decode the same way.
func DecodeListing(record map[string]interface{}, id string) *entity.Listing {
	listing := &entity.Listing{
		ID:            id,
		UserID:        String(record, "userId", ""),
		Title:         String(record, "title", ""),
		Description:   String(record, "description", ""),
		Price:         Float(record, "price", 0),
		Category:      entity.ParseCategory(String(record, "category", "other")),
		Type:          entity.ParseListingType(String(record, "type", "product")),
		Images:        StringSlice(record, "images"),
		Location:      String(record, "location", ""),
		Latitude:      OptionalFloat(record, "latitude"),
		Longitude:     OptionalFloat(record, "longitude"),
		IsActive:      Bool(record, "isActive", true),
		Views:         Int(record, "views", 0),
		SavedBy:       StringSlice(record, "savedBy"),
		RentalDetails: Map(record, "rentalDetails"),
		LaborDetails:  Map(record, "laborDetails"),
		CreatedAt:     Time(record, "createdAt"),
		UpdatedAt:     OptionalTime(record, "updatedAt"),
	}

	if c := OptionalString(record, "condition"); c != nil {
		condition := entity.ParseCondition(*c)
		listing.Condition = &condition
	}

	return listing
}

func EncodeListing(listing *entity.Listing) map[string]interface{} {
	var condition interface{}
	if listing.Condition != nil {
		condition = enumName(string(*listing.Condition))
	}

	category := listing.Category
	if category == "" {
		category = entity.CategoryOther
	}
	listingType := listing.Type
	if listingType == "" {
		listingType = entity.ListingTypeProduct
	}

	return map[string]interface{}{
		"userId":        listing.UserID,
		"title":         listing.Title,
		"description":   listing.Description,
		"price":         listing.Price,
		"category":      enumName(string(category)),
		"type":          enumName(string(listingType)),
		"images":        stringsOrEmpty(listing.Images),
		"location":      listing.Location,
		"latitude":      floatOrNil(listing.Latitude),
		"longitude":     floatOrNil(listing.Longitude),
		"condition":     condition,
		"isActive":      listing.IsActive,
		"views":         listing.Views,
		"savedBy":       stringsOrEmpty(listing.SavedBy),
		"rentalDetails": mapOrNil(listing.RentalDetails),
		"laborDetails":  mapOrNil(listing.LaborDetails),
		"createdAt":     listing.CreatedAt,
		"updatedAt":     timeOrNil(listing.UpdatedAt),
	}
}
