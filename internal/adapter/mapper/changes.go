package mapper

import (
	"github.com/satvik8373/Rentieo/internal/domain/entity"
)

// EncodeListingChanges returns only the fields present in c, in stored form.
func EncodeListingChanges(c entity.ListingChanges) map[string]interface{} {
	out := make(map[string]interface{})
	if c.Title != nil {
		out["title"] = *c.Title
	}
	if c.Description != nil {
		out["description"] = *c.Description
	}
	if c.Price != nil {
		out["price"] = *c.Price
	}
	if c.Category != nil {
		out["category"] = enumName(string(*c.Category))
	}
	if c.Type != nil {
		out["type"] = enumName(string(*c.Type))
	}
	if c.Condition != nil {
		out["condition"] = enumName(string(*c.Condition))
	}
	if c.Images != nil {
		out["images"] = stringsOrEmpty(*c.Images)
	}
	if c.Location != nil {
		out["location"] = *c.Location
	}
	if c.Latitude != nil {
		out["latitude"] = *c.Latitude
	}
	if c.Longitude != nil {
		out["longitude"] = *c.Longitude
	}
	if c.RentalDetails != nil {
		out["rentalDetails"] = c.RentalDetails
	}
	if c.LaborDetails != nil {
		out["laborDetails"] = c.LaborDetails
	}
	return out
}

func EncodeProfileChanges(c entity.ProfileChanges) map[string]interface{} {
	out := make(map[string]interface{})
	if c.Name != nil {
		out["name"] = *c.Name
	}
	if c.Phone != nil {
		out["phone"] = *c.Phone
	}
	if c.PhotoURL != nil {
		out["photoUrl"] = *c.PhotoURL
	}
	if c.Bio != nil {
		out["bio"] = *c.Bio
	}
	if c.Role != nil {
		out["role"] = enumName(string(*c.Role))
	}
	if c.Skills != nil {
		out["skills"] = stringsOrEmpty(*c.Skills)
	}
	if c.Availability != nil {
		out["availability"] = c.Availability
	}
	return out
}
