package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type ListingCategory string

const (
	CategoryElectronics ListingCategory = "ELECTRONICS"
	CategoryVehicles    ListingCategory = "VEHICLES"
	CategoryRealEstate  ListingCategory = "REAL_ESTATE"
	CategoryFurniture   ListingCategory = "FURNITURE"
	CategoryFashion     ListingCategory = "FASHION"
	CategoryServices    ListingCategory = "SERVICES"
	CategoryOther       ListingCategory = "OTHER"
)

var categories = []ListingCategory{
	CategoryElectronics, CategoryVehicles, CategoryRealEstate,
	CategoryFurniture, CategoryFashion, CategoryServices, CategoryOther,
}

// ParseCategory falls back to OTHER.
func ParseCategory(value string) ListingCategory {
	for _, c := range categories {
		if strings.EqualFold(string(c), value) {
			return c
		}
	}
	return CategoryOther
}

type ListingType string

const (
	ListingTypeProduct ListingType = "PRODUCT"
	ListingTypeRental  ListingType = "RENTAL"
	ListingTypeLabor   ListingType = "LABOR"
)

var listingTypes = []ListingType{ListingTypeProduct, ListingTypeRental, ListingTypeLabor}

// ParseListingType falls back to PRODUCT.
func ParseListingType(value string) ListingType {
	for _, t := range listingTypes {
		if strings.EqualFold(string(t), value) {
			return t
		}
	}
	return ListingTypeProduct
}

type ListingCondition string

const (
	ConditionBrandNew ListingCondition = "BRAND_NEW"
	ConditionLikeNew  ListingCondition = "LIKE_NEW"
	ConditionGood     ListingCondition = "GOOD"
	ConditionFair     ListingCondition = "FAIR"
	ConditionPoor     ListingCondition = "POOR"
)

var conditions = []ListingCondition{
	ConditionBrandNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor,
}

// ParseCondition falls back to GOOD. An absent condition is represented by a
// nil pointer on the listing, not by this function.
func ParseCondition(value string) ListingCondition {
	for _, c := range conditions {
		if strings.EqualFold(string(c), value) {
			return c
		}
	}
	return ConditionGood
}

type Listing struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Price         float64                `json:"price"`
	Category      ListingCategory        `json:"category"`
	Type          ListingType            `json:"type"`
	Condition     *ListingCondition      `json:"condition,omitempty"`
	Images        []string               `json:"images"`
	Location      string                 `json:"location"`
	Latitude      *float64               `json:"latitude,omitempty"`
	Longitude     *float64               `json:"longitude,omitempty"`
	IsActive      bool                   `json:"is_active"`
	Views         int                    `json:"views"`
	SavedBy       []string               `json:"saved_by"`
	RentalDetails map[string]interface{} `json:"rental_details,omitempty"`
	LaborDetails  map[string]interface{} `json:"labor_details,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     *time.Time             `json:"updated_at,omitempty"`
}

func (l *Listing) IsSavedBy(userID string) bool {
	for _, id := range l.SavedBy {
		if id == userID {
			return true
		}
	}
	return false
}

func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// DistanceKm returns the great-circle distance from the listing to a point.
// ok is false when the listing carries no coordinates.
func (l *Listing) DistanceKm(lat, lon float64) (km float64, ok bool) {
	if !l.HasCoordinates() {
		return 0, false
	}
	return DistanceKm(*l.Latitude, *l.Longitude, lat, lon), true
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders a distance for display: metres under 1 km, one
// decimal under 10 km, whole kilometres beyond that.
func FormatDistance(km float64) string {
	switch {
	case km < 1:
		return fmt.Sprintf("%d m", int(km*1000))
	case km < 10:
		return fmt.Sprintf("%.1f km", km)
	default:
		return fmt.Sprintf("%d km", int(km))
	}
}

// ListingChanges is a partial update; nil fields are left untouched.
type ListingChanges struct {
	Title         *string
	Description   *string
	Price         *float64
	Category      *ListingCategory
	Type          *ListingType
	Condition     *ListingCondition
	Images        *[]string
	Location      *string
	Latitude      *float64
	Longitude     *float64
	RentalDetails map[string]interface{}
	LaborDetails  map[string]interface{}
}
