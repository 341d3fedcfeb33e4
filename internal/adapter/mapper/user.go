package mapper

import (
	"github.com/satvik8373/Rentieo/internal/domain/entity"
)

func DecodeUser(record map[string]interface{}, id string) *entity.User {
	return &entity.User{
		ID:           id,
		Email:        String(record, "email", ""),
		Name:         String(record, "name", ""),
		Phone:        OptionalString(record, "phone"),
		PhotoURL:     OptionalString(record, "photoUrl"),
		Bio:          OptionalString(record, "bio"),
		Role:         entity.ParseRole(String(record, "role", "buyer")),
		IsVerified:   Bool(record, "isVerified", false),
		Rating:       Float(record, "rating", 0),
		TotalRatings: Int(record, "totalRatings", 0),
		Skills:       OptionalStringSlice(record, "skills"),
		Availability: Map(record, "availability"),
		CreatedAt:    Time(record, "createdAt"),
	}
}

func EncodeUser(user *entity.User) map[string]interface{} {
	role := user.Role
	if role == "" {
		role = entity.RoleBuyer
	}

	var skills interface{}
	if user.Skills != nil {
		skills = user.Skills
	}

	return map[string]interface{}{
		"email":        user.Email,
		"name":         user.Name,
		"phone":        stringOrNil(user.Phone),
		"photoUrl":     stringOrNil(user.PhotoURL),
		"bio":          stringOrNil(user.Bio),
		"role":         enumName(string(role)),
		"isVerified":   user.IsVerified,
		"rating":       user.Rating,
		"totalRatings": user.TotalRatings,
		"skills":       skills,
		"availability": mapOrNil(user.Availability),
		"createdAt":    user.CreatedAt,
	}
}
