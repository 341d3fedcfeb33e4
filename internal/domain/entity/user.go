package entity

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleBuyer  UserRole = "BUYER"
	RoleSeller UserRole = "SELLER"
	RoleRental UserRole = "RENTAL"
	RoleLabor  UserRole = "LABOR"
	RoleAdmin  UserRole = "ADMIN"
)

var roles = []UserRole{RoleBuyer, RoleSeller, RoleRental, RoleLabor, RoleAdmin}

// ParseRole falls back to BUYER.
func ParseRole(value string) UserRole {
	for _, r := range roles {
		if strings.EqualFold(string(r), value) {
			return r
		}
	}
	return RoleBuyer
}

type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Name         string                 `json:"name"`
	Phone        *string                `json:"phone,omitempty"`
	PhotoURL     *string                `json:"photo_url,omitempty"`
	Bio          *string                `json:"bio,omitempty"`
	Role         UserRole               `json:"role"`
	IsVerified   bool                   `json:"is_verified"`
	Rating       float64                `json:"rating"`
	TotalRatings int                    `json:"total_ratings"`
	Skills       []string               `json:"skills,omitempty"`
	Availability map[string]interface{} `json:"availability,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfileChanges is a partial profile update; nil fields are left untouched.
type ProfileChanges struct {
	Name         *string
	Phone        *string
	PhotoURL     *string
	Bio          *string
	Role         *UserRole
	Skills       *[]string
	Availability map[string]interface{}
}
