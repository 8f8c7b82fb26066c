package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
)

// ProfileDTO is the serialized role state attached to a user.
type ProfileDTO struct {
	Role       enums.Role `json:"role"`
	IsApproved bool       `json:"is_approved"`
	Age        *int       `json:"age,omitempty"`
}

// UserDTO is the serialized user returned by the API.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	IsStaff   bool       `json:"is_staff"`
	Profile   ProfileDTO `json:"profile"`
	CreatedAt time.Time  `json:"created_at"`
}

// UserListResult is a cursor page of users.
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func toUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	dto := &UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		dto.Profile = ProfileDTO{
			Role:       user.Profile.Role,
			IsApproved: user.Profile.IsApproved,
			Age:        user.Profile.Age,
		}
	}
	return dto
}
