package dto

import (
	"time"

	"github.com/smartscale/portfolio-api/internal/models"
)

// UserDTO represents the administrator in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// LoginResponseDTO is returned by a successful login
type LoginResponseDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

// VerifyResponseDTO is returned by token verification
type VerifyResponseDTO struct {
	Valid bool    `json:"valid"`
	User  UserDTO `json:"user"`
}

// MessageDTO is a plain confirmation
type MessageDTO struct {
	Message string `json:"message"`
}

// ToUserDTO converts a credential to DTO
func ToUserDTO(credential models.Credential) UserDTO {
	return UserDTO{
		ID:       credential.ID,
		Username: credential.Username,
	}
}
