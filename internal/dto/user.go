package dto

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Role            string `json:"role" validate:"required"`
	HourlyRateCents int64  `json:"hourly_rate_cents" validate:"gte=0"`
}

// UpdateUserRequest is the body of PUT /users/:id. Nil fields are kept.
type UpdateUserRequest struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
	Role            *string `json:"role"`
	Active          *bool   `json:"active"`
	HourlyRateCents *int64  `json:"hourly_rate_cents" validate:"omitempty,gte=0"`
}
