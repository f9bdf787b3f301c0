package handler

import (
	"time"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Username        string `json:"username"         validate:"required,username,max=100"`
	Password        string `json:"password"         validate:"required,min=8,max=72"`
	Role            string `json:"role"             validate:"role"`
	Name            string `json:"name"             validate:"required"`
	Surname         string `json:"surname"          validate:"required"`
	Email           string `json:"email"            validate:"required,email"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
}

type registerResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionUser struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ProfileID string      `json:"profile_id"`
	Email     string      `json:"email,omitempty"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Redirect  string      `json:"redirect"`
	User      sessionUser `json:"user"`
}

type sessionResponse struct {
	User      sessionUser `json:"user"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
	Redirect  string      `json:"redirect"`
}
