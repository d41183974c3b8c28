// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/carlot/carlot/internal/service"

// MessageResponse is the body shape for every status-only reply.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a 500 body. Error is only filled in development.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CredentialsRequest is the body of POST /register and POST /login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ToLoginResponse converts a service result to its wire shape.
func ToLoginResponse(res *service.LoginResult) LoginResponse {
	return LoginResponse{
		Token:    res.Token,
		Username: res.Username,
		IsAdmin:  res.IsAdmin,
	}
}
