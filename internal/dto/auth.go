package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  UserPublicResponse `json:"user"`
}

type RegisterRequest struct {
	Username          string `json:"username" binding:"required,max=150,username"`
	Password          string `json:"password" binding:"required,max=72"`
	PasswordConfirmed string `json:"password_confirmed" binding:"required,min=6,max=72"`
	Email             string `json:"email" binding:"required,email,max=254"`
	FirstName         string `json:"first_name" binding:"required,max=150"`
	LastName          string `json:"last_name" binding:"required,max=150"`
}

// UserPublicResponse is the projection of a User safe to return to clients.
type UserPublicResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateUserRequest backs the createuser command.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}
