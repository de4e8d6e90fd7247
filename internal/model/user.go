package model

import "errors"

// Password policy for registration
const (
	MinPasswordLength = 4
	MaxPasswordLength = 8
)

// UserSummary is one row of the network-wide listing.
type UserSummary struct {
	Name          string `json:"name"`
	PostCount     int    `json:"post_count"`
	FollowerCount int    `json:"follower_count"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login or registration
type LoginResponse struct {
	User        UserSummary `json:"user"`
	AccessToken string      `json:"access_token"`
	ExpiresIn   int         `json:"expires_in"` // Seconds until access token expires
}

// ProfileResponse is a single user's public view.
type ProfileResponse struct {
	UserSummary
	Followers []string `json:"followers"`
	Online    bool     `json:"online"`
}

// Error codes for token failures in HTTP responses
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

var (
	// ErrInvalidPassword is returned when a password violates the registration policy
	ErrInvalidPassword = errors.New("password must be between 4 and 8 characters")

	// ErrNameRequired is returned when registering with a blank name
	ErrNameRequired = errors.New("name is required")

	// ErrNameTaken is returned when attempting to register a name that already exists
	ErrNameTaken = errors.New("name already taken")

	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword is returned when a login or owner-gated action presents the wrong password
	ErrWrongPassword = errors.New("wrong password")

	// ErrAlreadyOnline is returned when logging in a user whose session is already active
	ErrAlreadyOnline = errors.New("user already online")

	// ErrNotOnline is returned when logging out a user without an active session
	ErrNotOnline = errors.New("user not online")

	// ErrNotAuthorized is returned when an offline user tries to act on a post
	ErrNotAuthorized = errors.New("user is not logged in")

	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("invalid access token")
)
