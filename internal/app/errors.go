package app

import "errors"

var (
	// ErrInvalidCredentials is safe to show to end users.
	ErrInvalidCredentials = errors.New("wrong credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")

	ErrSignupFieldsRequired = errors.New("username, email and password required")
	ErrTitleRequired        = errors.New("title required")
	ErrInvalidTier          = errors.New("invalid subscription tier")

	// ErrFetchFailed means the remote image was unreachable or answered with
	// a non-success status. No story record exists when it is returned.
	ErrFetchFailed = errors.New("image fetch failed")
)
