package service

import (
	"net/http"
	"thywilluche/pkg/response"
)

var (
	ErrEmailTaken         = response.NewConflict(response.ErrUserExists, "email is already registered")
	ErrUsernameTaken      = response.NewConflict(response.ErrUserExists, "username is already taken")
	ErrUserExists         = response.NewConflict(response.ErrUserExists, "email or username is already taken")
	ErrInvalidCredentials = response.NewUnauthorized(response.ErrAuthFailed, "invalid credentials")
	ErrUserNotFound       = response.NewNotFound(response.ErrUserNotFound, "user not found")
	ErrInvalidResetCode   = response.NewValidation(response.ErrOTPInvalid, "invalid or expired code")
	ErrResetTooFrequent   = &response.AppError{HTTPStatus: http.StatusTooManyRequests, Code: response.ErrTooManyRequests, Message: "please wait before requesting another code"}
	ErrInvalidRole        = response.NewValidation(response.ErrValidation, "role must be USER or ADMIN")
	ErrInvalidUsername    = response.NewValidation(response.ErrValidation, "username must be 3-30 letters, digits or underscores")
	ErrSelfRoleChange     = response.NewForbidden(response.ErrNoPermission, "you cannot change your own role")
)
