package service

import "thywilluche/pkg/response"

var (
	ErrChampionshipNotFound = response.NewNotFound(response.ErrChampionshipNotFound, "championship not found")
	ErrSlugTaken            = response.NewConflict(response.ErrConflict, "championship slug is already taken")
	ErrNameRequired         = response.NewValidation(response.ErrValidation, "name and year are required")
	ErrInvalidFee           = response.NewValidation(response.ErrValidation, "registration fee cannot be negative")

	ErrRegistrationClosed = response.NewValidation(response.ErrRegistrationClosed, "registration is closed")
	ErrAlreadyRegistered  = response.NewConflict(response.ErrAlreadyRegistered, "you have already registered for this championship")
	ErrRegistrationForm   = response.NewValidation(response.ErrValidation, "full name and email are required")
	ErrReceiptRequired    = response.NewValidation(response.ErrValidation, "payment receipt is required")
	ErrInvalidCategory    = response.NewValidation(response.ErrValidation, "category must be junior, senior or open")
	ErrReviewContent      = response.NewValidation(response.ErrValidation, "review text or document is required")

	ErrSubmissionNotFound = response.NewNotFound(response.ErrSubmissionNotFound, "submission not found")
	ErrAlreadyReviewed    = response.NewConflict(response.ErrAlreadyReviewed, "submission has already been reviewed")
	ErrInvalidDecision    = response.NewValidation(response.ErrValidation, "decision must be approved or rejected")
	ErrInvalidStatus      = response.NewValidation(response.ErrValidation, "invalid status filter")
)
