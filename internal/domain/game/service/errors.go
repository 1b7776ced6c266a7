package service

import "thywilluche/pkg/response"

var (
	ErrGameNotFound     = response.NewNotFound(response.ErrGameNotFound, "game not found")
	ErrGameClosed       = response.NewValidation(response.ErrGameClosed, "game is not open for submissions")
	ErrAlreadySubmitted = response.NewConflict(response.ErrAlreadySubmitted, "you have already submitted to this game")
	ErrBadgeNotFound    = response.NewNotFound(response.ErrBadgeNotFound, "badge not found")
	ErrWinnerNotInGame  = response.NewValidation(response.ErrWinnerNotInGame, "all winners must be submissions of this game")
	ErrScoreNotAllowed  = response.NewValidation(response.ErrScoreNotAllowed, "only writing submissions are scored manually")

	ErrSlugTaken        = response.NewConflict(response.ErrConflict, "game slug is already taken")
	ErrBadgeNameTaken   = response.NewConflict(response.ErrConflict, "badge name is already taken")
	ErrTitleRequired    = response.NewValidation(response.ErrValidation, "title is required")
	ErrInvalidGameType  = response.NewValidation(response.ErrValidation, "type must be quiz, writing or puzzle")
	ErrInvalidBadgeType = response.NewValidation(response.ErrValidation, "type must be participation, winner or special")
	ErrInvalidQuestions = response.NewValidation(response.ErrValidation, "quiz questions need text, at least two options and a valid answer")
	ErrPuzzleAnswer     = response.NewValidation(response.ErrValidation, "puzzle answer is required")
	ErrInvalidWindow    = response.NewValidation(response.ErrValidation, "end time must be after start time")
	ErrInvalidAnswers   = response.NewValidation(response.ErrValidation, "answer every question with a valid option")
	ErrContentRequired  = response.NewValidation(response.ErrValidation, "content is required")
	ErrContentTooLong   = response.NewValidation(response.ErrValidation, "content must be at most 20000 characters")
	ErrInvalidScore     = response.NewValidation(response.ErrValidation, "score must be between 0 and 100")
	ErrNoWinners        = response.NewValidation(response.ErrValidation, "select at least one submission")

	ErrSubmissionNotFound = response.NewNotFound(response.ErrSubmissionNotFound, "submission not found")
)
