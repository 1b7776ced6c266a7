package service

import "thywilluche/pkg/response"

var (
	ErrPostNotFound      = response.NewNotFound(response.ErrPostNotFound, "post not found")
	ErrPostModerated     = response.NewConflict(response.ErrPostModerated, "post has already been moderated")
	ErrInvalidDecision   = response.NewValidation(response.ErrValidation, "decision must be approved or rejected")
	ErrInvalidStatus     = response.NewValidation(response.ErrValidation, "invalid status filter")
	ErrContentLength     = response.NewValidation(response.ErrValidation, "content must be between 1 and 5000 characters")
	ErrTooManyImages     = response.NewValidation(response.ErrValidation, "a post can have at most 4 images")
	ErrForbidden         = response.NewForbidden(response.ErrNoPermission, "you are not allowed to do this")
	ErrCommentNotFound   = response.NewNotFound(response.ErrCommentNotFound, "comment not found")
	ErrCommentNotAllowed = response.NewValidation(response.ErrCommentNotAllowed, "comments are only allowed on published posts")
	ErrCommentLength     = response.NewValidation(response.ErrValidation, "comment must be between 1 and 2000 characters")
	ErrInvalidTarget     = response.NewValidation(response.ErrValidation, "target type must be post or comment")
	ErrTargetNotFound    = response.NewNotFound(response.ErrTargetNotFound, "target not found")

	ErrGroupNotFound    = response.NewNotFound(response.ErrGroupNotFound, "group not found")
	ErrGroupHasPosts    = response.NewConflict(response.ErrGroupHasPosts, "cannot delete group with existing posts")
	ErrNotGroupMember   = response.NewForbidden(response.ErrNotGroupMember, "you must be a member of this group")
	ErrGroupSlugTaken   = response.NewConflict(response.ErrGroupSlugTaken, "group slug is already taken")
	ErrInvalidGroupType = response.NewValidation(response.ErrValidation, "invalid group type")

	ErrDuplicateReport     = response.NewConflict(response.ErrDuplicateReport, "you have already reported this")
	ErrReportNotFound      = response.NewNotFound(response.ErrReportNotFound, "report not found")
	ErrReportResolved      = response.NewConflict(response.ErrConflict, "report has already been reviewed")
	ErrInvalidReportReason = response.NewValidation(response.ErrValidation, "invalid report reason")
	ErrInvalidResolution   = response.NewValidation(response.ErrValidation, "status must be resolved or dismissed")
)
