package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 通用错误 400xx
	ErrValidation   = 40001
	ErrUnauthorized = 40101
	ErrNoPermission = 40301
	ErrNotFound     = 40401
	ErrConflict     = 40901

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrOTPInvalid   = 10005

	// 社区模块错误 200xx
	ErrPostNotFound      = 20001
	ErrPostModerated     = 20002
	ErrCommentNotFound   = 20003
	ErrGroupNotFound     = 20004
	ErrGroupHasPosts     = 20005
	ErrNotGroupMember    = 20006
	ErrDuplicateReport   = 20007
	ErrReportNotFound    = 20008
	ErrGroupSlugTaken    = 20009
	ErrTargetNotFound    = 20010
	ErrCommentNotAllowed = 20011

	// 商城模块错误 300xx
	ErrProductNotFound  = 30001
	ErrDuplicateVariant = 30002
	ErrVariantNotFound  = 30003
	ErrSlugTaken        = 30004

	// 订单模块错误 400xx 已被通用错误占用，使用 310xx
	ErrOrderNotFound     = 31001
	ErrOutOfStock        = 31002
	ErrVariantNotForSale = 31003
	ErrInvalidOrderState = 31004
	ErrPaymentChannel    = 31005

	// 锦标赛模块错误 320xx
	ErrChampionshipNotFound = 32001
	ErrRegistrationClosed   = 32002
	ErrAlreadyRegistered    = 32003
	ErrSubmissionNotFound   = 32004
	ErrAlreadyReviewed      = 32005

	// 游戏模块错误 330xx
	ErrGameNotFound     = 33001
	ErrGameClosed       = 33002
	ErrAlreadySubmitted = 33003
	ErrBadgeNotFound    = 33004
	ErrWinnerNotInGame  = 33005
	ErrScoreNotAllowed  = 33006

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
	ErrUpstream        = 50201
)
