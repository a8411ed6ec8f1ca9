package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 商品与订单错误 200xx
	ErrNotFound          = 20001
	ErrInsufficientStock = 20002
	ErrInvalidState      = 20003
	ErrReturnExpired     = 20004
	ErrConflict          = 20005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
	ErrUnavailable     = 50004
)
