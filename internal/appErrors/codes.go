package appErrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodePriceOutOfRange  ErrorCode = "PRICE_OUT_OF_RANGE"
	CodeDateOutOfRange   ErrorCode = "DATE_OUT_OF_RANGE"

	// Ресурсы
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"
	CodeProposalNotFound ErrorCode = "PROPOSAL_NOT_FOUND"
	CodeReviewNotFound   ErrorCode = "REVIEW_NOT_FOUND"
	CodeDisputeNotFound  ErrorCode = "DISPUTE_NOT_FOUND"

	// Бизнес-логика
	CodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	CodeInsufficientBids    ErrorCode = "INSUFFICIENT_BIDS"
	CodeInvalidState        ErrorCode = "INVALID_STATE"
	CodeDisputeOpen         ErrorCode = "DISPUTE_OPEN"
	CodeDuplicate           ErrorCode = "DUPLICATE"
	CodeNotEligible         ErrorCode = "NOT_ELIGIBLE"
	CodeEmailAlreadyExists  ErrorCode = "EMAIL_ALREADY_EXISTS"

	// Системные ошибки
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
)
